package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eats-service/internal/api/dto"
	"github.com/spec-kit/eats-service/internal/auth"
	"github.com/spec-kit/eats-service/internal/service"
	"github.com/spec-kit/eats-service/pkg/util"
)

// PaymentsHandler exposes promotion payments.
type PaymentsHandler struct {
	payments *service.PaymentService
}

// NewPaymentsHandler constructs handler.
func NewPaymentsHandler(payments *service.PaymentService) *PaymentsHandler {
	return &PaymentsHandler{payments: payments}
}

// Create handles POST /payments.
func (h *PaymentsHandler) Create(c *fiber.Ctx) error {
	owner, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	var req dto.CreatePaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.RestaurantID <= 0 {
		return fiber.NewError(http.StatusBadRequest, "restaurant_id required")
	}

	payment, err := h.payments.Create(c.Context(), owner, req.RestaurantID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewPaymentResponse(payment)})
}

// List handles GET /payments.
func (h *PaymentsHandler) List(c *fiber.Ctx) error {
	owner, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	payments, err := h.payments.List(c.Context(), owner)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPaymentResponses(payments)})
}
