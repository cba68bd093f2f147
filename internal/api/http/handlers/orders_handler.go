package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/eats-service/internal/api/dto"
	"github.com/spec-kit/eats-service/internal/auth"
	"github.com/spec-kit/eats-service/internal/domain"
	"github.com/spec-kit/eats-service/internal/service"
	"github.com/spec-kit/eats-service/pkg/util"
)

// OrdersHandler exposes the order workflow.
type OrdersHandler struct {
	orders *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orders *service.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orders}
}

// Create handles POST /orders.
func (h *OrdersHandler) Create(c *fiber.Ctx) error {
	customer, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	var req dto.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.RestaurantID <= 0 {
		return fiber.NewError(http.StatusBadRequest, "restaurant_id required")
	}

	order, err := h.orders.Create(c.Context(), customer, service.CreateOrderInput{
		RestaurantID: req.RestaurantID,
		Items:        req.Items,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewOrderResponse(order)})
}

// List handles GET /orders with an optional status filter.
func (h *OrdersHandler) List(c *fiber.Ctx) error {
	caller, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}

	var statuses []domain.OrderStatus
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			statuses = append(statuses, domain.OrderStatus(strings.ToUpper(strings.TrimSpace(s))))
		}
	}

	orders, err := h.orders.List(c.Context(), caller, statuses, c.QueryInt("limit", 25), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderResponses(orders)})
}

// Get handles GET /orders/:id.
func (h *OrdersHandler) Get(c *fiber.Ctx) error {
	caller, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orders.Get(c.Context(), caller, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderResponse(order)})
}

// EditStatus handles PATCH /orders/:id/status.
func (h *OrdersHandler) EditStatus(c *fiber.Ctx) error {
	caller, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req dto.EditOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	order, err := h.orders.EditStatus(c.Context(), caller, id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderResponse(order)})
}

// Take handles POST /orders/:id/take.
func (h *OrdersHandler) Take(c *fiber.Ctx) error {
	driver, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	order, err := h.orders.Take(c.Context(), driver, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewOrderResponse(order)})
}
