package dto

import (
	"time"

	"github.com/spec-kit/eats-service/internal/domain"
)

// CreateOrderRequest payload for placing an order.
type CreateOrderRequest struct {
	RestaurantID int64              `json:"restaurant_id"`
	Items        []domain.OrderItem `json:"items"`
}

// EditOrderRequest payload for a status change.
type EditOrderRequest struct {
	Status domain.OrderStatus `json:"status"`
}

// OrderResponse is the public shape of an order; it is also the message
// shape pushed to subscription clients.
type OrderResponse struct {
	ID           int64              `json:"id"`
	CustomerID   int64              `json:"customer_id"`
	DriverID     *int64             `json:"driver_id,omitempty"`
	RestaurantID int64              `json:"restaurant_id"`
	Items        []domain.OrderItem `json:"items"`
	Total        int                `json:"total"`
	Status       domain.OrderStatus `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
}

// NewOrderResponse maps a domain order.
func NewOrderResponse(order *domain.Order) OrderResponse {
	return OrderResponse{
		ID:           order.ID,
		CustomerID:   order.CustomerID,
		DriverID:     order.DriverID,
		RestaurantID: order.RestaurantID,
		Items:        order.Items,
		Total:        order.Total,
		Status:       order.Status,
		CreatedAt:    order.CreatedAt,
	}
}

// NewOrderResponses maps a slice of orders.
func NewOrderResponses(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, NewOrderResponse(order))
	}
	return out
}
