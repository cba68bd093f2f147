package domain

import "time"

// OrderStatus tracks an order through its lifecycle.
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderCooking   OrderStatus = "COOKING"
	OrderCooked    OrderStatus = "COOKED"
	OrderPickedUp  OrderStatus = "PICKED_UP"
	OrderDelivered OrderStatus = "DELIVERED"
)

// OrderItemOption records one choice the customer made for an item.
type OrderItemOption struct {
	Name   string `json:"name"`
	Choice string `json:"choice,omitempty"`
}

// OrderItem is one dish (plus chosen options) inside an order.
type OrderItem struct {
	DishID  int64             `json:"dish_id"`
	Options []OrderItemOption `json:"options,omitempty"`
}

// Order is a customer's order against a single restaurant. DriverID stays
// nil until a delivery rider takes the order.
type Order struct {
	ID           int64
	CustomerID   int64
	DriverID     *int64
	RestaurantID int64
	Items        []OrderItem
	Total        int
	Status       OrderStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanSetStatus reports whether a user with the given role may move an order
// into the requested status. Clients never edit status; owners run the
// kitchen, riders run the road.
func CanSetStatus(role UserRole, next OrderStatus) bool {
	switch role {
	case RoleOwner:
		return next == OrderCooking || next == OrderCooked
	case RoleDelivery:
		return next == OrderPickedUp || next == OrderDelivered
	}
	return false
}
