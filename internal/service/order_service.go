package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/eats-service/internal/domain"
	"github.com/spec-kit/eats-service/internal/events"
	"github.com/spec-kit/eats-service/internal/repository"
	"github.com/spec-kit/eats-service/pkg/util"
)

// OrderService coordinates order placement and the status workflow. Every
// mutation publishes to the event bus after the write succeeds; publication
// never fails the operation that triggered it.
type OrderService struct {
	orders      repository.OrderRepository
	restaurants repository.RestaurantRepository
	dishes      repository.DishRepository
	bus         *events.Bus
}

// OrderDependencies bundles collaborators for the order service.
type OrderDependencies struct {
	OrderRepo      repository.OrderRepository
	RestaurantRepo repository.RestaurantRepository
	DishRepo       repository.DishRepository
	Bus            *events.Bus
}

// CreateOrderInput describes an order placement.
type CreateOrderInput struct {
	RestaurantID int64
	Items        []domain.OrderItem
}

// NewOrderService constructs the service.
func NewOrderService(deps OrderDependencies) *OrderService {
	return &OrderService{
		orders:      deps.OrderRepo,
		restaurants: deps.RestaurantRepo,
		dishes:      deps.DishRepo,
		bus:         deps.Bus,
	}
}

// Create places an order for a client. The total is computed server-side
// from the dish prices and chosen option surcharges; afterwards the new
// pending order is announced to the restaurant owner.
func (s *OrderService) Create(ctx context.Context, customer *domain.User, input CreateOrderInput) (*domain.Order, error) {
	if len(input.Items) == 0 {
		return nil, util.NewValidationError("order needs at least one item", nil)
	}

	restaurant, err := s.restaurants.GetByID(ctx, input.RestaurantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("restaurant")
		}
		return nil, err
	}

	total := 0
	for _, item := range input.Items {
		dish, err := s.dishes.GetByID(ctx, item.DishID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, util.NewNotFound("dish")
			}
			return nil, err
		}
		if dish.RestaurantID != restaurant.ID {
			return nil, util.NewValidationError("dish does not belong to restaurant", map[string]any{"dish_id": item.DishID})
		}
		total += dish.Price
		for _, opt := range item.Options {
			total += dish.OptionExtra(opt.Name, opt.Choice)
		}
	}

	order := &domain.Order{
		CustomerID:   customer.ID,
		RestaurantID: restaurant.ID,
		Items:        input.Items,
		Total:        total,
		Status:       domain.OrderPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.bus.Publish(events.TopicPendingOrders, events.OrderPayload{
		Order:   order,
		OwnerID: restaurant.OwnerID,
	})
	return order, nil
}

// List returns the caller's orders, scoped by role: clients see orders they
// placed, riders see orders they drive, owners see orders against their
// restaurants.
func (s *OrderService) List(ctx context.Context, caller *domain.User, statuses []domain.OrderStatus, limit, offset int) ([]*domain.Order, error) {
	filter := repository.OrderFilter{Statuses: statuses, Limit: limit, Offset: offset}

	switch caller.Role {
	case domain.RoleClient:
		filter.CustomerID = &caller.ID
	case domain.RoleDelivery:
		filter.DriverID = &caller.ID
	case domain.RoleOwner:
		restaurants, err := s.restaurants.List(ctx, repository.RestaurantFilter{OwnerID: &caller.ID})
		if err != nil {
			return nil, err
		}
		var orders []*domain.Order
		for _, restaurant := range restaurants {
			f := filter
			f.RestaurantID = &restaurant.ID
			part, err := s.orders.List(ctx, f)
			if err != nil {
				return nil, err
			}
			orders = append(orders, part...)
		}
		return orders, nil
	}

	return s.orders.List(ctx, filter)
}

// Get returns one order, visible only to its participants.
func (s *OrderService) Get(ctx context.Context, caller *domain.User, orderID int64) (*domain.Order, error) {
	order, restaurant, err := s.orderWithRestaurant(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(caller, order, restaurant) {
		return nil, util.NewForbidden("not a participant of this order")
	}
	return order, nil
}

// EditStatus moves an order through its lifecycle. Which transitions a
// caller may perform depends on role (owners cook, riders deliver); a legal
// change is persisted and then published as an order update, plus a cooked
// announcement for the riders when the kitchen finishes.
func (s *OrderService) EditStatus(ctx context.Context, caller *domain.User, orderID int64, status domain.OrderStatus) (*domain.Order, error) {
	order, restaurant, err := s.orderWithRestaurant(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(caller, order, restaurant) {
		return nil, util.NewForbidden("not a participant of this order")
	}
	if !domain.CanSetStatus(caller.Role, status) {
		return nil, util.NewForbidden("role may not set this status")
	}

	order.Status = status
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	payload := events.OrderPayload{Order: order, OwnerID: restaurant.OwnerID}
	if status == domain.OrderCooked {
		s.bus.Publish(events.TopicCookedOrders, payload)
	}
	s.bus.Publish(events.TopicOrderUpdates, payload)
	return order, nil
}

// Take assigns a driverless order to the calling delivery rider.
func (s *OrderService) Take(ctx context.Context, driver *domain.User, orderID int64) (*domain.Order, error) {
	order, restaurant, err := s.orderWithRestaurant(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.DriverID != nil {
		return nil, util.NewConflict("order already has a driver", nil)
	}

	order.DriverID = &driver.ID
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.bus.Publish(events.TopicOrderUpdates, events.OrderPayload{
		Order:   order,
		OwnerID: restaurant.OwnerID,
	})
	return order, nil
}

// RestaurantOwnerID resolves the owning user of an order's restaurant.
func (s *OrderService) RestaurantOwnerID(ctx context.Context, orderID int64) (int64, error) {
	_, restaurant, err := s.orderWithRestaurant(ctx, orderID)
	if err != nil {
		return 0, err
	}
	return restaurant.OwnerID, nil
}

func (s *OrderService) orderWithRestaurant(ctx context.Context, orderID int64) (*domain.Order, *domain.Restaurant, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, util.NewNotFound("order")
		}
		return nil, nil, err
	}
	restaurant, err := s.restaurants.GetByID(ctx, order.RestaurantID)
	if err != nil {
		return nil, nil, err
	}
	return order, restaurant, nil
}

func isParticipant(user *domain.User, order *domain.Order, restaurant *domain.Restaurant) bool {
	if order.CustomerID == user.ID || restaurant.OwnerID == user.ID {
		return true
	}
	return order.DriverID != nil && *order.DriverID == user.ID
}
