package events

import "github.com/spec-kit/eats-service/internal/domain"

// Filter decides, per subscriber, whether one published event should be
// delivered. Filters are pure: they read only the subscription's captured
// identity/arguments and the event, and never touch shared state.
type Filter func(Event) bool

// Resolver transforms a matching event into the subscriber-facing payload.
type Resolver func(Event) any

// PendingOrderFilter delivers new pending orders only to the owner of the
// restaurant that received them.
func PendingOrderFilter(owner *domain.User) Filter {
	ownerID := owner.ID
	return func(ev Event) bool {
		payload, ok := ev.Payload.(OrderPayload)
		return ok && payload.OwnerID == ownerID
	}
}

// CookedOrderFilter matches every cooked order; any rider may pick any
// order up.
func CookedOrderFilter() Filter {
	return func(ev Event) bool {
		_, ok := ev.Payload.(OrderPayload)
		return ok
	}
}

// OrderUpdatesFilter delivers updates for one order id, and only to its
// participants: the customer, the assigned driver, or the restaurant owner.
func OrderUpdatesFilter(user *domain.User, orderID int64) Filter {
	userID := user.ID
	return func(ev Event) bool {
		payload, ok := ev.Payload.(OrderPayload)
		if !ok || payload.Order == nil || payload.Order.ID != orderID {
			return false
		}
		order := payload.Order
		if order.CustomerID == userID || payload.OwnerID == userID {
			return true
		}
		return order.DriverID != nil && *order.DriverID == userID
	}
}

// OrderResolver exposes the order itself as the subscriber payload.
func OrderResolver() Resolver {
	return func(ev Event) any {
		if payload, ok := ev.Payload.(OrderPayload); ok {
			return payload.Order
		}
		return nil
	}
}
