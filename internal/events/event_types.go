package events

import (
	"time"

	"github.com/spec-kit/eats-service/internal/domain"
)

// Topic names a stream of related domain events on the bus.
type Topic string

const (
	// TopicPendingOrders fires when a client places an order; scoped to the
	// owner of the restaurant receiving it.
	TopicPendingOrders Topic = "orders.pending"
	// TopicCookedOrders fires when the kitchen marks an order cooked and a
	// delivery rider can pick it up.
	TopicCookedOrders Topic = "orders.cooked"
	// TopicOrderUpdates fires on every status change of an order.
	TopicOrderUpdates Topic = "orders.updates"

	// TopicUserCreated fires after account creation, for verification mail.
	TopicUserCreated Topic = "users.created"
	// TopicUserEmailChanged fires when a profile edit changes the email.
	TopicUserEmailChanged Topic = "users.email_changed"
)

// Event is an immutable message published on the bus. Payload is never
// mutated after publish; subscribers consume it independently.
type Event struct {
	ID        string
	Topic     Topic
	Timestamp time.Time
	Payload   any
}

// OrderPayload rides order-related topics. OwnerID is the id of the user
// owning the restaurant the order targets, used by subscription filters.
type OrderPayload struct {
	Order   *domain.Order
	OwnerID int64
}

// UserPayload rides user-related topics.
type UserPayload struct {
	UserID           int64
	Email            string
	VerificationCode string
}
