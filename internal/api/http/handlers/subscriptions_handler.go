package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/eats-service/internal/api/dto"
	"github.com/spec-kit/eats-service/internal/auth"
	"github.com/spec-kit/eats-service/internal/domain"
	"github.com/spec-kit/eats-service/internal/events"
)

// SubscriptionsHandler upgrades clients to WebSocket and streams filtered
// bus events until the client disconnects. The identity captured at
// subscribe time drives every filter decision for the life of the
// connection.
type SubscriptionsHandler struct {
	bus    *events.Bus
	logger *zap.Logger
}

// NewSubscriptionsHandler constructs handler.
func NewSubscriptionsHandler(bus *events.Bus, logger *zap.Logger) *SubscriptionsHandler {
	return &SubscriptionsHandler{bus: bus, logger: logger}
}

// Upgrade gates subscription routes to actual WebSocket upgrade requests.
// It runs after the context builder and the guard, so by the time a
// connection reaches the stream the caller is already authorized.
func (h *SubscriptionsHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// PendingOrders streams new pending orders to the restaurant owner.
func (h *SubscriptionsHandler) PendingOrders() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		owner, ok := principalFromConn(conn)
		if !ok {
			_ = conn.Close()
			return
		}
		h.stream(conn, events.TopicPendingOrders, events.PendingOrderFilter(owner))
	})
}

// CookedOrders streams cooked orders to delivery riders.
func (h *SubscriptionsHandler) CookedOrders() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		if _, ok := principalFromConn(conn); !ok {
			_ = conn.Close()
			return
		}
		h.stream(conn, events.TopicCookedOrders, events.CookedOrderFilter())
	})
}

// OrderUpdates streams status changes of one order to its participants.
// The order id is a query argument captured at subscribe time.
func (h *SubscriptionsHandler) OrderUpdates() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		user, ok := principalFromConn(conn)
		if !ok {
			_ = conn.Close()
			return
		}
		orderID, err := strconv.ParseInt(conn.Query("order_id"), 10, 64)
		if err != nil || orderID <= 0 {
			_ = conn.WriteJSON(fiber.Map{"error": "order_id query parameter required"})
			_ = conn.Close()
			return
		}
		h.stream(conn, events.TopicOrderUpdates, events.OrderUpdatesFilter(user, orderID))
	})
}

// stream pumps filtered events to one connection. A read loop watches for
// the client going away; either path unregisters the subscription promptly
// so the bus stops delivering.
func (h *SubscriptionsHandler) stream(conn *websocket.Conn, topic events.Topic, filter events.Filter) {
	sub := h.bus.Subscribe(topic)
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			if !filter(ev) {
				continue
			}
			payload, ok := ev.Payload.(events.OrderPayload)
			if !ok || payload.Order == nil {
				continue
			}
			if err := conn.WriteJSON(dto.NewOrderResponse(payload.Order)); err != nil {
				h.logger.Debug("subscriber write failed, closing",
					zap.String("topic", string(topic)),
					zap.Error(err),
				)
				return
			}
		}
	}
}

func principalFromConn(conn *websocket.Conn) (*domain.User, bool) {
	user, ok := conn.Locals(auth.PrincipalKey).(*domain.User)
	return user, ok && user != nil
}
