package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/eats-service/internal/observability"
)

const defaultSubscriberBuffer = 64

// Bus is the process-wide in-memory publish/subscribe channel for domain
// events. It is constructed once at startup and passed explicitly to every
// publisher and subscriber.
//
// Guarantees: per topic, all subscribers observe publishes in the same
// relative order; a slow or closed subscriber never blocks publication to
// the others; a new subscription only sees events published after it.
type Bus struct {
	mu      sync.Mutex
	subs    map[Topic][]*Subscription
	buffer  int
	logger  *zap.Logger
	metrics *observability.Metrics
}

// Subscription is one live registration on a topic. Events arrive on C()
// in publish order until Close.
type Subscription struct {
	topic Topic
	ch    chan Event
	bus   *Bus
	once  sync.Once
}

// NewBus creates a bus. buffer is the per-subscriber channel capacity;
// <= 0 picks the default. metrics may be nil.
func NewBus(buffer int, logger *zap.Logger, metrics *observability.Metrics) *Bus {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	return &Bus{
		subs:    make(map[Topic][]*Subscription),
		buffer:  buffer,
		logger:  logger,
		metrics: metrics,
	}
}

// Publish delivers the payload to every current subscriber of the topic.
// Fire-and-forget: it does not wait for consumers, does not fail with zero
// subscribers, and never reports delivery problems back to the caller. When
// a subscriber's buffer is full the event is dropped for that subscriber
// only.
func (b *Bus) Publish(topic Topic, payload any) {
	ev := Event{
		ID:        uuid.NewString(),
		Topic:     topic,
		Timestamp: time.Now(),
		Payload:   payload,
	}
	b.metrics.RecordPublish(string(topic))

	// The registry lock is held across the fan-out so that concurrent
	// publishes on one topic reach every subscriber in the same order, and
	// so that Close can never close a channel mid-send. Sends are
	// non-blocking, so the critical section stays short.
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs[topic] {
		select {
		case sub.ch <- ev:
			b.metrics.RecordDelivery(string(topic))
		default:
			b.metrics.RecordDrop(string(topic))
			b.logger.Warn("event dropped for slow subscriber", zap.String("topic", string(topic)))
		}
	}
}

// Subscribe registers a new subscription on the topic. The returned
// subscription receives only events published after this call.
func (b *Bus) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		topic: topic,
		ch:    make(chan Event, b.buffer),
		bus:   b,
	}
	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], sub)
	b.mu.Unlock()
	return sub
}

// C returns the receive side of the subscription. The channel is closed by
// Close; ranging over it terminates cleanly on unsubscribe.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Topic returns the topic this subscription is bound to.
func (s *Subscription) Topic() Topic {
	return s.topic
}

// Close unregisters the subscription and closes its channel. Idempotent and
// safe to call concurrently with Publish; no events are delivered after
// Close returns.
func (s *Subscription) Close() {
	s.once.Do(func() {
		b := s.bus
		b.mu.Lock()
		defer b.mu.Unlock()
		current := b.subs[s.topic]
		for i, sub := range current {
			if sub == s {
				b.subs[s.topic] = append(current[:i:i], current[i+1:]...)
				break
			}
		}
		close(s.ch)
	})
}

// SubscriberCount reports how many subscriptions a topic currently has.
func (b *Bus) SubscriberCount(topic Topic) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[topic])
}
