package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestBus(buffer int) *Bus {
	return NewBus(buffer, zap.NewNop(), nil)
}

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.C():
		require.True(t, ok, "channel closed while expecting an event")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case ev, ok := <-sub.C():
		if ok {
			t.Fatalf("unexpected event %q on topic %q", ev.ID, ev.Topic)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_PublishOrder(t *testing.T) {
	bus := newTestBus(8)
	sub := bus.Subscribe(TopicOrderUpdates)
	defer sub.Close()

	for i := 1; i <= 5; i++ {
		bus.Publish(TopicOrderUpdates, i)
	}
	for i := 1; i <= 5; i++ {
		ev := receive(t, sub)
		assert.Equal(t, i, ev.Payload, "events must arrive in publish order")
		assert.NotEmpty(t, ev.ID)
		assert.Equal(t, TopicOrderUpdates, ev.Topic)
	}
}

func TestBus_FanOut(t *testing.T) {
	bus := newTestBus(8)
	first := bus.Subscribe(TopicPendingOrders)
	second := bus.Subscribe(TopicPendingOrders)
	defer first.Close()
	defer second.Close()

	bus.Publish(TopicPendingOrders, "hello")

	assert.Equal(t, "hello", receive(t, first).Payload)
	assert.Equal(t, "hello", receive(t, second).Payload)
}

func TestBus_TopicsAreIndependent(t *testing.T) {
	bus := newTestBus(8)
	pending := bus.Subscribe(TopicPendingOrders)
	cooked := bus.Subscribe(TopicCookedOrders)
	defer pending.Close()
	defer cooked.Close()

	bus.Publish(TopicPendingOrders, "order")

	assert.Equal(t, "order", receive(t, pending).Payload)
	assertNoEvent(t, cooked)
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := newTestBus(8)

	// Must not block or fail; publication is fire-and-forget.
	bus.Publish(TopicUserCreated, UserPayload{UserID: 1})
	assert.Zero(t, bus.SubscriberCount(TopicUserCreated))
}

func TestBus_LateSubscriberMissesEarlierEvents(t *testing.T) {
	bus := newTestBus(8)
	bus.Publish(TopicOrderUpdates, "before")

	sub := bus.Subscribe(TopicOrderUpdates)
	defer sub.Close()

	bus.Publish(TopicOrderUpdates, "after")
	assert.Equal(t, "after", receive(t, sub).Payload)
	assertNoEvent(t, sub)
}

func TestBus_SlowSubscriberDropsNotBlocks(t *testing.T) {
	bus := newTestBus(1)
	slow := bus.Subscribe(TopicOrderUpdates)
	defer slow.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			bus.Publish(TopicOrderUpdates, i)
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber buffer")
	}

	// The buffer holds exactly one event; the rest were dropped for this
	// subscriber only.
	assert.Equal(t, 0, receive(t, slow).Payload)
	assertNoEvent(t, slow)
}

func TestSubscription_Close(t *testing.T) {
	bus := newTestBus(8)
	sub := bus.Subscribe(TopicCookedOrders)
	require.Equal(t, 1, bus.SubscriberCount(TopicCookedOrders))

	sub.Close()
	sub.Close() // idempotent

	assert.Zero(t, bus.SubscriberCount(TopicCookedOrders))
	bus.Publish(TopicCookedOrders, "never seen")

	_, ok := <-sub.C()
	assert.False(t, ok, "channel must be closed after Close")
}

func TestBus_ConcurrentPublishSubscribeClose(t *testing.T) {
	bus := newTestBus(4)

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				bus.Publish(TopicOrderUpdates, i)
			}
		}()
	}
	for s := 0; s < 4; s++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				sub := bus.Subscribe(TopicOrderUpdates)
				<-time.After(time.Microsecond)
				sub.Close()
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, bus.SubscriberCount(TopicOrderUpdates))
}
