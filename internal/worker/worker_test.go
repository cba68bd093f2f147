package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/eats-service/internal/domain"
	"github.com/spec-kit/eats-service/internal/events"
	"github.com/spec-kit/eats-service/internal/repository"
)

type recordingMailer struct {
	sent chan string
}

func (m *recordingMailer) SendVerification(email, code string) error {
	m.sent <- email + ":" + code
	return nil
}

func TestMailWorker_SendsOnAccountEvents(t *testing.T) {
	bus := events.NewBus(8, zap.NewNop(), nil)
	mailer := &recordingMailer{sent: make(chan string, 4)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	NewMailWorker(bus, mailer, zap.NewNop()).Start(ctx)

	bus.Publish(events.TopicUserCreated, events.UserPayload{
		UserID: 1, Email: "new@example.com", VerificationCode: "code-1",
	})
	bus.Publish(events.TopicUserEmailChanged, events.UserPayload{
		UserID: 1, Email: "changed@example.com", VerificationCode: "code-2",
	})

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case sent := <-mailer.sent:
			got[sent] = true
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for verification mail")
		}
	}
	assert.True(t, got["new@example.com:code-1"])
	assert.True(t, got["changed@example.com:code-2"])
}

type sweepCountingRepo struct {
	sweeps atomic.Int64
}

func (r *sweepCountingRepo) Create(ctx context.Context, restaurant *domain.Restaurant) error {
	return nil
}

func (r *sweepCountingRepo) Update(ctx context.Context, restaurant *domain.Restaurant) error {
	return nil
}

func (r *sweepCountingRepo) Delete(ctx context.Context, id int64) error { return nil }

func (r *sweepCountingRepo) GetByID(ctx context.Context, id int64) (*domain.Restaurant, error) {
	return nil, nil
}

func (r *sweepCountingRepo) List(ctx context.Context, filter repository.RestaurantFilter) ([]*domain.Restaurant, error) {
	return nil, nil
}

func (r *sweepCountingRepo) ClearExpiredPromotions(ctx context.Context) (int64, error) {
	r.sweeps.Add(1)
	return 1, nil
}

func TestPromotionWorker_SweepsOnInterval(t *testing.T) {
	repo := &sweepCountingRepo{}

	ctx, cancel := context.WithCancel(context.Background())
	NewPromotionWorker(repo, 5*time.Millisecond, zap.NewNop()).Start(ctx)

	require.Eventually(t, func() bool {
		return repo.sweeps.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)
	after := repo.sweeps.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, repo.sweeps.Load(), "sweeping stops after cancellation")
}
