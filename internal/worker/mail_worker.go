package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/eats-service/internal/events"
	"github.com/spec-kit/eats-service/internal/service"
)

// MailWorker subscribes to account events on the bus and sends verification
// mail out of band, so SMTP latency or failure never touches the request
// that triggered it.
type MailWorker struct {
	bus    *events.Bus
	mailer service.Mailer
	logger *zap.Logger
}

// NewMailWorker constructs the worker.
func NewMailWorker(bus *events.Bus, mailer service.Mailer, logger *zap.Logger) *MailWorker {
	return &MailWorker{bus: bus, mailer: mailer, logger: logger}
}

// Start launches one consumer per account topic. Consumers stop when ctx is
// cancelled.
func (w *MailWorker) Start(ctx context.Context) {
	for _, topic := range []events.Topic{events.TopicUserCreated, events.TopicUserEmailChanged} {
		sub := w.bus.Subscribe(topic)
		go w.consume(ctx, sub)
	}
}

func (w *MailWorker) consume(ctx context.Context, sub *events.Subscription) {
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			payload, ok := ev.Payload.(events.UserPayload)
			if !ok {
				continue
			}
			if err := w.mailer.SendVerification(payload.Email, payload.VerificationCode); err != nil {
				w.logger.Warn("verification mail failed",
					zap.Int64("user_id", payload.UserID),
					zap.Error(err),
				)
			}
		}
	}
}
