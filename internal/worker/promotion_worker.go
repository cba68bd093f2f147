package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/eats-service/internal/repository"
)

// PromotionWorker periodically clears expired restaurant promotions.
type PromotionWorker struct {
	restaurants repository.RestaurantRepository
	interval    time.Duration
	logger      *zap.Logger
}

// NewPromotionWorker constructs the worker.
func NewPromotionWorker(restaurants repository.RestaurantRepository, interval time.Duration, logger *zap.Logger) *PromotionWorker {
	return &PromotionWorker{restaurants: restaurants, interval: interval, logger: logger}
}

// Start runs the sweep loop until ctx is cancelled.
func (w *PromotionWorker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cleared, err := w.restaurants.ClearExpiredPromotions(ctx)
				if err != nil {
					w.logger.Warn("promotion sweep failed", zap.Error(err))
					continue
				}
				if cleared > 0 {
					w.logger.Info("expired promotions cleared", zap.Int64("count", cleared))
				}
			}
		}
	}()
}
