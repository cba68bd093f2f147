package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/eats-service/internal/auth"
	"github.com/spec-kit/eats-service/internal/domain"
	"github.com/spec-kit/eats-service/internal/repository"
	"github.com/spec-kit/eats-service/pkg/util"
)

// PaymentService records promotion payments and applies the promotion to
// the paid restaurant.
type PaymentService struct {
	payments      repository.PaymentRepository
	restaurants   repository.RestaurantRepository
	promotionSpan time.Duration
}

// NewPaymentService constructs the service.
func NewPaymentService(payments repository.PaymentRepository, restaurants repository.RestaurantRepository, promotionSpan time.Duration) *PaymentService {
	return &PaymentService{
		payments:      payments,
		restaurants:   restaurants,
		promotionSpan: promotionSpan,
	}
}

// Create records a payment by the owner of the restaurant and promotes the
// restaurant for the configured span.
func (s *PaymentService) Create(ctx context.Context, owner *domain.User, restaurantID int64) (*domain.Payment, error) {
	restaurant, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("restaurant")
		}
		return nil, err
	}
	if err := auth.CheckOwnership(owner, restaurant.OwnerID); err != nil {
		return nil, err
	}

	payment := &domain.Payment{
		TransactionID: uuid.NewString(),
		UserID:        owner.ID,
		RestaurantID:  restaurant.ID,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	until := time.Now().Add(s.promotionSpan)
	restaurant.IsPromoted = true
	restaurant.PromotedUntil = &until
	if err := s.restaurants.Update(ctx, restaurant); err != nil {
		return nil, err
	}
	return payment, nil
}

// List returns the caller's payments.
func (s *PaymentService) List(ctx context.Context, owner *domain.User) ([]*domain.Payment, error) {
	return s.payments.ListByUser(ctx, owner.ID)
}
