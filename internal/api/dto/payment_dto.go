package dto

import (
	"time"

	"github.com/spec-kit/eats-service/internal/domain"
)

// CreatePaymentRequest payload for promoting a restaurant.
type CreatePaymentRequest struct {
	RestaurantID int64 `json:"restaurant_id"`
}

// PaymentResponse is the public shape of a payment record.
type PaymentResponse struct {
	ID            int64     `json:"id"`
	TransactionID string    `json:"transaction_id"`
	UserID        int64     `json:"user_id"`
	RestaurantID  int64     `json:"restaurant_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewPaymentResponse maps a domain payment.
func NewPaymentResponse(payment *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            payment.ID,
		TransactionID: payment.TransactionID,
		UserID:        payment.UserID,
		RestaurantID:  payment.RestaurantID,
		CreatedAt:     payment.CreatedAt,
	}
}

// NewPaymentResponses maps a slice of payments.
func NewPaymentResponses(payments []*domain.Payment) []PaymentResponse {
	out := make([]PaymentResponse, 0, len(payments))
	for _, payment := range payments {
		out = append(out, NewPaymentResponse(payment))
	}
	return out
}
