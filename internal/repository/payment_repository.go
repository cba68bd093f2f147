package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/eats-service/internal/domain"
)

// PaymentRepository defines persistence access for promotion payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	ListByUser(ctx context.Context, userID int64) ([]*domain.Payment, error)
}

type paymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository returns a Postgres-backed implementation.
func NewPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &paymentRepository{pool: pool}
}

func (r *paymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	const query = `
        INSERT INTO payments (transaction_id, user_id, restaurant_id)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		payment.TransactionID,
		payment.UserID,
		payment.RestaurantID,
	).Scan(&payment.ID, &payment.CreatedAt)
}

func (r *paymentRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Payment, error) {
	const query = `
        SELECT id, transaction_id, user_id, restaurant_id, created_at
        FROM payments WHERE user_id=$1 ORDER BY id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var payment domain.Payment
	if err := row.Scan(
		&payment.ID,
		&payment.TransactionID,
		&payment.UserID,
		&payment.RestaurantID,
		&payment.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &payment, nil
}
