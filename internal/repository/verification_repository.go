package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/eats-service/internal/domain"
)

// VerificationRepository stores pending email-verification codes.
type VerificationRepository interface {
	Create(ctx context.Context, verification *domain.Verification) error
	GetByCode(ctx context.Context, code string) (*domain.Verification, error)
	DeleteByUser(ctx context.Context, userID int64) error
	Delete(ctx context.Context, id int64) error
}

type verificationRepository struct {
	pool *pgxpool.Pool
}

// NewVerificationRepository returns a Postgres-backed implementation.
func NewVerificationRepository(pool *pgxpool.Pool) VerificationRepository {
	return &verificationRepository{pool: pool}
}

func (r *verificationRepository) Create(ctx context.Context, verification *domain.Verification) error {
	const query = `
        INSERT INTO verifications (code, user_id)
        VALUES ($1, $2)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		verification.Code,
		verification.UserID,
	).Scan(&verification.ID, &verification.CreatedAt)
}

func (r *verificationRepository) GetByCode(ctx context.Context, code string) (*domain.Verification, error) {
	const query = `
        SELECT id, code, user_id, created_at
        FROM verifications WHERE code=$1`

	var v domain.Verification
	if err := r.pool.QueryRow(ctx, query, code).Scan(
		&v.ID,
		&v.Code,
		&v.UserID,
		&v.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *verificationRepository) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM verifications WHERE user_id=$1`, userID)
	return err
}

func (r *verificationRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM verifications WHERE id=$1`, id)
	return err
}
