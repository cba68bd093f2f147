package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/eats-service/internal/domain"
)

// CategoryRepository defines persistence access for cuisine categories.
type CategoryRepository interface {
	GetOrCreate(ctx context.Context, name, slug, coverImage string) (*domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
	CountRestaurants(ctx context.Context, categoryID int64) (int64, error)
}

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a Postgres-backed implementation.
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) GetOrCreate(ctx context.Context, name, slug, coverImage string) (*domain.Category, error) {
	const query = `
        INSERT INTO categories (name, slug, cover_image)
        VALUES ($1, $2, $3)
        ON CONFLICT (slug) DO UPDATE SET name=EXCLUDED.name
        RETURNING id, name, slug, cover_image, created_at, updated_at`

	return scanCategory(r.pool.QueryRow(ctx, query, name, slug, coverImage))
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	const query = `
        SELECT id, name, slug, cover_image, created_at, updated_at
        FROM categories WHERE slug=$1`

	return scanCategory(r.pool.QueryRow(ctx, query, slug))
}

func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	const query = `
        SELECT id, name, slug, cover_image, created_at, updated_at
        FROM categories ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *categoryRepository) CountRestaurants(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM restaurants WHERE category_id=$1`, categoryID,
	).Scan(&count)
	return count, err
}

func scanCategory(row pgx.Row) (*domain.Category, error) {
	var category domain.Category
	if err := row.Scan(
		&category.ID,
		&category.Name,
		&category.Slug,
		&category.CoverImage,
		&category.CreatedAt,
		&category.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &category, nil
}
