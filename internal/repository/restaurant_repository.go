package repository

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/eats-service/internal/domain"
)

// RestaurantFilter narrows restaurant listings.
type RestaurantFilter struct {
	CategoryID *int64
	OwnerID    *int64
	Query      *string
	Limit      int
	Offset     int
}

// RestaurantRepository defines persistence access for restaurants.
type RestaurantRepository interface {
	Create(ctx context.Context, restaurant *domain.Restaurant) error
	Update(ctx context.Context, restaurant *domain.Restaurant) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Restaurant, error)
	List(ctx context.Context, filter RestaurantFilter) ([]*domain.Restaurant, error)
	ClearExpiredPromotions(ctx context.Context) (int64, error)
}

type restaurantRepository struct {
	pool *pgxpool.Pool
}

// NewRestaurantRepository returns a Postgres-backed implementation.
func NewRestaurantRepository(pool *pgxpool.Pool) RestaurantRepository {
	return &restaurantRepository{pool: pool}
}

const restaurantColumns = `
        id, name, cover_image, address, category_id, owner_id,
        is_promoted, promoted_until, created_at, updated_at`

func (r *restaurantRepository) Create(ctx context.Context, restaurant *domain.Restaurant) error {
	const query = `
        INSERT INTO restaurants (name, cover_image, address, category_id, owner_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		restaurant.Name,
		restaurant.CoverImage,
		restaurant.Address,
		restaurant.CategoryID,
		restaurant.OwnerID,
	).Scan(&restaurant.ID, &restaurant.CreatedAt, &restaurant.UpdatedAt)
}

func (r *restaurantRepository) Update(ctx context.Context, restaurant *domain.Restaurant) error {
	const query = `
        UPDATE restaurants
        SET name=$1, cover_image=$2, address=$3, category_id=$4,
            is_promoted=$5, promoted_until=$6, updated_at=NOW()
        WHERE id=$7`

	cmd, err := r.pool.Exec(ctx, query,
		restaurant.Name,
		restaurant.CoverImage,
		restaurant.Address,
		restaurant.CategoryID,
		restaurant.IsPromoted,
		restaurant.PromotedUntil,
		restaurant.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *restaurantRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM restaurants WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *restaurantRepository) GetByID(ctx context.Context, id int64) (*domain.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE id=$1`
	return scanRestaurant(r.pool.QueryRow(ctx, query, id))
}

func (r *restaurantRepository) List(ctx context.Context, filter RestaurantFilter) ([]*domain.Restaurant, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE 1=1`
	args := make([]any, 0, 4)

	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		query += ` AND category_id=$` + strconv.Itoa(len(args))
	}
	if filter.OwnerID != nil {
		args = append(args, *filter.OwnerID)
		query += ` AND owner_id=$` + strconv.Itoa(len(args))
	}
	if filter.Query != nil {
		args = append(args, "%"+*filter.Query+"%")
		query += ` AND name ILIKE $` + strconv.Itoa(len(args))
	}

	query += ` ORDER BY is_promoted DESC, id`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var restaurants []*domain.Restaurant
	for rows.Next() {
		restaurant, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		restaurants = append(restaurants, restaurant)
	}
	return restaurants, rows.Err()
}

func (r *restaurantRepository) ClearExpiredPromotions(ctx context.Context) (int64, error) {
	const query = `
        UPDATE restaurants
        SET is_promoted=false, promoted_until=NULL, updated_at=NOW()
        WHERE is_promoted=true AND promoted_until < NOW()`

	cmd, err := r.pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanRestaurant(row pgx.Row) (*domain.Restaurant, error) {
	var restaurant domain.Restaurant
	if err := row.Scan(
		&restaurant.ID,
		&restaurant.Name,
		&restaurant.CoverImage,
		&restaurant.Address,
		&restaurant.CategoryID,
		&restaurant.OwnerID,
		&restaurant.IsPromoted,
		&restaurant.PromotedUntil,
		&restaurant.CreatedAt,
		&restaurant.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &restaurant, nil
}
