package repository

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/eats-service/internal/domain"
)

// OrderFilter narrows order listings to one party and optional statuses.
type OrderFilter struct {
	CustomerID   *int64
	DriverID     *int64
	RestaurantID *int64
	Statuses     []domain.OrderStatus
	Limit        int
	Offset       int
}

// OrderRepository defines persistence access for orders.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	Update(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, error)
}

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns a Postgres-backed implementation.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}

	const query = `
        INSERT INTO orders (customer_id, restaurant_id, items, total, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		order.CustomerID,
		order.RestaurantID,
		items,
		order.Total,
		order.Status,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
}

func (r *orderRepository) Update(ctx context.Context, order *domain.Order) error {
	const query = `
        UPDATE orders SET driver_id=$1, status=$2, updated_at=NOW()
        WHERE id=$3`

	cmd, err := r.pool.Exec(ctx, query,
		order.DriverID,
		order.Status,
		order.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	const query = `
        SELECT id, customer_id, driver_id, restaurant_id, items, total, status, created_at, updated_at
        FROM orders WHERE id=$1`

	return scanOrder(r.pool.QueryRow(ctx, query, id))
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]*domain.Order, error) {
	query := `
        SELECT id, customer_id, driver_id, restaurant_id, items, total, status, created_at, updated_at
        FROM orders WHERE 1=1`
	args := make([]any, 0, 4)

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		query += ` AND customer_id=$` + strconv.Itoa(len(args))
	}
	if filter.DriverID != nil {
		args = append(args, *filter.DriverID)
		query += ` AND driver_id=$` + strconv.Itoa(len(args))
	}
	if filter.RestaurantID != nil {
		args = append(args, *filter.RestaurantID)
		query += ` AND restaurant_id=$` + strconv.Itoa(len(args))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		args = append(args, statuses)
		query += ` AND status = ANY($` + strconv.Itoa(len(args)) + `)`
	}

	query += ` ORDER BY id DESC`
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

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		order domain.Order
		items []byte
	)
	if err := row.Scan(
		&order.ID,
		&order.CustomerID,
		&order.DriverID,
		&order.RestaurantID,
		&items,
		&order.Total,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &order.Items); err != nil {
			return nil, err
		}
	}
	return &order, nil
}
