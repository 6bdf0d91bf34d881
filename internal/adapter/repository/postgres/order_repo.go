package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/danielkv/orderbook-backend/internal/domain"
)

// orderRepository implements domain.OrderRepository
type orderRepository struct {
	db *DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *DB) domain.OrderRepository {
	return &orderRepository{db: db}
}

// Save persists a new order and returns its storage-assigned identifier
func (r *orderRepository) Save(ctx context.Context, order *domain.Order) (uuid.UUID, error) {
	query := `
		INSERT INTO orders (id, ticker, side, volume, price, currency, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	id := uuid.New()
	_, err := r.db.ExecContext(ctx, query,
		id,
		string(order.Ticker),
		string(order.Side),
		order.Volume,
		order.Price.String(),
		order.Currency,
		order.CreatedAt,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert order: %w", err)
	}

	return id, nil
}

// FindByID retrieves an order by its ID.
// Returns (nil, nil) when no order exists with the given ID.
func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `
		SELECT id, ticker, side, volume, price, currency, created_at
		FROM orders
		WHERE id = $1
	`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order by ID: %w", err)
	}

	return order, nil
}

// FindMatching retrieves all orders for the given ticker and side created
// within [from, to], inclusive on both ends.
func (r *orderRepository) FindMatching(ctx context.Context, ticker domain.Ticker, side domain.Side, from, to time.Time) ([]*domain.Order, error) {
	query := `
		SELECT id, ticker, side, volume, price, currency, created_at
		FROM orders
		WHERE ticker = $1 AND side = $2 AND created_at >= $3 AND created_at <= $4
	`

	rows, err := r.db.QueryContext(ctx, query, string(ticker), string(side), from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query matching orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate matching orders: %w", err)
	}

	return orders, nil
}

// scanner abstracts sql.Row and sql.Rows for scanOrder
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row scanner) (*domain.Order, error) {
	var order domain.Order
	var ticker, side, priceStr string

	err := row.Scan(
		&order.ID,
		&ticker,
		&side,
		&order.Volume,
		&priceStr,
		&order.Currency,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Ticker = domain.Ticker(ticker)
	order.Side = domain.Side(side)

	// Parse price (DECIMAL)
	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price: %w", err)
	}
	order.Price = price

	return &order, nil
}
