package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence operations
type OrderRepository interface {
	// Save persists a new order and returns the identifier assigned by the
	// storage layer. Supplied fields are stored as-is.
	Save(ctx context.Context, order *Order) (uuid.UUID, error)

	// FindByID retrieves an order by its ID.
	// Returns (nil, nil) when no order exists with the given ID.
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindMatching retrieves all orders with the given ticker and side whose
	// CreatedAt falls within [from, to], inclusive on both ends.
	FindMatching(ctx context.Context, ticker Ticker, side Side, from, to time.Time) ([]*Order, error)
}
