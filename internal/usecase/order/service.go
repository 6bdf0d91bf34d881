package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/currency"

	"github.com/danielkv/orderbook-backend/internal/domain"
)

// PriceInput is the raw price of an inbound order request.
// Amount is a pointer so a missing amount is distinguishable from zero.
type PriceInput struct {
	Amount   *decimal.Decimal
	Currency string
}

// CreateOrderInput represents the raw input for creating an order.
// Ticker and side arrive as external strings and are only converted into
// their closed domain types after validation.
type CreateOrderInput struct {
	Ticker string
	Side   string
	Volume int64
	Price  *PriceInput
}

// OrderService handles order creation and lookup
type OrderService struct {
	OrderRepo domain.OrderRepository
	Logger    *zap.Logger
}

// NewOrderService creates a new OrderService instance
func NewOrderService(orderRepo domain.OrderRepository, logger *zap.Logger) *OrderService {
	return &OrderService{
		OrderRepo: orderRepo,
		Logger:    logger,
	}
}

// CreateOrder validates and normalizes a raw order request, stamps the
// creation time and persists the resulting order.
// Logic:
//  1. Structural validation: every field is checked and every violation is
//     collected into a single ValidationError.
//  2. Currency validation: the code must be a recognized ISO 4217 currency,
//     otherwise the request fails with InvalidCurrencyError.
//  3. The order is stamped with the current UTC time and handed to the
//     repository, which assigns and returns its identifier.
func (s *OrderService) CreateOrder(ctx context.Context, input CreateOrderInput) (uuid.UUID, error) {
	ticker, side, violations := validateStructure(input)
	if len(violations) > 0 {
		return uuid.Nil, &domain.ValidationError{Violations: violations}
	}

	unit, err := currency.ParseISO(input.Price.Currency)
	if err != nil {
		s.Logger.Error("rejected order with unrecognized currency",
			zap.String("currency", input.Price.Currency))
		return uuid.Nil, &domain.InvalidCurrencyError{Code: input.Price.Currency}
	}

	order := &domain.Order{
		Ticker:    ticker,
		Side:      side,
		Volume:    input.Volume,
		Price:     *input.Price.Amount,
		Currency:  unit.String(),
		CreatedAt: time.Now().UTC(),
	}

	id, err := s.OrderRepo.Save(ctx, order)
	if err != nil {
		return uuid.Nil, err
	}

	return id, nil
}

// GetOrder retrieves an order by its ID.
// Returns (nil, nil) when the identifier is unknown; an absent order is an
// expected outcome, not an error.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.OrderRepo.FindByID(ctx, id)
}

// validateStructure checks all request fields and returns the parsed enums
// together with the complete list of violations.
func validateStructure(input CreateOrderInput) (domain.Ticker, domain.Side, []domain.FieldViolation) {
	var violations []domain.FieldViolation

	ticker, ok := domain.ParseTicker(input.Ticker)
	if !ok {
		violations = append(violations, domain.FieldViolation{
			Field:  "ticker",
			Reason: fmt.Sprintf("must be one of %s", joinTickers()),
		})
	}

	side, ok := domain.ParseSide(input.Side)
	if !ok {
		violations = append(violations, domain.FieldViolation{
			Field:  "side",
			Reason: fmt.Sprintf("must be one of %s, %s", domain.SidePurchase, domain.SideSale),
		})
	}

	if input.Volume < 1 {
		violations = append(violations, domain.FieldViolation{
			Field:  "volume",
			Reason: "must be at least 1",
		})
	}

	if input.Price == nil {
		violations = append(violations, domain.FieldViolation{
			Field:  "price",
			Reason: "is required",
		})
		return ticker, side, violations
	}

	if input.Price.Amount == nil {
		violations = append(violations, domain.FieldViolation{
			Field:  "price.amount",
			Reason: "is required",
		})
	} else if input.Price.Amount.IsNegative() {
		violations = append(violations, domain.FieldViolation{
			Field:  "price.amount",
			Reason: "must not be negative",
		})
	}

	if strings.TrimSpace(input.Price.Currency) == "" {
		violations = append(violations, domain.FieldViolation{
			Field:  "price.currency",
			Reason: "must not be blank",
		})
	}

	return ticker, side, violations
}

func joinTickers() string {
	names := make([]string, len(domain.Tickers))
	for i, t := range domain.Tickers {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}
