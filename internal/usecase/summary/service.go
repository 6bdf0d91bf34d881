package summary

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/danielkv/orderbook-backend/internal/domain"
)

// SummaryService computes per-currency order statistics
type SummaryService struct {
	OrderRepo domain.OrderRepository
	Logger    *zap.Logger
}

// NewSummaryService creates a new SummaryService instance
func NewSummaryService(orderRepo domain.OrderRepository, logger *zap.Logger) *SummaryService {
	return &SummaryService{
		OrderRepo: orderRepo,
		Logger:    logger,
	}
}

// accumulator carries the running statistics of one currency group
type accumulator struct {
	maxPrice    decimal.Decimal
	minPrice    decimal.Decimal
	weightedSum decimal.Decimal // Sum of price * volume
	totalVolume int64
}

// GetSummaries returns one OrderSummary per currency found among the orders
// matching the given ticker, side and UTC calendar day.
// Logic:
//  1. The day boundary is inclusive on both ends: from midnight UTC up to and
//     including the last nanosecond of the same date.
//  2. Matching orders are folded in a single pass into one accumulator per
//     currency (running max/min, total volume, volume-weighted price sum).
//  3. Each accumulator becomes an OrderSummary with a volume-weighted average
//     price. Group ordering is unspecified.
//
// A day with no matching orders yields an empty slice, not an error.
func (s *SummaryService) GetSummaries(ctx context.Context, ticker domain.Ticker, side domain.Side, date time.Time) ([]domain.OrderSummary, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	from := day
	to := day.Add(24*time.Hour - time.Nanosecond)

	orders, err := s.OrderRepo.FindMatching(ctx, ticker, side, from, to)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]*accumulator)
	for _, order := range orders {
		weighted := order.Price.Mul(decimal.NewFromInt(order.Volume))

		acc, ok := groups[order.Currency]
		if !ok {
			groups[order.Currency] = &accumulator{
				maxPrice:    order.Price,
				minPrice:    order.Price,
				weightedSum: weighted,
				totalVolume: order.Volume,
			}
			continue
		}

		if order.Price.GreaterThan(acc.maxPrice) {
			acc.maxPrice = order.Price
		}
		if order.Price.LessThan(acc.minPrice) {
			acc.minPrice = order.Price
		}
		acc.weightedSum = acc.weightedSum.Add(weighted)
		acc.totalVolume += order.Volume
	}

	summaries := make([]domain.OrderSummary, 0, len(groups))
	for cur, acc := range groups {
		summaries = append(summaries, s.buildSummary(ticker, side, cur, day, acc))
	}

	return summaries, nil
}

// buildSummary converts one currency accumulator into an OrderSummary.
// A zero total volume in a non-empty group cannot happen while the volume >= 1
// invariant holds; it is logged as a defect and the average is left unset
// rather than fabricating a value.
func (s *SummaryService) buildSummary(ticker domain.Ticker, side domain.Side, cur string, day time.Time, acc *accumulator) domain.OrderSummary {
	var avgPrice *decimal.Decimal
	if acc.totalVolume > 0 {
		avg := acc.weightedSum.Div(decimal.NewFromInt(acc.totalVolume))
		avgPrice = &avg
	} else {
		s.Logger.Error("failed to calculate average price",
			zap.String("ticker", string(ticker)),
			zap.String("side", string(side)),
			zap.String("currency", cur),
			zap.String("totalSum", acc.weightedSum.String()),
			zap.Int64("totalVolume", acc.totalVolume))
	}

	return domain.OrderSummary{
		Ticker:       ticker,
		Side:         side,
		MaxPrice:     acc.maxPrice,
		MinPrice:     acc.minPrice,
		AveragePrice: avgPrice,
		TotalVolume:  acc.totalVolume,
		Currency:     cur,
		Date:         day,
	}
}
