package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ticker identifies one of the tradable instruments supported by the system.
// The set is closed: values are only produced by the constants below or by
// ParseTicker at the input boundary.
type Ticker string

const (
	TickerGME  Ticker = "GME"
	TickerTSLA Ticker = "TSLA"
	TickerSAVE Ticker = "SAVE"
)

// Tickers lists every supported ticker, in declaration order.
var Tickers = []Ticker{TickerGME, TickerTSLA, TickerSAVE}

// ParseTicker converts a raw external string into a Ticker.
// Returns false if the string is not a supported ticker.
func ParseTicker(s string) (Ticker, bool) {
	for _, t := range Tickers {
		if s == string(t) {
			return t, true
		}
	}
	return "", false
}

// Side represents the direction of an order
type Side string

const (
	SidePurchase Side = "PURCHASE"
	SideSale     Side = "SALE"
)

// Sides lists both order sides.
var Sides = []Side{SidePurchase, SideSale}

// ParseSide converts a raw external string into a Side.
// Returns false if the string is not a valid side.
func ParseSide(s string) (Side, bool) {
	for _, v := range Sides {
		if s == string(v) {
			return v, true
		}
	}
	return "", false
}

// Order represents an order entity in the domain layer.
// Orders are immutable once persisted; the store is append-only.
type Order struct {
	ID        uuid.UUID
	Ticker    Ticker
	Side      Side
	Volume    int64           // Always >= 1
	Price     decimal.Decimal // Non-negative, exact decimal
	Currency  string          // ISO 4217 code, validated at creation
	CreatedAt time.Time       // Assigned by the system at acceptance, UTC
}

// OrderSummary holds per-currency statistics over the orders matching one
// ticker, side and calendar day. It is derived on demand and never persisted.
type OrderSummary struct {
	Ticker       Ticker
	Side         Side
	MaxPrice     decimal.Decimal
	MinPrice     decimal.Decimal
	AveragePrice *decimal.Decimal // Volume-weighted; nil when undefined (zero total volume)
	TotalVolume  int64
	Currency     string
	Date         time.Time // Midnight UTC of the summarized day
}
