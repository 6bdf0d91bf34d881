//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/danielkv/orderbook-backend/internal/adapter/api"
	"github.com/danielkv/orderbook-backend/internal/adapter/repository/postgres"
	"github.com/danielkv/orderbook-backend/internal/usecase/order"
	"github.com/danielkv/orderbook-backend/internal/usecase/summary"
)

var (
	db     *postgres.DB
	server *httptest.Server
)

// TestMain sets up the test environment
func TestMain(m *testing.M) {
	ctx := context.Background()

	// 1. Connect to Database
	var err error
	db, err = postgres.NewDB(getDBConnectionString())
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}
	defer db.Close()

	// 2. Self-healing setup: ensure the orders table exists
	if err := ensureSchema(ctx); err != nil {
		panic(fmt.Sprintf("Failed to set up schema: %v", err))
	}

	// 3. Wire the full stack over the real repository
	logger := zap.NewNop()
	orderRepo := postgres.NewOrderRepository(db)
	handler := api.NewHandler(
		order.NewOrderService(orderRepo, logger),
		summary.NewSummaryService(orderRepo, logger),
		logger,
	)
	server = httptest.NewServer(handler.Routes())
	defer server.Close()

	code := m.Run()

	os.Exit(code)
}

func getDBConnectionString() string {
	if connStr := os.Getenv("DB_CONN_STR"); connStr != "" {
		return connStr
	}
	return "host=localhost port=5432 user=postgres password=postgres dbname=orderbook_test sslmode=disable"
}

func ensureSchema(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			ticker TEXT NOT NULL,
			side TEXT NOT NULL,
			volume BIGINT NOT NULL,
			price NUMERIC NOT NULL,
			currency TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)
	`)
	return err
}

func cleanOrders(t *testing.T) {
	t.Helper()
	_, err := db.ExecContext(context.Background(), "TRUNCATE orders")
	require.NoError(t, err)
}

func postOrder(t *testing.T, ticker, side string, volume int64, amount, cur string) (*http.Response, map[string]interface{}) {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"ticker": ticker,
		"side":   side,
		"volume": volume,
		"price":  map[string]string{"amount": amount, "currency": cur},
	})
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/v1/orders", "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestCreateAndFetchOrder(t *testing.T) {
	cleanOrders(t)

	resp, created := postOrder(t, "GME", "PURCHASE", 10, "150.25", "SEK")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	id, err := uuid.Parse(created["id"].(string))
	require.NoError(t, err)

	getResp, err := http.Get(fmt.Sprintf("%s/v1/orders/%s", server.URL, id))
	require.NoError(t, err)
	defer getResp.Body.Close()
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	var fetched struct {
		ID     string `json:"id"`
		Ticker string `json:"ticker"`
		Side   string `json:"side"`
		Volume int64  `json:"volume"`
		Price  struct {
			Amount   decimal.Decimal `json:"amount"`
			Currency string          `json:"currency"`
		} `json:"price"`
		CreatedAt time.Time `json:"createdAt"`
	}
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&fetched))

	assert.Equal(t, id.String(), fetched.ID)
	assert.Equal(t, "GME", fetched.Ticker)
	assert.Equal(t, "PURCHASE", fetched.Side)
	assert.Equal(t, int64(10), fetched.Volume)
	assert.True(t, fetched.Price.Amount.Equal(decimal.RequireFromString("150.25")))
	assert.Equal(t, "SEK", fetched.Price.Currency)
	assert.WithinDuration(t, time.Now().UTC(), fetched.CreatedAt, time.Minute)
}

func TestFetchOrder_UnknownIDReturns404(t *testing.T) {
	cleanOrders(t)

	resp, err := http.Get(fmt.Sprintf("%s/v1/orders/%s", server.URL, uuid.NewString()))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateOrder_InvalidCurrencyPersistsNothing(t *testing.T) {
	cleanOrders(t)

	resp, decoded := postOrder(t, "GME", "PURCHASE", 10, "100", "QQQ")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decoded["error"], "QQQ")

	var count int
	require.NoError(t, db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM orders").Scan(&count))
	assert.Zero(t, count)
}

func TestSummary_GroupsByCurrency(t *testing.T) {
	cleanOrders(t)

	for _, o := range []struct {
		volume int64
		amount string
		cur    string
	}{
		{10, "10000", "SEK"},
		{90, "10", "SEK"},
		{5, "5000", "USD"},
		{20, "5", "USD"},
	} {
		resp, _ := postOrder(t, "TSLA", "SALE", o.volume, o.amount, o.cur)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	today := time.Now().UTC().Format("2006-01-02")
	resp, err := http.Get(fmt.Sprintf("%s/v1/orders/summary?ticker=TSLA&side=SALE&date=%s", server.URL, today))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summaries []struct {
		Currency     string          `json:"currency"`
		MaxPrice     decimal.Decimal `json:"maxPrice"`
		MinPrice     decimal.Decimal `json:"minPrice"`
		AveragePrice decimal.Decimal `json:"averagePrice"`
		TotalVolume  int64           `json:"totalVolume"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summaries))
	require.Len(t, summaries, 2)

	byCurrency := make(map[string]int)
	for i, s := range summaries {
		byCurrency[s.Currency] = i
	}
	require.Contains(t, byCurrency, "SEK")
	require.Contains(t, byCurrency, "USD")

	sek := summaries[byCurrency["SEK"]]
	assert.True(t, sek.MaxPrice.Equal(decimal.NewFromInt(10000)))
	assert.True(t, sek.MinPrice.Equal(decimal.NewFromInt(10)))
	assert.True(t, sek.AveragePrice.Equal(decimal.NewFromInt(1009)))
	assert.Equal(t, int64(100), sek.TotalVolume)

	usd := summaries[byCurrency["USD"]]
	assert.True(t, usd.MaxPrice.Equal(decimal.NewFromInt(5000)))
	assert.True(t, usd.MinPrice.Equal(decimal.NewFromInt(5)))
	assert.True(t, usd.AveragePrice.Equal(decimal.NewFromInt(1004)))
	assert.Equal(t, int64(25), usd.TotalVolume)
}

func TestSummary_DayBoundaries(t *testing.T) {
	cleanOrders(t)

	ctx := context.Background()
	day := time.Date(2021, time.March, 15, 0, 0, 0, 0, time.UTC)

	// Inserted directly so CreatedAt can sit exactly on the boundaries.
	insert := func(createdAt time.Time) {
		_, err := db.ExecContext(ctx,
			"INSERT INTO orders (id, ticker, side, volume, price, currency, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)",
			uuid.New(), "SAVE", "PURCHASE", 1, "100", "SEK", createdAt)
		require.NoError(t, err)
	}
	// timestamptz resolution is one microsecond, so the inclusive upper edge
	// is exercised at the last representable instant of the day.
	insert(day)
	insert(day.Add(24*time.Hour - time.Microsecond))
	insert(day.Add(24 * time.Hour))

	resp, err := http.Get(server.URL + "/v1/orders/summary?ticker=SAVE&side=PURCHASE&date=2021-03-15")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summaries []struct {
		TotalVolume int64 `json:"totalVolume"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(2), summaries[0].TotalVolume)
}

func TestSummary_EmptyDayReturnsEmptyArray(t *testing.T) {
	cleanOrders(t)

	resp, err := http.Get(server.URL + "/v1/orders/summary?ticker=GME&side=SALE&date=1999-01-01")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summaries []json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summaries))
	assert.Empty(t, summaries)
}
