package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/danielkv/orderbook-backend/internal/domain"
	"github.com/danielkv/orderbook-backend/internal/usecase/order"
	"github.com/danielkv/orderbook-backend/internal/usecase/summary"
)

const dateLayout = "2006-01-02"

// Handler contains dependencies for HTTP handlers
type Handler struct {
	OrderService   *order.OrderService
	SummaryService *summary.SummaryService
	Logger         *zap.Logger
}

// NewHandler creates a new handler
func NewHandler(orderService *order.OrderService, summaryService *summary.SummaryService, logger *zap.Logger) *Handler {
	return &Handler{
		OrderService:   orderService,
		SummaryService: summaryService,
		Logger:         logger,
	}
}

// Routes mounts all order endpoints on a chi router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/v1/orders", h.CreateOrder)
	r.Get("/v1/orders/summary", h.FetchSummary)
	r.Get("/v1/orders/{orderID}", h.FetchOrder)
	return r
}

type priceRequest struct {
	Amount   *decimal.Decimal `json:"amount"`
	Currency string           `json:"currency"`
}

type createOrderRequest struct {
	Ticker string        `json:"ticker"`
	Side   string        `json:"side"`
	Volume int64         `json:"volume"`
	Price  *priceRequest `json:"price"`
}

type priceResponse struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

type orderResponse struct {
	ID        uuid.UUID     `json:"id"`
	Ticker    domain.Ticker `json:"ticker"`
	Side      domain.Side   `json:"side"`
	Volume    int64         `json:"volume"`
	Price     priceResponse `json:"price"`
	CreatedAt time.Time     `json:"createdAt"`
}

type summaryResponse struct {
	Ticker       domain.Ticker    `json:"ticker"`
	Side         domain.Side      `json:"side"`
	MaxPrice     decimal.Decimal  `json:"maxPrice"`
	MinPrice     decimal.Decimal  `json:"minPrice"`
	AveragePrice *decimal.Decimal `json:"averagePrice"`
	TotalVolume  int64            `json:"totalVolume"`
	Currency     string           `json:"currency"`
	Date         string           `json:"date"`
}

// CreateOrder handles order creation
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.Logger.Info("received request to create order",
		zap.String("ticker", req.Ticker),
		zap.String("side", req.Side),
		zap.Int64("volume", req.Volume))

	input := order.CreateOrderInput{
		Ticker: req.Ticker,
		Side:   req.Side,
		Volume: req.Volume,
	}
	if req.Price != nil {
		input.Price = &order.PriceInput{
			Amount:   req.Price.Amount,
			Currency: req.Price.Currency,
		}
	}

	id, err := h.OrderService.CreateOrder(r.Context(), input)
	if err != nil {
		h.writeCreateError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"id": id.String()})
}

// writeCreateError maps domain errors from order creation to HTTP responses
func (h *Handler) writeCreateError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		msgs := make([]string, len(validationErr.Violations))
		for i, v := range validationErr.Violations {
			msgs[i] = v.String()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string][]string{"errors": msgs})
		return
	}

	var currencyErr *domain.InvalidCurrencyError
	if errors.As(err, &currencyErr) {
		writeError(w, http.StatusBadRequest, currencyErr.Error())
		return
	}

	h.Logger.Error("failed to create order", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Failed to create order")
}

// FetchOrder handles order lookup by ID
func (h *Handler) FetchOrder(w http.ResponseWriter, r *http.Request) {
	idParam := chi.URLParam(r, "orderID")
	id, err := uuid.Parse(idParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid order ID")
		return
	}

	h.Logger.Info("received request to fetch order", zap.String("orderID", idParam))

	o, err := h.OrderService.GetOrder(r.Context(), id)
	if err != nil {
		h.Logger.Error("failed to fetch order", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch order")
		return
	}
	if o == nil {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orderResponse{
		ID:     o.ID,
		Ticker: o.Ticker,
		Side:   o.Side,
		Volume: o.Volume,
		Price: priceResponse{
			Amount:   o.Price,
			Currency: o.Currency,
		},
		CreatedAt: o.CreatedAt,
	})
}

// FetchSummary handles per-currency summary queries for one calendar day
func (h *Handler) FetchSummary(w http.ResponseWriter, r *http.Request) {
	tickerParam := r.URL.Query().Get("ticker")
	sideParam := r.URL.Query().Get("side")
	dateParam := r.URL.Query().Get("date")

	h.Logger.Info("received request to fetch summary",
		zap.String("ticker", tickerParam),
		zap.String("side", sideParam),
		zap.String("date", dateParam))

	ticker, ok := domain.ParseTicker(tickerParam)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid ticker")
		return
	}

	side, ok := domain.ParseSide(sideParam)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid side")
		return
	}

	date, err := time.Parse(dateLayout, dateParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date")
		return
	}

	summaries, err := h.SummaryService.GetSummaries(r.Context(), ticker, side, date)
	if err != nil {
		h.Logger.Error("failed to fetch summary", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch summary")
		return
	}

	resp := make([]summaryResponse, len(summaries))
	for i, s := range summaries {
		resp[i] = summaryResponse{
			Ticker:       s.Ticker,
			Side:         s.Side,
			MaxPrice:     s.MaxPrice,
			MinPrice:     s.MinPrice,
			AveragePrice: s.AveragePrice,
			TotalVolume:  s.TotalVolume,
			Currency:     s.Currency,
			Date:         s.Date.Format(dateLayout),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
