package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/danielkv/orderbook-backend/internal/adapter/api"
	"github.com/danielkv/orderbook-backend/internal/adapter/repository/postgres"
	"github.com/danielkv/orderbook-backend/internal/usecase/order"
	"github.com/danielkv/orderbook-backend/internal/usecase/summary"
)

const (
	defaultHTTPAddr = ":8080"
	shutdownTimeout = 10 * time.Second
)

func main() {
	// Load .env if present (local development convenience)
	_ = godotenv.Load()

	logger, err := newLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// 1. Setup Database
	dbConnStr := os.Getenv("DB_CONN_STR")
	if dbConnStr == "" {
		// If explicit string is missing, build it from individual vars (Docker friendly)
		host := envOrDefault("DB_HOST", "localhost")
		port := envOrDefault("DB_PORT", "5432")
		user := envOrDefault("DB_USER", "postgres")
		password := envOrDefault("DB_PASSWORD", "postgres")
		dbname := envOrDefault("DB_NAME", "orderbook")

		dbConnStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
			host, port, user, password, dbname)
	}

	db, err := postgres.NewDB(dbConnStr)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// 2. Initialize Repository (Postgres)
	orderRepo := postgres.NewOrderRepository(db)

	// 3. Initialize Services (Use Cases)
	orderService := order.NewOrderService(orderRepo, logger)
	summaryService := summary.NewSummaryService(orderRepo, logger)

	// 4. Setup HTTP router
	handler := api.NewHandler(orderService, summaryService, logger)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	r.Mount("/", handler.Routes())

	addr := envOrDefault("HTTP_ADDR", defaultHTTPAddr)
	server := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to serve HTTP", zap.Error(err))
		}
	}()

	// Graceful shutdown
	waitForShutdown(server, logger)
}

// newLogger builds a production zap logger with ISO8601 timestamps
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// waitForShutdown waits for SIGTERM or SIGINT and gracefully shuts down the server
func waitForShutdown(server *http.Server, logger *zap.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Info("received signal, shutting down gracefully", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("failed to shut down HTTP server", zap.Error(err))
	}
	logger.Info("HTTP server stopped")
}
