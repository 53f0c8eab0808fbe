package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anadi/splitledger/internal/config"
	"github.com/anadi/splitledger/internal/currency"
	"github.com/anadi/splitledger/internal/handler"
	"github.com/anadi/splitledger/internal/service"
	"github.com/anadi/splitledger/internal/storage/sqlite"
	"github.com/anadi/splitledger/pkg/logging"
)

func main() {
	cfg, err := config.Parse()
	if err != nil {
		slog.Error("Failed to parse configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	converter := currency.NewConverter(currency.DefaultRates())

	h := handler.New(
		service.NewExpenseService(store, converter),
		service.NewSettlementService(store, converter),
		service.NewBalanceService(store, converter),
		converter,
	)

	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: requestLogging(h.Router()),
	}

	go func() {
		slog.Info("Server starting", "address", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", "error", err)
	}
}

// requestLogging logs every request with its duration.
func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
