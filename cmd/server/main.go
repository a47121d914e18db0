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

	"github.com/joho/godotenv"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/splitledger/internal/cache"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/server"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env file is fine; the environment still applies.
	envErr := godotenv.Load()

	cfg := config.Load()
	logging.Setup(cfg.LogLevel)
	if envErr != nil {
		slog.Debug("No .env file loaded", "error", envErr)
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize SQLite storage
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	m := metrics.New()
	balanceCache := cache.New[*service.GroupBalances](cfg.BalanceCacheTTL)

	prefs := calculator.DefaultAlertPreferences()
	prefs.HighBalanceThreshold = cfg.AlertHighBalance
	prefs.OwedToYouThreshold = cfg.AlertOwedToYou
	prefs.YouOweThreshold = cfg.AlertYouOwe

	balances := service.NewBalanceService(store, balanceCache,
		service.WithMetrics(m),
		service.WithAlertPreferences(prefs),
	)
	srv := server.New(server.Services{
		Groups:      service.NewGroupService(store),
		Expenses:    service.NewExpenseService(store, balances, m),
		Settlements: service.NewSettlementService(store, balances),
		Balances:    balances,
		Analytics:   service.NewAnalyticsService(store, m, nil),
		Metrics:     m,
	})

	janitor := cache.NewJanitor(balanceCache)
	janitor.Start(cfg.BalanceCacheTTL, func(removed int) {
		if removed > 0 {
			slog.Debug("Expired balance cache entries removed", "count", removed)
		}
	})
	defer janitor.Stop()

	// Wrap with h2c for HTTP/2 without TLS
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           h2c.NewHandler(srv.Routes(), &http2.Server{}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("HTTP server starting", "address", httpServer.Addr, "url", "http://localhost"+httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
