package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"verdantcalc/internal/calculator"
	"verdantcalc/internal/config"
	"verdantcalc/internal/observability"
	"verdantcalc/internal/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {

	ctx := context.Background()

	// Configuration
	if err := loadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Logger
	if err := observability.InitLogger(cfg.LogLevel); err != nil {
		return err
	}
	defer observability.SyncLogger()

	// Telemetry
	shutdown, err := initTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdown(ctx)

	// Sessions
	store := newStore(cfg)
	if err := calculator.RegisterSessionGauge(prometheus.DefaultRegisterer, store); err != nil {
		return err
	}

	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()
	go store.Run(sweepCtx, cfg.SessionSweepInterval)

	// Router
	router := server.NewRouter(store)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		observability.Logger.Info("server started", zap.String("addr", cfg.HTTPAddr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	return waitForShutdown(srv, serveErr, cfg.ShutdownTimeout)
}

func newStore(cfg config.Config) *calculator.Store {
	return calculator.NewStore(
		calculator.WithMaxSessions(cfg.MaxSessions),
		calculator.WithIdleTTL(cfg.SessionTTL),
		calculator.WithEvictHook(func(n int) {
			calculator.RecordExpiredSessions(context.Background(), n)
			observability.Logger.Info("expired idle calculator sessions", zap.Int("count", n))
		}),
	)
}

func waitForShutdown(srv *http.Server, serveErr <-chan error, timeout time.Duration) error {

	stop := make(chan os.Signal, 1)

	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-stop:
	}

	observability.Logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	return srv.Shutdown(ctx)
}
