// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
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

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/campus-ticketing/internal/auth"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/config"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/database"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/handler"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/intent"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/logger"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/metrics"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/notify"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/ratelimit"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/repository"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/reservation"
	"github.com/Shivanand-hulikatti/campus-ticketing/internal/service"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("service stopped with error", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 1. Open the inventory store ───────────────────────────────────────
	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// ── 2. Side channels ─────────────────────────────────────────────────
	m := metrics.New()

	var publisher notify.Publisher = notify.Noop{}
	if cfg.RabbitMQURL != "" {
		p, err := notify.DialAMQP(cfg.RabbitMQURL, cfg.ServiceName, log)
		if err != nil {
			log.Warn("rabbitmq unavailable, notifications disabled", zap.Error(err))
		} else {
			publisher = p
		}
	}
	defer func() { _ = publisher.Close() }()

	var limiter *ratelimit.Limiter
	if rdb := ratelimit.NewRedisClient(ctx, cfg.RateLimit, log); rdb != nil {
		defer func() { _ = rdb.Close() }()
		limiter = ratelimit.New(rdb, cfg.RateLimit, log)
	}

	// ── 3. Wire up layers ────────────────────────────────────────────────
	coord := reservation.NewCoordinator(store, log, m)
	ticketSvc := service.NewTicketService(
		reservation.NewPurchaser(coord),
		reservation.NewBooker(coord),
		intent.NewFromConfig(cfg.LLM, log),
		publisher,
		log,
	)

	router := handler.NewRouter(handler.Deps{
		Events:        service.NewEventService(store),
		Tickets:       ticketSvc,
		Auth:          auth.NewService(cfg.Auth),
		Metrics:       m,
		Limiter:       limiter,
		Log:           log,
		AllowedOrigin: cfg.AllowedOrigin,
	})

	// ── 4. Start server with graceful shutdown ────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.StoreDriver),
			zap.Bool("remote_intent", cfg.LLM.APIKey != ""),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}

// openStore connects the configured backend and bootstraps its schema.
func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (repository.Store, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
		if err != nil {
			return nil, nil, fmt.Errorf("database: %w", err)
		}
		if err := database.BootstrapPostgres(ctx, pool, cfg.SeedData); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("bootstrap: %w", err)
		}
		log.Info("connected to postgres", zap.String("host", cfg.Postgres.Host), zap.String("db", cfg.Postgres.DBName))
		return repository.NewPostgresStore(pool, cfg.Postgres.LockTimeout), pool.Close, nil

	default:
		pool, err := database.OpenSQLite(cfg.SQLite, log)
		if err != nil {
			return nil, nil, fmt.Errorf("database: %w", err)
		}
		closePool := func() {
			if err := pool.Close(); err != nil {
				log.Warn("close sqlite pool", zap.Error(err))
			}
		}
		if err := database.BootstrapSQLite(ctx, pool, cfg.SeedData); err != nil {
			closePool()
			return nil, nil, fmt.Errorf("bootstrap: %w", err)
		}
		log.Info("opened sqlite store", zap.String("path", cfg.SQLite.Path))
		return repository.NewSQLiteStore(pool), closePool, nil
	}
}
