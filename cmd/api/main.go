package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadscout_backend/internal/discovery"
	discoveryservice "leadscout_backend/internal/discovery/service"
	apphttp "leadscout_backend/internal/http"
	"leadscout_backend/internal/leads"
	"leadscout_backend/internal/pipeline"
	"leadscout_backend/internal/provider/places"
	"leadscout_backend/internal/queue"
	"leadscout_backend/platform/config"
	"leadscout_backend/platform/db"
	"leadscout_backend/platform/logger"
	"leadscout_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	leadsModule := leads.NewModule(pool, val, log)

	placesClient := places.New(cfg, log)
	pipelineDeps := pipeline.Deps{
		Provider:   placesClient,
		Repository: leadsModule.Repository(),
	}

	// Without a Redis backend the discovery module runs pipelines in-process.
	var jobs discoveryservice.JobQueue
	if cfg.IsQueueEnabled() {
		orchestrator, err := queue.New(cfg, pipelineDeps, log)
		if err != nil {
			log.Error("failed to initialize queue orchestrator", "error", err)
			panic("failed to initialize queue orchestrator: " + err.Error())
		}
		defer orchestrator.Shutdown()
		jobs = orchestrator
		log.Info("durable queue configured")
	} else {
		log.Warn("REDIS_URL not configured; discovery runs execute synchronously")
	}

	discoveryModule := discovery.NewModule(pool, cfg, leadsModule.Repository(), pipelineDeps, jobs, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	engine := apphttp.NewRouter(cfg, log, pool, leadsModule, discoveryModule)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
