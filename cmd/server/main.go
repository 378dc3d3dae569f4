// Package main is the entry point for the assetdesk reporting API.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"assetdesk/internal/config"
	"assetdesk/internal/domain/audit"
	"assetdesk/internal/domain/auth"
	"assetdesk/internal/domain/reports"
	"assetdesk/internal/domain/setup"
	"assetdesk/internal/domain/views"
	"assetdesk/internal/infrastructure/backend"
	"assetdesk/internal/infrastructure/cache"
	"assetdesk/internal/infrastructure/export"
	v1 "assetdesk/internal/infrastructure/http/v1"
	"assetdesk/internal/infrastructure/http/v1/handlers"
	"assetdesk/internal/infrastructure/metrics"
	"assetdesk/internal/infrastructure/storage/postgres"
	"assetdesk/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const poolStatsInterval = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Infow("starting assetdesk server", "version", version, "env", cfg.AppEnv)

	// --- Database ---
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)
	if err := postgres.EnsureSchema(ctx, txManager); err != nil {
		log.Fatalw("failed to prepare database schema", "error", err)
	}
	log.Info("database connection established")
	go postgres.ReportPoolStats(ctx, pool.Stats, poolStatsInterval, log)

	auditStore, err := postgres.NewAuditStore(txManager)
	if err != nil {
		log.Fatalw("failed to create audit store", "error", err)
	}
	recorder := audit.NewRecorder(auditStore, log)

	// --- Metrics ---
	m := metrics.New()
	m.RegisterPool(pool.Stats)

	// --- Backend ---
	client, err := backend.New(cfg.Backend, backend.WithErrorObserver(m), backend.WithLogger(log))
	if err != nil {
		log.Fatalw("failed to create backend client", "error", err)
	}
	log.Infow("backend client configured",
		"base_url", cfg.Backend.BaseURL,
		"rate_limit", cfg.Backend.RateLimit,
		"breaker_failures", cfg.Backend.BreakerFailures,
	)

	checks := map[string]handlers.Pinger{
		"database": pool,
		"backend":  client,
	}

	// --- Domain cache ---
	var store cache.Store
	if cfg.RedisURL != "" {
		redisStore, err := cache.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalw("failed to connect to redis", "error", err)
		}
		defer func() { _ = redisStore.Close() }()
		store = redisStore
		checks["redis"] = redisStore
		log.Info("domain cache backed by redis")
	} else {
		memStore := cache.NewMemoryStore(0)
		invalidator := cache.NewInvalidator(pool.Unwrap(), memStore, log)
		invalidator.Start(ctx)
		defer invalidator.Stop()
		store = memStore
		log.Info("domain cache in memory")
	}
	domainCache := cache.NewDomainCache(store, cfg.DomainCacheTTL, m)

	// --- Services ---
	reportService := reports.NewService(
		reports.DefaultRegistry(),
		client,
		export.DefaultRegistry(),
		reports.WithDomainCache(domainCache),
		reports.WithAudit(recorder),
		reports.WithObserver(m),
		reports.WithMaxRows(cfg.ExportMaxRows),
	)
	viewService := views.NewService(views.ServiceConfig{
		Repo:      postgres.NewViewRepo(txManager),
		TxManager: txManager,
		Reports:   reportService,
		Audit:     recorder,
	})
	setupService := setup.NewService(client, recorder)

	jwtService := auth.NewJWTService(cfg.JWT())

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:         log,
		JWTValidator:   jwtService,
		Metrics:        m,
		MetricsHandler: m.Handler(),
		Health: handlers.HealthConfig{
			Version:   version,
			Checks:    checks,
			PoolStats: pool.Stats,
		},
		Reports: reportService,
		Views:   viewService,
		Setup:   setupService,
		Audit:   recorder,
		Debug:   cfg.Development(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Backend.Timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	<-ctx.Done()
	log.Info("shutting down server...")

	// Give outstanding exports 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
