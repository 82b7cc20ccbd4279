// Package main is the entry point for the tenantpress API server.
// All tenants share one database; isolation is enforced by row-level security.
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
	"github.com/prometheus/client_golang/prometheus/collectors"

	"tenantpress/internal/config"
	"tenantpress/internal/core/tx"
	"tenantpress/internal/domain/article"
	"tenantpress/internal/domain/auth"
	"tenantpress/internal/domain/user"
	v1 "tenantpress/internal/infrastructure/http/v1"
	"tenantpress/internal/infrastructure/http/v1/middleware"
	"tenantpress/internal/infrastructure/storage/postgres"
	"tenantpress/internal/infrastructure/storage/postgres/article_repo"
	"tenantpress/internal/infrastructure/storage/postgres/user_repo"
	"tenantpress/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting tenantpress server", "env", cfg.Env)

	// --- Database ---
	queryLog := postgres.NewQueryLogger(log, cfg.SQLLogLevel, cfg.SQLSlowThreshold)

	primaryCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	primaryCfg.Tracer = queryLog
	primary, err := postgres.NewPool(ctx, primaryCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer primary.Close()

	var reader postgres.Beginner
	if cfg.ReaderDatabaseURL != "" {
		readerCfg := postgres.DefaultPoolConfig(cfg.ReaderDatabaseURL)
		readerCfg.Tracer = queryLog
		readerPool, err := postgres.NewPool(ctx, readerCfg)
		if err != nil {
			log.Fatalw("failed to connect to reader database", "error", err)
		}
		defer readerPool.Close()
		reader = readerPool
		log.Info("read-only transactions use the reader pool")
	}

	// --- Metrics ---
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exec := postgres.NewExecutor(postgres.ExecutorConfig{
		Primary: primary,
		Reader:  reader,
		Defaults: &tx.Options{
			MaxWait: cfg.TxMaxWait,
			Timeout: cfg.TxTimeout,
		},
		Metrics: postgres.NewMetrics(registry),
	})

	// --- Services ---
	articles := article.NewService[postgres.Reader, postgres.Writer](exec, article_repo.New())
	users := user.NewService[postgres.Reader, postgres.Writer](exec, user_repo.New())

	var validator middleware.JWTValidator
	if cfg.AuthEnabled() {
		validator = auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))
		log.Info("bearer authentication enabled")
	} else {
		log.Warn("JWT_SECRET not set, API is unauthenticated")
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:         log,
		DB:             primary,
		JWTValidator:   validator,
		ArticleService: articles,
		UserService:    users,
		Gatherer:       registry,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	go reportPoolStats(ctx, primary)

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func reportPoolStats(ctx context.Context, pool *postgres.Pool) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			postgres.LogPoolStats(ctx, "primary", pool.Unwrap())
		}
	}
}
