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

	"backflow_portal_backend/internal/adapters/storage"
	"backflow_portal_backend/internal/analytics"
	"backflow_portal_backend/internal/analytics/domain"
	"backflow_portal_backend/internal/analytics/service"
	apphttp "backflow_portal_backend/internal/http"
	"backflow_portal_backend/internal/http/router"
	"backflow_portal_backend/platform/config"
	"backflow_portal_backend/platform/logger"
	"backflow_portal_backend/platform/validator"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	if err := cfg.ValidateAPI(); err != nil {
		panic("invalid config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr, "dataSource", cfg.GetAnalyticsDataSource())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	var source analytics.Source
	if err := withRetry(ctx, log, "analytics data source", 5, 2*time.Second, func() error {
		s, err := analytics.OpenSource(ctx, cfg, true, log)
		if err != nil {
			return err
		}
		source = s
		return nil
	}); err != nil {
		log.Error("failed to open analytics data source", "error", err)
		panic("failed to open analytics data source: " + err.Error())
	}
	defer source.Close()
	log.Info("analytics data source ready", "demo", cfg.UsesDemoData())

	tables, err := domain.LoadTables(cfg.GetAnalyticsModelFile())
	if err != nil {
		log.Error("failed to load model tables", "error", err)
		panic("failed to load model tables: " + err.Error())
	}

	reports := initReportStore(ctx, cfg, log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	analyticsModule := analytics.NewModule(source.Reader, tables, cfg, reports, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:  cfg,
		Logger:  log,
		Modules: []apphttp.Module{analyticsModule},
	}
	if source.Pool != nil {
		app.Health = source.Pool
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initReportStore returns nil when MinIO is not configured; exports then answer 503.
func initReportStore(ctx context.Context, cfg *config.Config, log *logger.Logger) service.ReportStore {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; insight exports disabled")
		return nil
	}

	store, err := storage.NewReportStore(cfg)
	if err != nil {
		log.Error("failed to initialize storage service", "error", err)
		panic("failed to initialize storage service: " + err.Error())
	}
	if err := withRetry(ctx, log, "ensure reports bucket", 5, 2*time.Second, func() error {
		return store.EnsureBucketExists(ctx)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", store.Bucket())
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
	log.Info("storage service initialized", "reportsBucket", store.Bucket())
	return store
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
