package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"backflow_portal_backend/internal/analytics"
	"backflow_portal_backend/internal/analytics/domain"
	"backflow_portal_backend/internal/email"
	"backflow_portal_backend/internal/events"
	"backflow_portal_backend/internal/notification"
	"backflow_portal_backend/internal/scheduler"
	"backflow_portal_backend/platform/config"
	"backflow_portal_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env, "cron", cfg.GetAnalyticsScanCron())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var source analytics.Source
	if err := withRetry(ctx, log, "analytics data source", 5, 2*time.Second, func() error {
		s, err := analytics.OpenSource(ctx, cfg, false, log)
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

	tables, err := domain.LoadTables(cfg.GetAnalyticsModelFile())
	if err != nil {
		log.Error("failed to load model tables", "error", err)
		panic("failed to load model tables: " + err.Error())
	}

	eventBus := events.NewInMemoryBus(log)

	sender := email.NewSender(cfg)
	if !cfg.IsSMTPEnabled() {
		log.Warn("SMTP_HOST not configured; alert emails will be dropped")
	}

	notificationModule := notification.New(source.Reader, sender, log)
	notificationModule.RegisterHandlers(eventBus)

	redisClient, err := scheduler.NewRedisClient(cfg)
	if err != nil {
		log.Error("failed to initialize redis client", "error", err)
		panic("failed to initialize redis client: " + err.Error())
	}
	defer func() { _ = redisClient.Close() }()
	deduper := scheduler.NewRedisDeduper(redisClient, cfg.GetAlertDedupeTTL())

	components := analytics.NewComponents(source.Reader, tables, cfg, log)
	scanner := scheduler.NewAlertScanner(source.Reader, components.Engine, deduper, eventBus, log)

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	worker, err := scheduler.NewWorker(cfg, scanner, client, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
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
