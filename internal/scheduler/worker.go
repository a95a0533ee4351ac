package scheduler

import (
	"context"
	"fmt"
	"time"

	"backflow_portal_backend/platform/config"
	"backflow_portal_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type Worker struct {
	server    *asynq.Server
	scheduler *asynq.Scheduler
	mux       *asynq.ServeMux
	scanner   *AlertScanner
	enqueuer  TenantScanEnqueuer
	log       *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, scanner *AlertScanner, enqueuer TenantScanEnqueuer, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := queueName(cfg)

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	periodic := asynq.NewScheduler(opt, &asynq.SchedulerOpts{Location: time.UTC})
	if _, err := periodic.Register(cfg.GetAnalyticsScanCron(), NewAlertScanTask(), asynq.Queue(queue)); err != nil {
		return nil, fmt.Errorf("register alert scan %q: %w", cfg.GetAnalyticsScanCron(), err)
	}

	w := &Worker{
		server:    server,
		scheduler: periodic,
		mux:       asynq.NewServeMux(),
		scanner:   scanner,
		enqueuer:  enqueuer,
		log:       log,
	}
	w.registerHandlers()

	return w, nil
}

func (w *Worker) registerHandlers() {
	w.mux.HandleFunc(TaskAnalyticsAlertScan, w.handleAlertScan)
	w.mux.HandleFunc(TaskAnalyticsTenantScan, w.handleTenantScan)
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	if err := w.scheduler.Start(); err != nil {
		w.log.Error("alert scan scheduler failed to start", "error", err)
		return
	}

	go func() {
		<-ctx.Done()
		w.scheduler.Shutdown()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleAlertScan(ctx context.Context, _ *asynq.Task) error {
	n, err := w.scanner.FanOut(ctx, w.enqueuer, defaultScanTimeframe)
	if w.log != nil {
		w.log.Info("alert scan fanned out", "tenants", n)
	}
	return err
}

func (w *Worker) handleTenantScan(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseTenantScanPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return fmt.Errorf("%w: invalid tenant id: %v", asynq.SkipRetry, err)
	}

	_, err = w.scanner.ScanTenant(ctx, tenantID, payload.Timeframe)
	return err
}
