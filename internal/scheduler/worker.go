package scheduler

import (
	"context"
	"fmt"

	"leadrouter_backend/internal/dashboard/repository"
	rosterservice "leadrouter_backend/internal/roster/service"
	"leadrouter_backend/internal/routing"
	"leadrouter_backend/platform/config"
	"leadrouter_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker consumes the periodic sweep tasks.
type Worker struct {
	server    *asynq.Server
	mux       *asynq.ServeMux
	dashboard *repository.Repository
	orphans   *routing.OrphanProcessor
	watcher   *rosterservice.Watcher
	stores    routing.StoreFactory
	log       *logger.Logger
}

func NewWorker(
	cfg config.SchedulerConfig,
	dashboard *repository.Repository,
	orphans *routing.OrphanProcessor,
	watcher *rosterservice.Watcher,
	stores routing.StoreFactory,
	log *logger.Logger,
) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

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

	mux := asynq.NewServeMux()
	w := &Worker{
		server:    server,
		mux:       mux,
		dashboard: dashboard,
		orphans:   orphans,
		watcher:   watcher,
		stores:    stores,
		log:       log,
	}

	mux.HandleFunc(TaskOrphanReprocess, w.handleOrphanReprocess)
	mux.HandleFunc(TaskDeletionScan, w.handleDeletionScan)

	return w, nil
}

func (w *Worker) handleOrphanReprocess(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseSweepPayload(task)
	if err != nil {
		return err
	}
	w.log.Info("orphan reprocess sweep starting", "requested_at", payload.RequestedAt)

	consultants, err := w.dashboard.ListConsultants(ctx)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	return w.orphans.ReprocessOrphans(ctx, consultants, w.stores)
}

func (w *Worker) handleDeletionScan(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseSweepPayload(task)
	if err != nil {
		return err
	}
	w.log.Info("deletion scan starting", "requested_at", payload.RequestedAt)

	return w.watcher.ScanDeletions(ctx)
}

// Run blocks serving tasks until the context is canceled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
