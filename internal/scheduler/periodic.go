package scheduler

import (
	"context"
	"time"

	"leadrouter_backend/platform/config"
	"leadrouter_backend/platform/logger"
)

const (
	defaultOrphanReprocessInterval = 15 * time.Minute
	defaultDeletionScanInterval    = 30 * time.Minute
)

// Periodic enqueues the recurring sweeps on their configured intervals.
type Periodic struct {
	client           *Client
	orphanInterval   time.Duration
	deletionInterval time.Duration
	log              *logger.Logger
}

func NewPeriodic(client *Client, cfg config.SchedulerConfig, log *logger.Logger) *Periodic {
	orphanInterval := cfg.GetOrphanReprocessInterval()
	if orphanInterval <= 0 {
		orphanInterval = defaultOrphanReprocessInterval
	}
	deletionInterval := cfg.GetDeletionScanInterval()
	if deletionInterval <= 0 {
		deletionInterval = defaultDeletionScanInterval
	}

	return &Periodic{
		client:           client,
		orphanInterval:   orphanInterval,
		deletionInterval: deletionInterval,
		log:              log,
	}
}

// Run blocks until the context is canceled, enqueuing sweeps on schedule.
func (p *Periodic) Run(ctx context.Context) {
	if p == nil || p.client == nil {
		return
	}

	orphanTicker := time.NewTicker(p.orphanInterval)
	defer orphanTicker.Stop()
	deletionTicker := time.NewTicker(p.deletionInterval)
	defer deletionTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-orphanTicker.C:
			if err := p.client.EnqueueOrphanReprocess(ctx); err != nil {
				p.log.Warn("failed to enqueue orphan reprocess sweep", "error", err)
			}
		case <-deletionTicker.C:
			if err := p.client.EnqueueDeletionScan(ctx); err != nil {
				p.log.Warn("failed to enqueue deletion scan", "error", err)
			}
		}
	}
}
