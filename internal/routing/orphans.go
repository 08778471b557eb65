package routing

import (
	"context"

	"leadrouter_backend/internal/routing/domain"
	"leadrouter_backend/platform/logger"
)

// OrphanProcessor retries assignment for leads that previously had no
// eligible consultant.
type OrphanProcessor struct {
	dashboard DashboardRepository
	engine    *Engine
	log       *logger.Logger
}

// NewOrphanProcessor creates an orphan processor.
func NewOrphanProcessor(dashboard DashboardRepository, engine *Engine, log *logger.Logger) *OrphanProcessor {
	return &OrphanProcessor{dashboard: dashboard, engine: engine, log: log}
}

// ReprocessOrphans re-runs the matcher for every queued orphan against the
// current roster. Unlike redistribution this re-evaluates eligibility
// fresh. An orphan with no match is left untouched. A match delegates to
// CaptureLead under the orphan's original source and then removes the
// queue entry. Orphans are processed independently: a failure on one never
// blocks the rest of the batch.
func (p *OrphanProcessor) ReprocessOrphans(ctx context.Context, consultants []domain.ConsultantProfile, stores StoreFactory) error {
	orphans, err := p.dashboard.ListOrphanLeads(ctx)
	if err != nil {
		return err
	}

	for _, orphan := range orphans {
		if len(MatchConsultants(orphan.Lead, consultants)) == 0 {
			continue
		}

		source := orphan.Source
		if source == "" {
			source = domain.SourceOrphanReprocessing
		}

		if err := p.engine.CaptureLead(ctx, orphan.Lead, source, consultants, stores); err != nil {
			p.log.Error("orphan reprocessing failed", "lead_id", orphan.ID, "error", err)
			continue
		}
		if err := p.dashboard.RemoveOrphanLead(ctx, orphan.ID); err != nil {
			p.log.Error("orphan removal failed", "lead_id", orphan.ID, "error", err)
		}
	}

	return nil
}
