package routing

import (
	"context"
	"fmt"
	"time"

	"leadrouter_backend/internal/events"
	"leadrouter_backend/internal/routing/domain"
	"leadrouter_backend/platform/logger"
)

// Engine orchestrates the routing lifecycle of a single lead: capture,
// redistribution, overwrite re-sync and close-out. It performs no retries
// and no rollback: a failed repository write surfaces to the caller with
// any earlier writes left in place, and the consultant store stays
// authoritative for assignment while the audit log is reconciled by
// re-listing. Notification failures are logged, never returned.
type Engine struct {
	dashboard DashboardRepository
	notifier  Notifier
	bus       events.Bus
	log       *logger.Logger
}

// NewEngine creates a routing engine.
func NewEngine(dashboard DashboardRepository, notifier Notifier, bus events.Bus, log *logger.Logger) *Engine {
	return &Engine{dashboard: dashboard, notifier: notifier, bus: bus, log: log}
}

// CaptureLead routes a newly captured lead. With no eligible consultant the
// lead goes to the orphan queue tagged with its source; otherwise it is
// written into the top-ranked consultant's store and history, an audit
// entry freezes the full ranked match list with next_store_index=0, and the
// admin is notified. Callers are expected to invoke this once per lead;
// there is no internal dedup by lead id.
func (e *Engine) CaptureLead(ctx context.Context, lead domain.Lead, source string, consultants []domain.ConsultantProfile, stores StoreFactory) error {
	matches := MatchConsultants(lead, consultants)
	if len(matches) == 0 {
		if err := e.dashboard.AppendOrphanLead(ctx, domain.OrphanLeadEntry{Lead: lead, Source: source}); err != nil {
			return fmt.Errorf("append orphan lead: %w", err)
		}
		e.log.RoutingDecision("capture", lead.ID, "orphaned", "")
		e.bus.Publish(ctx, events.LeadOrphaned{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    lead.ID,
			Source:    source,
		})
		return nil
	}

	target := matches[0].Consultant
	store := stores(target.StoreID)
	if err := store.AppendLead(ctx, lead); err != nil {
		return fmt.Errorf("append lead to store %s: %w", target.StoreID, err)
	}
	if err := store.AppendLeadHistory(ctx, domain.LeadHistoryEntry{Lead: lead, Processed: domain.ProcessedPending}); err != nil {
		return fmt.Errorf("append lead history to store %s: %w", target.StoreID, err)
	}

	entry := domain.CapturedLeadEntry{
		Lead:             lead,
		Source:           source,
		MatchingStoreIDs: matchedStoreIDs(matches),
		NextStoreIndex:   0,
		SavedInStoreID:   target.StoreID,
	}
	if err := e.dashboard.AppendCapturedLead(ctx, entry); err != nil {
		return fmt.Errorf("append captured lead: %w", err)
	}

	e.log.RoutingDecision("capture", lead.ID, "assigned", target.StoreID)
	if err := e.notifier.NotifyAdminNewLead(ctx, lead, StoreLabel(target)); err != nil {
		e.log.NotificationError("admin_new_lead", lead.ID, err)
	}
	e.bus.Publish(ctx, events.LeadCaptured{
		BaseEvent:       events.NewBaseEvent(),
		LeadID:          lead.ID,
		StoreID:         target.StoreID,
		Source:          source,
		CommissionValue: target.CommissionValue,
	})
	return nil
}

// RedistributeLead moves an already-captured lead to the next candidate in
// its frozen match list. The index advances as (current+1) mod max(n,1);
// eligibility is not re-queried. An empty candidate list, or a candidate no
// longer present in the live roster, sends the lead to the orphan queue
// tagged "redistribution". A single-candidate list wraps back onto the same
// consultant; that is the documented policy, pinned by test.
func (e *Engine) RedistributeLead(ctx context.Context, captured domain.CapturedLeadEntry, lead domain.Lead, consultants []domain.ConsultantProfile, stores StoreFactory) error {
	candidates := captured.MatchingStoreIDs
	nextIndex := 0
	if len(candidates) > 0 {
		nextIndex = (captured.NextStoreIndex + 1) % len(candidates)
	}

	if len(candidates) == 0 {
		return e.orphanOnRedistribution(ctx, lead)
	}

	nextStoreID := candidates[nextIndex]
	consultant, ok := consultantByStoreID(consultants, nextStoreID)
	if !ok {
		return e.orphanOnRedistribution(ctx, lead)
	}

	store := stores(nextStoreID)
	if err := store.AppendLead(ctx, lead); err != nil {
		return fmt.Errorf("append lead to store %s: %w", nextStoreID, err)
	}
	if err := store.AppendLeadHistory(ctx, domain.LeadHistoryEntry{Lead: lead, Processed: domain.ProcessedPending}); err != nil {
		return fmt.Errorf("append lead history to store %s: %w", nextStoreID, err)
	}
	entry := domain.CapturedLeadEntry{
		Lead:             lead,
		Source:           domain.SourceRedistribution,
		MatchingStoreIDs: captured.MatchingStoreIDs,
		NextStoreIndex:   nextIndex,
		SavedInStoreID:   nextStoreID,
	}
	if err := e.dashboard.AppendCapturedLead(ctx, entry); err != nil {
		return fmt.Errorf("append captured lead: %w", err)
	}

	e.log.RoutingDecision("redistribute", lead.ID, "reassigned", nextStoreID)
	if err := e.notifier.NotifyAdminNewLead(ctx, lead, StoreLabel(consultant)); err != nil {
		e.log.NotificationError("admin_new_lead", lead.ID, err)
	}
	e.bus.Publish(ctx, events.LeadRedistributed{
		BaseEvent:      events.NewBaseEvent(),
		LeadID:         lead.ID,
		ToStoreID:      nextStoreID,
		NextStoreIndex: nextIndex,
	})
	return nil
}

// HandleOverwrite re-syncs a lead into a consultant store after upstream
// edits. With allowOverwrite an existing row with the same id is replaced
// in place, otherwise the lead is appended as a new row. A history entry is
// appended either way. Unrelated rows and their order are never touched.
func (e *Engine) HandleOverwrite(ctx context.Context, lead domain.Lead, targetStoreID string, stores StoreFactory, allowOverwrite bool) error {
	store := stores(targetStoreID)
	if allowOverwrite {
		if err := store.OverwriteLead(ctx, lead.ID, lead); err != nil {
			return fmt.Errorf("overwrite lead in store %s: %w", targetStoreID, err)
		}
	} else {
		if err := store.AppendLead(ctx, lead); err != nil {
			return fmt.Errorf("append lead to store %s: %w", targetStoreID, err)
		}
	}
	if err := store.AppendLeadHistory(ctx, domain.LeadHistoryEntry{Lead: lead, Processed: domain.ProcessedPending}); err != nil {
		return fmt.Errorf("append lead history to store %s: %w", targetStoreID, err)
	}
	return nil
}

// MarkClosed terminates the routing lifecycle: a terminal history entry is
// appended (stamping close_status_identified_at when unset, processed set
// to the needs-bookkeeping marker) and admin plus consultant notifications
// are fired. The consultant notification is gated by notify_on_close inside
// the notifier. The lead stays in the consultant's live list; removing it
// is the consultant's own action.
func (e *Engine) MarkClosed(ctx context.Context, lead domain.Lead, consultant domain.ConsultantProfile, stores StoreFactory) error {
	entry := domain.LeadHistoryEntry{Lead: lead, Processed: domain.ProcessedNeedsBookkeeping}
	if entry.CloseStatusIdentifiedAt == "" {
		entry.CloseStatusIdentifiedAt = time.Now().UTC().Format(time.RFC3339)
	}

	store := stores(consultant.StoreID)
	if err := store.AppendLeadHistory(ctx, entry); err != nil {
		return fmt.Errorf("append close history to store %s: %w", consultant.StoreID, err)
	}

	if err := e.notifier.NotifyAdminClosed(ctx, lead); err != nil {
		e.log.NotificationError("admin_closed", lead.ID, err)
	}
	if err := e.notifier.NotifyConsultantClosed(ctx, lead, consultant); err != nil {
		e.log.NotificationError("consultant_closed", lead.ID, err)
	}
	e.bus.Publish(ctx, events.LeadClosed{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		StoreID:   consultant.StoreID,
		Status:    string(lead.Status),
	})
	return nil
}

func (e *Engine) orphanOnRedistribution(ctx context.Context, lead domain.Lead) error {
	if err := e.dashboard.AppendOrphanLead(ctx, domain.OrphanLeadEntry{Lead: lead, Source: domain.SourceRedistribution}); err != nil {
		return fmt.Errorf("append orphan lead: %w", err)
	}
	e.log.RoutingDecision("redistribute", lead.ID, "orphaned", "")
	e.bus.Publish(ctx, events.LeadOrphaned{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Source:    domain.SourceRedistribution,
	})
	return nil
}

func matchedStoreIDs(matches []domain.MatchResult) []string {
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.Consultant.StoreID
	}
	return ids
}

func consultantByStoreID(consultants []domain.ConsultantProfile, storeID string) (domain.ConsultantProfile, bool) {
	for _, c := range consultants {
		if c.StoreID == storeID {
			return c, true
		}
	}
	return domain.ConsultantProfile{}, false
}
