// Package routing implements the lead routing core: the matcher, the
// routing engine and the orphan reprocessor. Storage and notification are
// consumed through the interfaces below; the enclosing application wires
// concrete implementations.
package routing

import (
	"context"

	"leadrouter_backend/internal/routing/domain"
)

// DashboardRepository is the global store: captured-lead audit log and
// orphan queue. The audit log is a trail, not primary storage; a lead's
// presence in a consultant store is the source of truth for assignment.
type DashboardRepository interface {
	AppendCapturedLead(ctx context.Context, entry domain.CapturedLeadEntry) error
	AppendOrphanLead(ctx context.Context, entry domain.OrphanLeadEntry) error
	ListOrphanLeads(ctx context.Context) ([]domain.OrphanLeadEntry, error)
	RemoveOrphanLead(ctx context.Context, leadID string) error
}

// ConsultantStore is one consultant's private record store: the live lead
// list and the append-only history.
type ConsultantStore interface {
	AppendLead(ctx context.Context, lead domain.Lead) error
	AppendLeadHistory(ctx context.Context, entry domain.LeadHistoryEntry) error
	ListLeads(ctx context.Context) ([]domain.Lead, error)
	OverwriteLead(ctx context.Context, leadID string, lead domain.Lead) error
}

// StoreFactory resolves a consultant store by its identifier.
type StoreFactory func(storeID string) ConsultantStore

// Notifier delivers human-readable routing events. Failures are reported
// to the caller but never abort a routing decision.
type Notifier interface {
	NotifyAdminNewLead(ctx context.Context, lead domain.Lead, destinationLabel string) error
	NotifyAdminClosed(ctx context.Context, lead domain.Lead) error
	NotifyConsultantClosed(ctx context.Context, lead domain.Lead, consultant domain.ConsultantProfile) error
	NotifyConsultantDeletion(ctx context.Context, consultant domain.ConsultantProfile, leadID, storeLabel string) error
}

// StoreLabel is the human-readable name of a consultant's lead store,
// used in notifications.
func StoreLabel(consultant domain.ConsultantProfile) string {
	return "Leads - " + consultant.ContactName
}
