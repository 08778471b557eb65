package routing

import (
	"context"
	"errors"
	"testing"

	"leadrouter_backend/internal/events"
	"leadrouter_backend/internal/routing/domain"
	"leadrouter_backend/platform/logger"
)

const (
	msgUnexpectedError = "unexpected error: %v"
	fmtExpectedOrphans = "expected %d orphan entries, got %d"
)

type fakeDashboard struct {
	captured   []domain.CapturedLeadEntry
	orphans    []domain.OrphanLeadEntry
	removed    []string
	listErr    error
	capturedErr error
}

func (f *fakeDashboard) AppendCapturedLead(_ context.Context, entry domain.CapturedLeadEntry) error {
	if f.capturedErr != nil {
		return f.capturedErr
	}
	f.captured = append(f.captured, entry)
	return nil
}

func (f *fakeDashboard) AppendOrphanLead(_ context.Context, entry domain.OrphanLeadEntry) error {
	f.orphans = append(f.orphans, entry)
	return nil
}

func (f *fakeDashboard) ListOrphanLeads(_ context.Context) ([]domain.OrphanLeadEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.OrphanLeadEntry(nil), f.orphans...), nil
}

func (f *fakeDashboard) RemoveOrphanLead(_ context.Context, leadID string) error {
	f.removed = append(f.removed, leadID)
	kept := f.orphans[:0]
	for _, o := range f.orphans {
		if o.ID != leadID {
			kept = append(kept, o)
		}
	}
	f.orphans = kept
	return nil
}

type fakeStore struct {
	id         string
	leads      []domain.Lead
	history    []domain.LeadHistoryEntry
	overwritten []string
	appendErr  error
}

func (f *fakeStore) AppendLead(_ context.Context, lead domain.Lead) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.leads = append(f.leads, lead)
	return nil
}

func (f *fakeStore) AppendLeadHistory(_ context.Context, entry domain.LeadHistoryEntry) error {
	f.history = append(f.history, entry)
	return nil
}

func (f *fakeStore) ListLeads(_ context.Context) ([]domain.Lead, error) {
	return append([]domain.Lead(nil), f.leads...), nil
}

func (f *fakeStore) OverwriteLead(_ context.Context, leadID string, lead domain.Lead) error {
	f.overwritten = append(f.overwritten, leadID)
	for i := range f.leads {
		if f.leads[i].ID == leadID {
			f.leads[i] = lead
			return nil
		}
	}
	f.leads = append(f.leads, lead)
	return nil
}

type fakeStores map[string]*fakeStore

func (f fakeStores) factory(storeID string) ConsultantStore {
	store, ok := f[storeID]
	if !ok {
		store = &fakeStore{id: storeID}
		f[storeID] = store
	}
	return store
}

type fakeNotifier struct {
	adminNew         []string
	adminClosed      []string
	consultantClosed []string
	deletions        []string
	err              error
}

func (f *fakeNotifier) NotifyAdminNewLead(_ context.Context, lead domain.Lead, _ string) error {
	f.adminNew = append(f.adminNew, lead.ID)
	return f.err
}

func (f *fakeNotifier) NotifyAdminClosed(_ context.Context, lead domain.Lead) error {
	f.adminClosed = append(f.adminClosed, lead.ID)
	return f.err
}

func (f *fakeNotifier) NotifyConsultantClosed(_ context.Context, lead domain.Lead, _ domain.ConsultantProfile) error {
	f.consultantClosed = append(f.consultantClosed, lead.ID)
	return f.err
}

func (f *fakeNotifier) NotifyConsultantDeletion(_ context.Context, _ domain.ConsultantProfile, leadID, _ string) error {
	f.deletions = append(f.deletions, leadID)
	return f.err
}

func newTestEngine(dashboard *fakeDashboard, notifier *fakeNotifier) *Engine {
	log := logger.New("development")
	return NewEngine(dashboard, notifier, events.NewInMemoryBus(log), log)
}

func TestCaptureLeadAssignsToTopMatchAndAudits(t *testing.T) {
	dashboard := &fakeDashboard{}
	notifier := &fakeNotifier{}
	stores := fakeStores{}
	engine := newTestEngine(dashboard, notifier)
	lead := legalLisbonLead()

	err := engine.CaptureLead(context.Background(), lead, domain.SourceTelegram, rosterFixture(), stores.factory)
	if err != nil {
		t.Fatalf(msgUnexpectedError, err)
	}

	target := stores["store-b"]
	if target == nil || len(target.leads) != 1 {
		t.Fatalf("expected lead in store-b exactly once")
	}
	if other := stores["store-a"]; other != nil && len(other.leads) != 0 {
		t.Fatalf("expected no writes to store-a, got %d", len(other.leads))
	}
	if len(target.history) != 1 || target.history[0].Processed != domain.ProcessedPending {
		t.Fatalf("expected one pending history entry in store-b")
	}

	if len(dashboard.captured) != 1 {
		t.Fatalf("expected one captured entry, got %d", len(dashboard.captured))
	}
	entry := dashboard.captured[0]
	if entry.SavedInStoreID != "store-b" {
		t.Fatalf("expected saved_in_store_id=store-b, got %q", entry.SavedInStoreID)
	}
	if entry.NextStoreIndex != 0 {
		t.Fatalf("expected next_store_index=0, got %d", entry.NextStoreIndex)
	}
	if len(entry.MatchingStoreIDs) != 2 || entry.MatchingStoreIDs[0] != "store-b" || entry.MatchingStoreIDs[1] != "store-a" {
		t.Fatalf("expected frozen ranked list [store-b store-a], got %v", entry.MatchingStoreIDs)
	}
	if len(notifier.adminNew) != 1 {
		t.Fatalf("expected one admin notification, got %d", len(notifier.adminNew))
	}
}

func TestCaptureLeadWithNoMatchOrphansWithoutStoreWrites(t *testing.T) {
	dashboard := &fakeDashboard{}
	stores := fakeStores{}
	engine := newTestEngine(dashboard, &fakeNotifier{})
	lead := legalLisbonLead()
	lead.InterestServices = "mortgage"

	err := engine.CaptureLead(context.Background(), lead, domain.SourceTelegram, rosterFixture(), stores.factory)
	if err != nil {
		t.Fatalf(msgUnexpectedError, err)
	}

	if len(dashboard.orphans) != 1 {
		t.Fatalf(fmtExpectedOrphans, 1, len(dashboard.orphans))
	}
	if dashboard.orphans[0].Source != domain.SourceTelegram {
		t.Fatalf("expected orphan source %q, got %q", domain.SourceTelegram, dashboard.orphans[0].Source)
	}
	if len(stores) != 0 {
		t.Fatalf("expected zero consultant store writes, got %d stores", len(stores))
	}
	if len(dashboard.captured) != 0 {
		t.Fatalf("expected no captured entries, got %d", len(dashboard.captured))
	}
}

func TestCaptureLeadNotificationFailureDoesNotAbortRouting(t *testing.T) {
	dashboard := &fakeDashboard{}
	notifier := &fakeNotifier{err: errors.New("telegram down")}
	stores := fakeStores{}
	engine := newTestEngine(dashboard, notifier)

	err := engine.CaptureLead(context.Background(), legalLisbonLead(), domain.SourceTelegram, rosterFixture(), stores.factory)
	if err != nil {
		t.Fatalf("expected routing to succeed despite notification failure, got %v", err)
	}
	if len(dashboard.captured) != 1 {
		t.Fatalf("expected captured entry despite notification failure")
	}
}

func TestRedistributeLeadAdvancesToNextCandidate(t *testing.T) {
	dashboard := &fakeDashboard{}
	stores := fakeStores{}
	engine := newTestEngine(dashboard, &fakeNotifier{})
	lead := legalLisbonLead()
	roster := []domain.ConsultantProfile{
		{ID: "1", StoreID: "s1", Active: true},
		{ID: "2", StoreID: "s2", Active: true},
		{ID: "3", StoreID: "s3", Active: true},
	}
	captured := domain.CapturedLeadEntry{
		Lead:             lead,
		MatchingStoreIDs: []string{"s1", "s2", "s3"},
		NextStoreIndex:   0,
		SavedInStoreID:   "s1",
	}

	err := engine.RedistributeLead(context.Background(), captured, lead, roster, stores.factory)
	if err != nil {
		t.Fatalf(msgUnexpectedError, err)
	}

	if target := stores["s2"]; target == nil || len(target.leads) != 1 {
		t.Fatalf("expected lead written into s2")
	}
	if len(dashboard.captured) != 1 {
		t.Fatalf("expected one fresh captured entry, got %d", len(dashboard.captured))
	}
	entry := dashboard.captured[0]
	if entry.NextStoreIndex != 1 {
		t.Fatalf("expected next_store_index=1, got %d", entry.NextStoreIndex)
	}
	if entry.SavedInStoreID != "s2" {
		t.Fatalf("expected saved_in_store_id=s2, got %q", entry.SavedInStoreID)
	}
	if entry.Source != domain.SourceRedistribution {
		t.Fatalf("expected source=redistribution, got %q", entry.Source)
	}
	if len(entry.MatchingStoreIDs) != 3 {
		t.Fatalf("expected frozen list preserved, got %v", entry.MatchingStoreIDs)
	}
}

// A one-element candidate list wraps back onto the same consultant:
// (0+1) mod 1 = 0. Kept as the documented policy.
func TestRedistributeSingleCandidateWrapsToSameStore(t *testing.T) {
	dashboard := &fakeDashboard{}
	stores := fakeStores{}
	engine := newTestEngine(dashboard, &fakeNotifier{})
	lead := legalLisbonLead()
	roster := []domain.ConsultantProfile{{ID: "1", StoreID: "s1", Active: true}}
	captured := domain.CapturedLeadEntry{
		Lead:             lead,
		MatchingStoreIDs: []string{"s1"},
		NextStoreIndex:   0,
		SavedInStoreID:   "s1",
	}

	err := engine.RedistributeLead(context.Background(), captured, lead, roster, stores.factory)
	if err != nil {
		t.Fatalf(msgUnexpectedError, err)
	}

	if target := stores["s1"]; target == nil || len(target.leads) != 1 {
		t.Fatalf("expected lead re-assigned into s1")
	}
	if dashboard.captured[0].NextStoreIndex != 0 {
		t.Fatalf("expected wrapped index 0, got %d", dashboard.captured[0].NextStoreIndex)
	}
}

func TestRedistributeStaleTargetFallsBackToOrphan(t *testing.T) {
	dashboard := &fakeDashboard{}
	stores := fakeStores{}
	engine := newTestEngine(dashboard, &fakeNotifier{})
	lead := legalLisbonLead()
	// s2 has been removed from the live roster since capture.
	roster := []domain.ConsultantProfile{{ID: "1", StoreID: "s1", Active: true}}
	captured := domain.CapturedLeadEntry{
		Lead:             lead,
		MatchingStoreIDs: []string{"s1", "s2"},
		NextStoreIndex:   0,
	}

	err := engine.RedistributeLead(context.Background(), captured, lead, roster, stores.factory)
	if err != nil {
		t.Fatalf("expected stale target to orphan, not error, got %v", err)
	}

	if len(dashboard.orphans) != 1 {
		t.Fatalf(fmtExpectedOrphans, 1, len(dashboard.orphans))
	}
	if dashboard.orphans[0].Source != domain.SourceRedistribution {
		t.Fatalf("expected orphan source=redistribution, got %q", dashboard.orphans[0].Source)
	}
	if len(stores) != 0 {
		t.Fatalf("expected no store writes for stale target")
	}
}

func TestRedistributeEmptyCandidateListOrphans(t *testing.T) {
	dashboard := &fakeDashboard{}
	stores := fakeStores{}
	engine := newTestEngine(dashboard, &fakeNotifier{})
	lead := legalLisbonLead()
	captured := domain.CapturedLeadEntry{Lead: lead}

	err := engine.RedistributeLead(context.Background(), captured, lead, nil, stores.factory)
	if err != nil {
		t.Fatalf(msgUnexpectedError, err)
	}
	if len(dashboard.orphans) != 1 {
		t.Fatalf(fmtExpectedOrphans, 1, len(dashboard.orphans))
	}
}

func TestHandleOverwriteReplacesInPlaceWhenAllowed(t *testing.T) {
	stores := fakeStores{}
	engine := newTestEngine(&fakeDashboard{}, &fakeNotifier{})
	original := legalLisbonLead()
	stores.factory("s1").AppendLead(context.Background(), original)

	updated := original
	updated.Notes = "amended"

	err := engine.HandleOverwrite(context.Background(), updated, "s1", stores.factory, true)
	if err != nil {
		t.Fatalf(msgUnexpectedError, err)
	}

	store := stores["s1"]
	if len(store.leads) != 1 {
		t.Fatalf("expected in-place replacement, got %d rows", len(store.leads))
	}
	if store.leads[0].Notes != "amended" {
		t.Fatalf("expected replaced row to carry the update")
	}
	if len(store.history) != 1 {
		t.Fatalf("expected one history entry, got %d", len(store.history))
	}
}

func TestHandleOverwriteAppendsWhenNotAllowed(t *testing.T) {
	stores := fakeStores{}
	engine := newTestEngine(&fakeDashboard{}, &fakeNotifier{})
	original := legalLisbonLead()
	stores.factory("s1").AppendLead(context.Background(), original)

	err := engine.HandleOverwrite(context.Background(), original, "s1", stores.factory, false)
	if err != nil {
		t.Fatalf(msgUnexpectedError, err)
	}

	if len(stores["s1"].leads) != 2 {
		t.Fatalf("expected append as a new row, got %d rows", len(stores["s1"].leads))
	}
}

func TestMarkClosedStampsCloseTimeAndNotifiesBothParties(t *testing.T) {
	notifier := &fakeNotifier{}
	stores := fakeStores{}
	engine := newTestEngine(&fakeDashboard{}, notifier)
	lead := legalLisbonLead()
	lead.Status = domain.LeadStatusClosed
	consultant := rosterFixture()[1]

	err := engine.MarkClosed(context.Background(), lead, consultant, stores.factory)
	if err != nil {
		t.Fatalf(msgUnexpectedError, err)
	}

	store := stores[consultant.StoreID]
	if store == nil || len(store.history) != 1 {
		t.Fatalf("expected one terminal history entry")
	}
	entry := store.history[0]
	if entry.Processed != domain.ProcessedNeedsBookkeeping {
		t.Fatalf("expected processed=%q, got %q", domain.ProcessedNeedsBookkeeping, entry.Processed)
	}
	if entry.CloseStatusIdentifiedAt == "" {
		t.Fatalf("expected close_status_identified_at to be stamped")
	}
	if len(notifier.adminClosed) != 1 || len(notifier.consultantClosed) != 1 {
		t.Fatalf("expected admin and consultant close notifications")
	}
}

func TestMarkClosedPreservesExistingCloseTimestamp(t *testing.T) {
	stores := fakeStores{}
	engine := newTestEngine(&fakeDashboard{}, &fakeNotifier{})
	lead := legalLisbonLead()
	lead.CloseStatusIdentifiedAt = "2026-01-02T10:00:00Z"
	consultant := rosterFixture()[0]

	err := engine.MarkClosed(context.Background(), lead, consultant, stores.factory)
	if err != nil {
		t.Fatalf(msgUnexpectedError, err)
	}

	entry := stores[consultant.StoreID].history[0]
	if entry.CloseStatusIdentifiedAt != "2026-01-02T10:00:00Z" {
		t.Fatalf("expected original close timestamp preserved, got %q", entry.CloseStatusIdentifiedAt)
	}
}
