package service

import (
	"context"
	"testing"

	"leadrouter_backend/internal/events"
	"leadrouter_backend/internal/leadrouting/transport"
	"leadrouter_backend/internal/routing"
	"leadrouter_backend/internal/routing/domain"
	"leadrouter_backend/platform/apperr"
	"leadrouter_backend/platform/logger"
)

type fakeDashboard struct {
	captured    []domain.CapturedLeadEntry
	orphans     []domain.OrphanLeadEntry
	consultants []domain.ConsultantProfile
}

func (f *fakeDashboard) AppendCapturedLead(_ context.Context, entry domain.CapturedLeadEntry) error {
	f.captured = append(f.captured, entry)
	return nil
}

func (f *fakeDashboard) AppendOrphanLead(_ context.Context, entry domain.OrphanLeadEntry) error {
	f.orphans = append(f.orphans, entry)
	return nil
}

func (f *fakeDashboard) ListOrphanLeads(context.Context) ([]domain.OrphanLeadEntry, error) {
	return f.orphans, nil
}

func (f *fakeDashboard) RemoveOrphanLead(_ context.Context, leadID string) error {
	kept := make([]domain.OrphanLeadEntry, 0, len(f.orphans))
	for _, entry := range f.orphans {
		if entry.ID != leadID {
			kept = append(kept, entry)
		}
	}
	f.orphans = kept
	return nil
}

func (f *fakeDashboard) LatestCapturedLead(_ context.Context, leadID string) (domain.CapturedLeadEntry, error) {
	for i := len(f.captured) - 1; i >= 0; i-- {
		if f.captured[i].ID == leadID {
			return f.captured[i], nil
		}
	}
	return domain.CapturedLeadEntry{}, apperr.NotFound("captured lead not found")
}

func (f *fakeDashboard) ListConsultants(context.Context) ([]domain.ConsultantProfile, error) {
	return f.consultants, nil
}

type fakeStore struct {
	id          string
	leads       []domain.Lead
	history     []domain.LeadHistoryEntry
	overwritten []string
}

func (f *fakeStore) AppendLead(_ context.Context, lead domain.Lead) error {
	f.leads = append(f.leads, lead)
	return nil
}

func (f *fakeStore) AppendLeadHistory(_ context.Context, entry domain.LeadHistoryEntry) error {
	f.history = append(f.history, entry)
	return nil
}

func (f *fakeStore) ListLeads(context.Context) ([]domain.Lead, error) {
	return f.leads, nil
}

func (f *fakeStore) OverwriteLead(_ context.Context, leadID string, lead domain.Lead) error {
	f.overwritten = append(f.overwritten, leadID)
	for i := range f.leads {
		if f.leads[i].ID == leadID {
			f.leads[i] = lead
		}
	}
	return nil
}

type fakeStores map[string]*fakeStore

func (f fakeStores) factory(storeID string) routing.ConsultantStore {
	store, ok := f[storeID]
	if !ok {
		store = &fakeStore{id: storeID}
		f[storeID] = store
	}
	return store
}

type noopNotifier struct{}

func (noopNotifier) NotifyAdminNewLead(context.Context, domain.Lead, string) error { return nil }
func (noopNotifier) NotifyAdminClosed(context.Context, domain.Lead) error          { return nil }
func (noopNotifier) NotifyConsultantClosed(context.Context, domain.Lead, domain.ConsultantProfile) error {
	return nil
}
func (noopNotifier) NotifyConsultantDeletion(context.Context, domain.ConsultantProfile, string, string) error {
	return nil
}

func newTestService(dashboard *fakeDashboard, stores fakeStores) *Service {
	log := logger.New("development")
	bus := events.NewInMemoryBus(log)
	engine := routing.NewEngine(dashboard, noopNotifier{}, bus, log)
	orphans := routing.NewOrphanProcessor(dashboard, engine, log)
	return New(engine, orphans, dashboard, stores.factory, log)
}

func capturedFixture() domain.CapturedLeadEntry {
	return domain.CapturedLeadEntry{
		Lead: domain.Lead{
			ID:               "PH-L-L-AB12",
			Status:           domain.LeadStatusNew,
			Name:             "Maria Silva",
			InterestServices: "legal",
			InterestRegions:  "lisboa",
		},
		Source:           domain.SourceTelegram,
		MatchingStoreIDs: []string{"store-a", "store-b"},
		NextStoreIndex:   0,
		SavedInStoreID:   "store-a",
	}
}

func rosterFixture() []domain.ConsultantProfile {
	return []domain.ConsultantProfile{
		{ID: "c-a", ContactName: "Ana", StoreID: "store-a", Active: true, RedistributionEnabled: true},
		{ID: "c-b", ContactName: "Bruno", StoreID: "store-b", Active: true, RedistributionEnabled: true},
	}
}

func TestRedistributeAdvancesToNextStore(t *testing.T) {
	dashboard := &fakeDashboard{
		captured:    []domain.CapturedLeadEntry{capturedFixture()},
		consultants: rosterFixture(),
	}
	stores := fakeStores{}
	svc := newTestService(dashboard, stores)

	resp, err := svc.Redistribute(context.Background(), "PH-L-L-AB12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Orphaned || resp.StoreID != "store-b" {
		t.Fatalf("expected reassignment to store-b, got %+v", resp)
	}
	if target := stores["store-b"]; target == nil || len(target.leads) != 1 {
		t.Fatalf("expected lead written to store-b")
	}
}

func TestRedistributeForbiddenWhenDisabledOnCurrentConsultant(t *testing.T) {
	consultants := rosterFixture()
	consultants[0].RedistributionEnabled = false
	dashboard := &fakeDashboard{
		captured:    []domain.CapturedLeadEntry{capturedFixture()},
		consultants: consultants,
	}
	stores := fakeStores{}
	svc := newTestService(dashboard, stores)

	_, err := svc.Redistribute(context.Background(), "PH-L-L-AB12")
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if len(stores) != 0 {
		t.Fatalf("expected no store writes, got %d", len(stores))
	}
}

func TestRedistributeReportsOrphanWhenCandidateGone(t *testing.T) {
	dashboard := &fakeDashboard{
		captured:    []domain.CapturedLeadEntry{capturedFixture()},
		consultants: rosterFixture()[:1],
	}
	stores := fakeStores{}
	svc := newTestService(dashboard, stores)

	resp, err := svc.Redistribute(context.Background(), "PH-L-L-AB12")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !resp.Orphaned {
		t.Fatalf("expected orphan outcome, got %+v", resp)
	}
	if len(dashboard.orphans) != 1 || dashboard.orphans[0].Source != domain.SourceRedistribution {
		t.Fatalf("expected orphan tagged redistribution, got %+v", dashboard.orphans)
	}
}

func TestCloseStampsTerminalHistory(t *testing.T) {
	dashboard := &fakeDashboard{
		captured:    []domain.CapturedLeadEntry{capturedFixture()},
		consultants: rosterFixture(),
	}
	stores := fakeStores{}
	svc := newTestService(dashboard, stores)

	err := svc.Close(context.Background(), "PH-L-L-AB12", transport.CloseLeadRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store := stores["store-a"]
	if store == nil || len(store.history) != 1 {
		t.Fatalf("expected one history entry in store-a")
	}
	entry := store.history[0]
	if entry.Status != domain.LeadStatusClosed {
		t.Fatalf("expected closed status, got %q", entry.Status)
	}
	if entry.Processed != domain.ProcessedNeedsBookkeeping {
		t.Fatalf("expected needs-bookkeeping marker, got %q", entry.Processed)
	}
	if entry.CloseStatusIdentifiedAt == "" {
		t.Fatalf("expected close timestamp stamped")
	}
}

func TestCloseUnknownLeadReturnsNotFound(t *testing.T) {
	dashboard := &fakeDashboard{consultants: rosterFixture()}
	svc := newTestService(dashboard, fakeStores{})

	err := svc.Close(context.Background(), "PH-X-X-NOPE", transport.CloseLeadRequest{})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestOverwriteReplacesInPlaceWhenAllowed(t *testing.T) {
	consultants := rosterFixture()
	consultants[0].OverwriteAllowed = true
	dashboard := &fakeDashboard{
		captured:    []domain.CapturedLeadEntry{capturedFixture()},
		consultants: consultants,
	}
	stores := fakeStores{}
	stores["store-a"] = &fakeStore{id: "store-a", leads: []domain.Lead{capturedFixture().Lead}}
	svc := newTestService(dashboard, stores)

	notes := "updated by admin"
	err := svc.Overwrite(context.Background(), "PH-L-L-AB12", transport.OverwriteLeadRequest{Notes: &notes})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store := stores["store-a"]
	if len(store.overwritten) != 1 {
		t.Fatalf("expected in-place overwrite, got %+v", store.overwritten)
	}
	if store.leads[0].Notes != notes {
		t.Fatalf("expected merged notes, got %q", store.leads[0].Notes)
	}
	if store.leads[0].Name != "Maria Silva" {
		t.Fatalf("expected untouched fields preserved, got %q", store.leads[0].Name)
	}
}

func TestOverwriteAppendsWhenNotAllowed(t *testing.T) {
	dashboard := &fakeDashboard{
		captured:    []domain.CapturedLeadEntry{capturedFixture()},
		consultants: rosterFixture(),
	}
	stores := fakeStores{}
	stores["store-a"] = &fakeStore{id: "store-a", leads: []domain.Lead{capturedFixture().Lead}}
	svc := newTestService(dashboard, stores)

	notes := "updated by admin"
	err := svc.Overwrite(context.Background(), "PH-L-L-AB12", transport.OverwriteLeadRequest{Notes: &notes})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store := stores["store-a"]
	if len(store.overwritten) != 0 {
		t.Fatalf("expected no in-place overwrite, got %+v", store.overwritten)
	}
	if len(store.leads) != 2 {
		t.Fatalf("expected appended row, got %d leads", len(store.leads))
	}
}

func TestReprocessOrphansReportsCounts(t *testing.T) {
	dashboard := &fakeDashboard{
		consultants: []domain.ConsultantProfile{
			{ID: "c-a", StoreID: "store-a", Active: true, Services: []string{"legal"}, Regions: []string{"lisboa"}},
		},
		orphans: []domain.OrphanLeadEntry{
			{Lead: domain.Lead{ID: "PH-1", InterestServices: "legal", InterestRegions: "lisboa"}},
			{Lead: domain.Lead{ID: "PH-2", InterestServices: "mortgage", InterestRegions: "porto"}},
		},
	}
	stores := fakeStores{}
	svc := newTestService(dashboard, stores)

	resp, err := svc.ReprocessOrphans(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Reassigned != 1 || resp.Remaining != 1 {
		t.Fatalf("expected 1 reassigned and 1 remaining, got %+v", resp)
	}
}
