package service

import (
	"context"
	"testing"

	"leadrouter_backend/internal/events"
	"leadrouter_backend/internal/routing"
	"leadrouter_backend/internal/routing/domain"
	"leadrouter_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type fakeRoster struct {
	consultants []domain.ConsultantProfile
}

func (f *fakeRoster) ListConsultants(context.Context) ([]domain.ConsultantProfile, error) {
	return f.consultants, nil
}

type fakeStore struct {
	leads []domain.Lead
}

func (f *fakeStore) AppendLead(context.Context, domain.Lead) error { return nil }
func (f *fakeStore) AppendLeadHistory(context.Context, domain.LeadHistoryEntry) error {
	return nil
}
func (f *fakeStore) ListLeads(context.Context) ([]domain.Lead, error) { return f.leads, nil }
func (f *fakeStore) OverwriteLead(context.Context, string, domain.Lead) error {
	return nil
}

type deletionCall struct {
	consultantID string
	leadID       string
}

type fakeNotifier struct {
	deletions []deletionCall
}

func (f *fakeNotifier) NotifyAdminNewLead(context.Context, domain.Lead, string) error { return nil }
func (f *fakeNotifier) NotifyAdminClosed(context.Context, domain.Lead) error          { return nil }
func (f *fakeNotifier) NotifyConsultantClosed(context.Context, domain.Lead, domain.ConsultantProfile) error {
	return nil
}
func (f *fakeNotifier) NotifyConsultantDeletion(_ context.Context, consultant domain.ConsultantProfile, leadID, _ string) error {
	f.deletions = append(f.deletions, deletionCall{consultantID: consultant.ID, leadID: leadID})
	return nil
}

func newTestWatcher(t *testing.T, roster *fakeRoster, store *fakeStore, notifier *fakeNotifier) *Watcher {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	log := logger.New("development")
	stores := func(string) routing.ConsultantStore { return store }
	return NewWatcher(roster, stores, notifier, rdb, events.NewInMemoryBus(log), log)
}

func closedLead(id string) domain.Lead {
	return domain.Lead{ID: id, Status: domain.LeadStatusClosed}
}

func TestScanDetectsDeletedClosedLead(t *testing.T) {
	roster := &fakeRoster{consultants: []domain.ConsultantProfile{
		{ID: "c1", ContactName: "Ana", StoreID: "store-a"},
	}}
	store := &fakeStore{leads: []domain.Lead{closedLead("PH-L-L-GONE")}}
	notifier := &fakeNotifier{}
	watcher := newTestWatcher(t, roster, store, notifier)

	if err := watcher.ScanDeletions(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(notifier.deletions) != 0 {
		t.Fatalf("first scan must only snapshot, got %+v", notifier.deletions)
	}

	store.leads = nil
	if err := watcher.ScanDeletions(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(notifier.deletions) != 1 || notifier.deletions[0].leadID != "PH-L-L-GONE" {
		t.Fatalf("expected one deletion notice, got %+v", notifier.deletions)
	}
	if notifier.deletions[0].consultantID != "c1" {
		t.Fatalf("expected notice for consultant c1, got %+v", notifier.deletions)
	}
}

func TestScanIgnoresDeletedOpenLeads(t *testing.T) {
	roster := &fakeRoster{consultants: []domain.ConsultantProfile{
		{ID: "c1", StoreID: "store-a"},
	}}
	store := &fakeStore{leads: []domain.Lead{{ID: "PH-L-L-OPEN", Status: domain.LeadStatusNew}}}
	notifier := &fakeNotifier{}
	watcher := newTestWatcher(t, roster, store, notifier)

	if err := watcher.ScanDeletions(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store.leads = nil
	if err := watcher.ScanDeletions(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(notifier.deletions) != 0 {
		t.Fatalf("open lead removal must not notify, got %+v", notifier.deletions)
	}
}

func TestScanDoesNotRepeatNotices(t *testing.T) {
	roster := &fakeRoster{consultants: []domain.ConsultantProfile{
		{ID: "c1", StoreID: "store-a"},
	}}
	store := &fakeStore{leads: []domain.Lead{closedLead("PH-L-L-ONCE")}}
	notifier := &fakeNotifier{}
	watcher := newTestWatcher(t, roster, store, notifier)

	if err := watcher.ScanDeletions(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store.leads = nil
	for i := 0; i < 3; i++ {
		if err := watcher.ScanDeletions(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if len(notifier.deletions) != 1 {
		t.Fatalf("expected a single deletion notice across scans, got %d", len(notifier.deletions))
	}
}

func TestScanTracksLeadsStillPresent(t *testing.T) {
	roster := &fakeRoster{consultants: []domain.ConsultantProfile{
		{ID: "c1", StoreID: "store-a"},
	}}
	store := &fakeStore{leads: []domain.Lead{closedLead("PH-L-L-KEEP")}}
	notifier := &fakeNotifier{}
	watcher := newTestWatcher(t, roster, store, notifier)

	for i := 0; i < 3; i++ {
		if err := watcher.ScanDeletions(context.Background()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if len(notifier.deletions) != 0 {
		t.Fatalf("present lead must not notify, got %+v", notifier.deletions)
	}
}
