package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"leadrouter_backend/internal/events"
	"leadrouter_backend/internal/routing"
	"leadrouter_backend/internal/routing/domain"
	"leadrouter_backend/platform/logger"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const snapshotKeyPrefix = "roster:snapshot:"

const scanConcurrency = 4

// ConsultantLister provides the roster for deletion scans.
type ConsultantLister interface {
	ListConsultants(ctx context.Context) ([]domain.ConsultantProfile, error)
}

// Watcher detects closed leads that consultants removed from their live
// list. Each scan compares the list against the previous snapshot; a closed
// lead present before and gone now triggers a deletion notification.
type Watcher struct {
	repo     ConsultantLister
	stores   routing.StoreFactory
	notifier routing.Notifier
	rdb      *redis.Client
	bus      events.Bus
	log      *logger.Logger
}

// NewWatcher creates the deletion watcher.
func NewWatcher(repo ConsultantLister, stores routing.StoreFactory, notifier routing.Notifier, rdb *redis.Client, bus events.Bus, log *logger.Logger) *Watcher {
	return &Watcher{
		repo:     repo,
		stores:   stores,
		notifier: notifier,
		rdb:      rdb,
		bus:      bus,
		log:      log,
	}
}

// ScanDeletions runs one sweep over all consultant stores, a few in
// parallel. Per-consultant failures are logged and the sweep continues.
func (w *Watcher) ScanDeletions(ctx context.Context) error {
	consultants, err := w.repo.ListConsultants(ctx)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(scanConcurrency)
	for _, consultant := range consultants {
		group.Go(func() error {
			if err := w.scanStore(groupCtx, consultant); err != nil {
				w.log.Error("deletion scan failed for store",
					"store_id", consultant.StoreID,
					"error", err.Error(),
				)
			}
			return nil
		})
	}
	return group.Wait()
}

func (w *Watcher) scanStore(ctx context.Context, consultant domain.ConsultantProfile) error {
	leads, err := w.stores(consultant.StoreID).ListLeads(ctx)
	if err != nil {
		return fmt.Errorf("list store leads: %w", err)
	}

	current := make(map[string]string, len(leads))
	for _, lead := range leads {
		current[lead.ID] = string(lead.Status)
	}

	previous, err := w.loadSnapshot(ctx, consultant.StoreID)
	if err != nil {
		return err
	}

	for leadID, status := range previous {
		if _, stillThere := current[leadID]; stillThere {
			continue
		}
		if domain.LeadStatus(status) != domain.LeadStatusClosed {
			continue
		}

		if err := w.notifier.NotifyConsultantDeletion(ctx, consultant, leadID, routing.StoreLabel(consultant)); err != nil {
			w.log.NotificationError("consultant_deletion", leadID, err)
		}
		w.bus.Publish(ctx, events.ClosedLeadDeleted{
			BaseEvent:    events.NewBaseEvent(),
			LeadID:       leadID,
			ConsultantID: consultant.ID,
			StoreID:      consultant.StoreID,
		})
		w.log.Info("closed lead deletion detected",
			"lead_id", leadID,
			"store_id", consultant.StoreID,
		)
	}

	return w.saveSnapshot(ctx, consultant.StoreID, current)
}

func (w *Watcher) loadSnapshot(ctx context.Context, storeID string) (map[string]string, error) {
	data, err := w.rdb.Get(ctx, snapshotKeyPrefix+storeID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("load store snapshot: %w", err)
	}

	snapshot := make(map[string]string)
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode store snapshot: %w", err)
	}
	return snapshot, nil
}

func (w *Watcher) saveSnapshot(ctx context.Context, storeID string, snapshot map[string]string) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode store snapshot: %w", err)
	}
	if err := w.rdb.Set(ctx, snapshotKeyPrefix+storeID, data, 0).Err(); err != nil {
		return fmt.Errorf("save store snapshot: %w", err)
	}
	return nil
}
