// Package consultantstore persists each consultant's private lead records:
// the live lead list and the append-only history. All consultants share two
// tables partitioned by store id; the factory hands the routing engine a
// view scoped to one store.
package consultantstore

import (
	"context"
	"fmt"
	"hash/fnv"

	"leadrouter_backend/internal/routing"
	"leadrouter_backend/internal/routing/domain"
	"leadrouter_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is one consultant's lead records.
type Store struct {
	pool    *pgxpool.Pool
	storeID string
}

// New creates a store view scoped to one consultant.
func New(pool *pgxpool.Pool, storeID string) *Store {
	return &Store{pool: pool, storeID: storeID}
}

// Factory returns a routing.StoreFactory backed by the shared pool.
func Factory(pool *pgxpool.Pool) routing.StoreFactory {
	return func(storeID string) routing.ConsultantStore {
		return New(pool, storeID)
	}
}

func (s *Store) AppendLead(ctx context.Context, lead domain.Lead) error {
	return s.withLeadLock(ctx, lead.ID, func(tx pgx.Tx) error {
		query := `
			INSERT INTO consultant_leads (
				store_id, lead_id, status, name, email, phone,
				interest_services, interest_regions, annual_income,
				lead_created_at, lead_created_at_unix, notes, close_identified_at,
				created_at, updated_at
			) VALUES (
				$1, $2, $3, $4, $5, $6,
				$7, $8, $9,
				$10, $11, $12, $13,
				now(), now()
			)
			ON CONFLICT (store_id, lead_id) DO NOTHING
		`

		_, err := tx.Exec(ctx, query, leadArgs(s.storeID, lead)...)
		if err != nil {
			return fmt.Errorf("append lead: %w", err)
		}
		return nil
	})
}

func (s *Store) OverwriteLead(ctx context.Context, leadID string, lead domain.Lead) error {
	return s.withLeadLock(ctx, leadID, func(tx pgx.Tx) error {
		query := `
			UPDATE consultant_leads
			SET status = $3, name = $4, email = $5, phone = $6,
				interest_services = $7, interest_regions = $8, annual_income = $9,
				lead_created_at = $10, lead_created_at_unix = $11, notes = $12,
				close_identified_at = $13,
				updated_at = now()
			WHERE store_id = $1 AND lead_id = $2
		`

		result, err := tx.Exec(ctx, query,
			s.storeID,
			leadID,
			string(lead.Status),
			lead.Name,
			lead.Email,
			lead.Phone,
			lead.InterestServices,
			lead.InterestRegions,
			lead.AnnualIncome,
			lead.CreatedAt,
			lead.CreatedAtUnix,
			lead.Notes,
			lead.CloseStatusIdentifiedAt,
		)
		if err != nil {
			return fmt.Errorf("overwrite lead: %w", err)
		}
		if result.RowsAffected() == 0 {
			return apperr.NotFound("lead not found in store")
		}
		return nil
	})
}

func (s *Store) AppendLeadHistory(ctx context.Context, entry domain.LeadHistoryEntry) error {
	query := `
		INSERT INTO consultant_lead_history (
			store_id, lead_id, status, name, email, phone,
			interest_services, interest_regions, annual_income,
			lead_created_at, lead_created_at_unix, notes, close_identified_at,
			processed, recorded_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9,
			$10, $11, $12, $13,
			$14, now()
		)
	`

	args := append(leadArgs(s.storeID, entry.Lead), entry.Processed)
	_, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("append lead history: %w", err)
	}
	return nil
}

func (s *Store) ListLeads(ctx context.Context) ([]domain.Lead, error) {
	query := `
		SELECT lead_id, status, name, email, phone,
			interest_services, interest_regions, annual_income,
			lead_created_at, lead_created_at_unix, notes, close_identified_at
		FROM consultant_leads
		WHERE store_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, s.storeID)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		var lead domain.Lead
		var status string
		if err := rows.Scan(
			&lead.ID,
			&status,
			&lead.Name,
			&lead.Email,
			&lead.Phone,
			&lead.InterestServices,
			&lead.InterestRegions,
			&lead.AnnualIncome,
			&lead.CreatedAt,
			&lead.CreatedAtUnix,
			&lead.Notes,
			&lead.CloseStatusIdentifiedAt,
		); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		lead.Status = domain.LeadStatus(status)
		leads = append(leads, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate leads: %w", err)
	}
	return leads, nil
}

// withLeadLock runs fn inside a transaction holding an advisory lock on the
// lead id, serializing concurrent writes to the same lead across stores.
func (s *Store) withLeadLock(ctx context.Context, leadID string, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin lead write: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, leadLockKey(leadID)); err != nil {
		return fmt.Errorf("acquire lead lock: %w", err)
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit lead write: %w", err)
	}
	return nil
}

func leadLockKey(leadID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(leadID))
	return int64(h.Sum64())
}

func leadArgs(storeID string, lead domain.Lead) []interface{} {
	return []interface{}{
		storeID,
		lead.ID,
		string(lead.Status),
		lead.Name,
		lead.Email,
		lead.Phone,
		lead.InterestServices,
		lead.InterestRegions,
		lead.AnnualIncome,
		lead.CreatedAt,
		lead.CreatedAtUnix,
		lead.Notes,
		lead.CloseStatusIdentifiedAt,
	}
}
