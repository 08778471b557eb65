// Package repository persists the global routing records: the captured-lead
// audit log, the orphan queue and the consultant roster.
package repository

import (
	"context"
	"errors"
	"fmt"

	"leadrouter_backend/internal/routing/domain"
	"leadrouter_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const consultantNotFoundMsg = "consultant not found"
const capturedLeadNotFoundMsg = "captured lead not found"

// Repository provides database operations for the routing dashboard.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new dashboard repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ConsultantUpdate carries the optional fields of a roster update. Nil
// fields keep the stored value.
type ConsultantUpdate struct {
	ID                    string
	CompanyName           *string
	ContactName           *string
	ContactEmail          *string
	TelegramChatID        *string
	Active                *bool
	Services              *string
	Regions               *string
	CommissionValue       *float64
	NotifyOnClose         *bool
	RedistributionEnabled *bool
	OverwriteAllowed      *bool
}

func (r *Repository) AppendCapturedLead(ctx context.Context, entry domain.CapturedLeadEntry) error {
	query := `
		INSERT INTO captured_leads (
			lead_id, status, name, email, phone,
			interest_services, interest_regions, annual_income,
			lead_created_at, lead_created_at_unix, notes, close_identified_at,
			source, matching_store_ids, next_store_index, saved_in_store_id,
			recorded_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8,
			$9, $10, $11, $12,
			$13, $14, $15, $16,
			now()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		string(entry.Status),
		entry.Name,
		entry.Email,
		entry.Phone,
		entry.InterestServices,
		entry.InterestRegions,
		entry.AnnualIncome,
		entry.CreatedAt,
		entry.CreatedAtUnix,
		entry.Notes,
		entry.CloseStatusIdentifiedAt,
		entry.Source,
		entry.MatchingStoreIDs,
		entry.NextStoreIndex,
		entry.SavedInStoreID,
	)
	if err != nil {
		return fmt.Errorf("append captured lead: %w", err)
	}
	return nil
}

// LatestCapturedLead returns the most recent audit entry for a lead. The
// audit log is append-only; redistribution reads the newest row to learn
// the frozen candidate list and the current rotation index.
func (r *Repository) LatestCapturedLead(ctx context.Context, leadID string) (domain.CapturedLeadEntry, error) {
	query := `
		SELECT lead_id, status, name, email, phone,
			interest_services, interest_regions, annual_income,
			lead_created_at, lead_created_at_unix, notes, close_identified_at,
			source, matching_store_ids, next_store_index, saved_in_store_id
		FROM captured_leads
		WHERE lead_id = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1
	`

	entry, err := scanCapturedLead(r.pool.QueryRow(ctx, query, leadID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.CapturedLeadEntry{}, apperr.NotFound(capturedLeadNotFoundMsg)
		}
		return domain.CapturedLeadEntry{}, fmt.Errorf("get captured lead: %w", err)
	}
	return entry, nil
}

// ListCapturedLeads returns the newest audit entry per lead, most recent first.
func (r *Repository) ListCapturedLeads(ctx context.Context, limit int) ([]domain.CapturedLeadEntry, error) {
	if limit < 1 {
		limit = 100
	}
	query := `
		SELECT DISTINCT ON (lead_id)
			lead_id, status, name, email, phone,
			interest_services, interest_regions, annual_income,
			lead_created_at, lead_created_at_unix, notes, close_identified_at,
			source, matching_store_ids, next_store_index, saved_in_store_id
		FROM captured_leads
		ORDER BY lead_id, recorded_at DESC, id DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list captured leads: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.CapturedLeadEntry, 0)
	for rows.Next() {
		entry, err := scanCapturedLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan captured lead: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate captured leads: %w", err)
	}
	return entries, nil
}

func (r *Repository) AppendOrphanLead(ctx context.Context, entry domain.OrphanLeadEntry) error {
	query := `
		INSERT INTO orphan_leads (
			lead_id, status, name, email, phone,
			interest_services, interest_regions, annual_income,
			lead_created_at, lead_created_at_unix, notes, close_identified_at,
			source, queued_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8,
			$9, $10, $11, $12,
			$13, now()
		)
		ON CONFLICT (lead_id) DO NOTHING
	`

	_, err := r.pool.Exec(ctx, query,
		entry.ID,
		string(entry.Status),
		entry.Name,
		entry.Email,
		entry.Phone,
		entry.InterestServices,
		entry.InterestRegions,
		entry.AnnualIncome,
		entry.CreatedAt,
		entry.CreatedAtUnix,
		entry.Notes,
		entry.CloseStatusIdentifiedAt,
		entry.Source,
	)
	if err != nil {
		return fmt.Errorf("append orphan lead: %w", err)
	}
	return nil
}

func (r *Repository) ListOrphanLeads(ctx context.Context) ([]domain.OrphanLeadEntry, error) {
	query := `
		SELECT lead_id, status, name, email, phone,
			interest_services, interest_regions, annual_income,
			lead_created_at, lead_created_at_unix, notes, close_identified_at,
			source
		FROM orphan_leads
		ORDER BY queued_at ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list orphan leads: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.OrphanLeadEntry, 0)
	for rows.Next() {
		var entry domain.OrphanLeadEntry
		var status string
		if err := rows.Scan(
			&entry.ID,
			&status,
			&entry.Name,
			&entry.Email,
			&entry.Phone,
			&entry.InterestServices,
			&entry.InterestRegions,
			&entry.AnnualIncome,
			&entry.CreatedAt,
			&entry.CreatedAtUnix,
			&entry.Notes,
			&entry.CloseStatusIdentifiedAt,
			&entry.Source,
		); err != nil {
			return nil, fmt.Errorf("scan orphan lead: %w", err)
		}
		entry.Status = domain.LeadStatus(status)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orphan leads: %w", err)
	}
	return entries, nil
}

func (r *Repository) RemoveOrphanLead(ctx context.Context, leadID string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM orphan_leads WHERE lead_id = $1`, leadID)
	if err != nil {
		return fmt.Errorf("remove orphan lead: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound("orphan lead not found")
	}
	return nil
}

func (r *Repository) RegisterConsultant(ctx context.Context, profile domain.ConsultantProfile) (domain.ConsultantProfile, error) {
	query := `
		INSERT INTO consultants (
			id, company_name, contact_name, contact_email, telegram_chat_id,
			store_id, active,
			services, regions, commission_value,
			notify_on_close, redistribution_enabled, overwrite_allowed,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7,
			$8, $9, $10,
			$11, $12, $13,
			now(), now()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		profile.ID,
		profile.CompanyName,
		profile.ContactName,
		profile.ContactEmail,
		profile.TelegramChatID,
		profile.StoreID,
		profile.Active,
		domain.JoinTags(profile.Services),
		domain.JoinTags(profile.Regions),
		profile.CommissionValue,
		profile.NotifyOnClose,
		profile.RedistributionEnabled,
		profile.OverwriteAllowed,
	)
	if err != nil {
		return domain.ConsultantProfile{}, fmt.Errorf("register consultant: %w", err)
	}
	return profile, nil
}

func (r *Repository) GetConsultant(ctx context.Context, id string) (domain.ConsultantProfile, error) {
	query := selectConsultant + ` WHERE id = $1`

	profile, err := scanConsultant(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ConsultantProfile{}, apperr.NotFound(consultantNotFoundMsg)
		}
		return domain.ConsultantProfile{}, fmt.Errorf("get consultant: %w", err)
	}
	return profile, nil
}

// ListConsultants returns the full roster, active and inactive. The matcher
// applies the eligibility gate itself.
func (r *Repository) ListConsultants(ctx context.Context) ([]domain.ConsultantProfile, error) {
	query := selectConsultant + ` ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list consultants: %w", err)
	}
	defer rows.Close()

	profiles := make([]domain.ConsultantProfile, 0)
	for rows.Next() {
		profile, err := scanConsultant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan consultant: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consultants: %w", err)
	}
	return profiles, nil
}

func (r *Repository) UpdateConsultant(ctx context.Context, update ConsultantUpdate) (domain.ConsultantProfile, error) {
	query := `
		UPDATE consultants
		SET
			company_name = COALESCE($2, company_name),
			contact_name = COALESCE($3, contact_name),
			contact_email = COALESCE($4, contact_email),
			telegram_chat_id = COALESCE($5, telegram_chat_id),
			active = COALESCE($6, active),
			services = COALESCE($7, services),
			regions = COALESCE($8, regions),
			commission_value = COALESCE($9, commission_value),
			notify_on_close = COALESCE($10, notify_on_close),
			redistribution_enabled = COALESCE($11, redistribution_enabled),
			overwrite_allowed = COALESCE($12, overwrite_allowed),
			updated_at = now()
		WHERE id = $1
		RETURNING id, company_name, contact_name, contact_email, telegram_chat_id,
			store_id, active,
			services, regions, commission_value,
			notify_on_close, redistribution_enabled, overwrite_allowed,
			total_leads, open_leads, closed_leads
	`

	profile, err := scanConsultant(r.pool.QueryRow(ctx, query,
		update.ID,
		update.CompanyName,
		update.ContactName,
		update.ContactEmail,
		update.TelegramChatID,
		update.Active,
		update.Services,
		update.Regions,
		update.CommissionValue,
		update.NotifyOnClose,
		update.RedistributionEnabled,
		update.OverwriteAllowed,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ConsultantProfile{}, apperr.NotFound(consultantNotFoundMsg)
		}
		return domain.ConsultantProfile{}, fmt.Errorf("update consultant: %w", err)
	}
	return profile, nil
}

func (r *Repository) DeleteConsultant(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM consultants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete consultant: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(consultantNotFoundMsg)
	}
	return nil
}

// AdjustLeadCounters moves the advisory counters on a consultant row by the
// given deltas. Counters never drop below zero.
func (r *Repository) AdjustLeadCounters(ctx context.Context, storeID string, totalDelta, openDelta, closedDelta int) error {
	query := `
		UPDATE consultants
		SET
			total_leads = GREATEST(total_leads + $2, 0),
			open_leads = GREATEST(open_leads + $3, 0),
			closed_leads = GREATEST(closed_leads + $4, 0),
			updated_at = now()
		WHERE store_id = $1
	`

	result, err := r.pool.Exec(ctx, query, storeID, totalDelta, openDelta, closedDelta)
	if err != nil {
		return fmt.Errorf("adjust lead counters: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(consultantNotFoundMsg)
	}
	return nil
}

const selectConsultant = `
	SELECT id, company_name, contact_name, contact_email, telegram_chat_id,
		store_id, active,
		services, regions, commission_value,
		notify_on_close, redistribution_enabled, overwrite_allowed,
		total_leads, open_leads, closed_leads
	FROM consultants
`

func scanConsultant(row pgx.Row) (domain.ConsultantProfile, error) {
	var profile domain.ConsultantProfile
	var services, regions string
	err := row.Scan(
		&profile.ID,
		&profile.CompanyName,
		&profile.ContactName,
		&profile.ContactEmail,
		&profile.TelegramChatID,
		&profile.StoreID,
		&profile.Active,
		&services,
		&regions,
		&profile.CommissionValue,
		&profile.NotifyOnClose,
		&profile.RedistributionEnabled,
		&profile.OverwriteAllowed,
		&profile.TotalLeads,
		&profile.OpenLeads,
		&profile.ClosedLeads,
	)
	if err != nil {
		return domain.ConsultantProfile{}, err
	}
	profile.Services = domain.SplitTags(services)
	profile.Regions = domain.SplitTags(regions)
	return profile, nil
}

func scanCapturedLead(row pgx.Row) (domain.CapturedLeadEntry, error) {
	var entry domain.CapturedLeadEntry
	var status string
	err := row.Scan(
		&entry.ID,
		&status,
		&entry.Name,
		&entry.Email,
		&entry.Phone,
		&entry.InterestServices,
		&entry.InterestRegions,
		&entry.AnnualIncome,
		&entry.CreatedAt,
		&entry.CreatedAtUnix,
		&entry.Notes,
		&entry.CloseStatusIdentifiedAt,
		&entry.Source,
		&entry.MatchingStoreIDs,
		&entry.NextStoreIndex,
		&entry.SavedInStoreID,
	)
	if err != nil {
		return domain.CapturedLeadEntry{}, err
	}
	entry.Status = domain.LeadStatus(status)
	return entry, nil
}
