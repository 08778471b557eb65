// Package service exposes the admin routing operations: redistribution,
// close-out, overwrite re-sync and orphan queue management.
package service

import (
	"context"
	"fmt"

	"leadrouter_backend/internal/leadrouting/transport"
	"leadrouter_backend/internal/routing"
	"leadrouter_backend/internal/routing/domain"
	"leadrouter_backend/platform/apperr"
	"leadrouter_backend/platform/logger"
)

// Dashboard is the slice of the dashboard repository this service needs.
type Dashboard interface {
	LatestCapturedLead(ctx context.Context, leadID string) (domain.CapturedLeadEntry, error)
	ListConsultants(ctx context.Context) ([]domain.ConsultantProfile, error)
	ListOrphanLeads(ctx context.Context) ([]domain.OrphanLeadEntry, error)
}

// Service drives the routing engine from the admin surface.
type Service struct {
	engine    *routing.Engine
	orphans   *routing.OrphanProcessor
	dashboard Dashboard
	stores    routing.StoreFactory
	log       *logger.Logger
}

// New creates the admin routing service.
func New(engine *routing.Engine, orphans *routing.OrphanProcessor, dashboard Dashboard, stores routing.StoreFactory, log *logger.Logger) *Service {
	return &Service{
		engine:    engine,
		orphans:   orphans,
		dashboard: dashboard,
		stores:    stores,
		log:       log,
	}
}

// Redistribute moves a lead to the next candidate in its frozen match list.
// Redistribution must be enabled on the currently assigned consultant.
func (s *Service) Redistribute(ctx context.Context, leadID string) (transport.RedistributeResponse, error) {
	captured, err := s.dashboard.LatestCapturedLead(ctx, leadID)
	if err != nil {
		return transport.RedistributeResponse{}, err
	}
	consultants, err := s.dashboard.ListConsultants(ctx)
	if err != nil {
		return transport.RedistributeResponse{}, fmt.Errorf("load roster: %w", err)
	}

	if current, ok := consultantByStoreID(consultants, captured.SavedInStoreID); ok && !current.RedistributionEnabled {
		return transport.RedistributeResponse{}, apperr.Forbidden("redistribution is disabled for the assigned consultant")
	}

	if err := s.engine.RedistributeLead(ctx, captured, captured.Lead, consultants, s.stores); err != nil {
		return transport.RedistributeResponse{}, err
	}

	resp := transport.RedistributeResponse{LeadID: leadID, Orphaned: true}
	if len(captured.MatchingStoreIDs) > 0 {
		nextStoreID := captured.MatchingStoreIDs[(captured.NextStoreIndex+1)%len(captured.MatchingStoreIDs)]
		if _, ok := consultantByStoreID(consultants, nextStoreID); ok {
			resp.Orphaned = false
			resp.StoreID = nextStoreID
		}
	}
	return resp, nil
}

// Close marks a lead's routing lifecycle terminal.
func (s *Service) Close(ctx context.Context, leadID string, req transport.CloseLeadRequest) error {
	captured, err := s.dashboard.LatestCapturedLead(ctx, leadID)
	if err != nil {
		return err
	}
	consultants, err := s.dashboard.ListConsultants(ctx)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	consultant, ok := consultantByStoreID(consultants, captured.SavedInStoreID)
	if !ok {
		return apperr.NotFound("assigned consultant not found")
	}

	lead := captured.Lead
	lead.Status = domain.LeadStatusClosed
	if req.Status != "" {
		lead.Status = domain.LeadStatus(req.Status)
	}
	return s.engine.MarkClosed(ctx, lead, consultant, s.stores)
}

// Overwrite re-syncs edited lead fields into the assigned consultant's
// store, replacing in place only when the consultant allows it.
func (s *Service) Overwrite(ctx context.Context, leadID string, req transport.OverwriteLeadRequest) error {
	captured, err := s.dashboard.LatestCapturedLead(ctx, leadID)
	if err != nil {
		return err
	}
	consultants, err := s.dashboard.ListConsultants(ctx)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	consultant, ok := consultantByStoreID(consultants, captured.SavedInStoreID)
	if !ok {
		return apperr.NotFound("assigned consultant not found")
	}

	lead := mergeLead(captured.Lead, req)
	return s.engine.HandleOverwrite(ctx, lead, captured.SavedInStoreID, s.stores, consultant.OverwriteAllowed)
}

// ListOrphans returns the orphan queue in arrival order.
func (s *Service) ListOrphans(ctx context.Context) ([]transport.OrphanResponse, error) {
	entries, err := s.dashboard.ListOrphanLeads(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]transport.OrphanResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, transport.OrphanResponse{
			LeadID:           entry.ID,
			Name:             entry.Name,
			Phone:            entry.Phone,
			InterestServices: entry.InterestServices,
			InterestRegions:  entry.InterestRegions,
			Source:           entry.Source,
			CreatedAt:        entry.CreatedAt,
		})
	}
	return out, nil
}

// ReprocessOrphans runs one reassignment sweep over the orphan queue.
func (s *Service) ReprocessOrphans(ctx context.Context) (transport.ReprocessResponse, error) {
	before, err := s.dashboard.ListOrphanLeads(ctx)
	if err != nil {
		return transport.ReprocessResponse{}, err
	}
	consultants, err := s.dashboard.ListConsultants(ctx)
	if err != nil {
		return transport.ReprocessResponse{}, fmt.Errorf("load roster: %w", err)
	}
	if err := s.orphans.ReprocessOrphans(ctx, consultants, s.stores); err != nil {
		return transport.ReprocessResponse{}, err
	}
	after, err := s.dashboard.ListOrphanLeads(ctx)
	if err != nil {
		return transport.ReprocessResponse{}, err
	}

	return transport.ReprocessResponse{
		Reassigned: len(before) - len(after),
		Remaining:  len(after),
	}, nil
}

func mergeLead(lead domain.Lead, req transport.OverwriteLeadRequest) domain.Lead {
	if req.Name != nil {
		lead.Name = *req.Name
	}
	if req.Email != nil {
		lead.Email = *req.Email
	}
	if req.Phone != nil {
		lead.Phone = *req.Phone
	}
	if req.Services != nil {
		lead.InterestServices = domain.NormalizeTagCSV(*req.Services)
	}
	if req.Regions != nil {
		lead.InterestRegions = domain.NormalizeTagCSV(*req.Regions)
	}
	if req.AnnualIncome != nil {
		lead.AnnualIncome = *req.AnnualIncome
	}
	if req.Notes != nil {
		lead.Notes = *req.Notes
	}
	if req.Status != nil {
		lead.Status = domain.LeadStatus(*req.Status)
	}
	return lead
}

func consultantByStoreID(consultants []domain.ConsultantProfile, storeID string) (domain.ConsultantProfile, bool) {
	for _, c := range consultants {
		if c.StoreID == storeID {
			return c, true
		}
	}
	return domain.ConsultantProfile{}, false
}
