// Package service manages the consultant roster and its advisory lead
// counters.
package service

import (
	"context"
	"fmt"
	"strings"

	"leadrouter_backend/internal/dashboard/repository"
	"leadrouter_backend/internal/roster/transport"
	"leadrouter_backend/internal/routing/domain"
	"leadrouter_backend/platform/logger"

	"github.com/google/uuid"
)

// Service owns roster reads and writes.
type Service struct {
	repo *repository.Repository
	log  *logger.Logger
}

// New creates the roster service.
func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// List returns all consultants, active and inactive.
func (s *Service) List(ctx context.Context) ([]transport.ConsultantResponse, error) {
	profiles, err := s.repo.ListConsultants(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]transport.ConsultantResponse, 0, len(profiles))
	for _, profile := range profiles {
		out = append(out, toResponse(profile))
	}
	return out, nil
}

// Register creates a consultant, generating a store id when none is given.
func (s *Service) Register(ctx context.Context, req transport.RegisterConsultantRequest) (transport.ConsultantResponse, error) {
	storeID := strings.TrimSpace(req.StoreID)
	if storeID == "" {
		storeID = "store-" + uuid.NewString()[:8]
	}

	profile := domain.ConsultantProfile{
		ID:                    uuid.NewString(),
		CompanyName:           strings.TrimSpace(req.CompanyName),
		ContactName:           strings.TrimSpace(req.ContactName),
		ContactEmail:          strings.TrimSpace(strings.ToLower(req.ContactEmail)),
		TelegramChatID:        strings.TrimSpace(req.TelegramChatID),
		StoreID:               storeID,
		Active:                req.Active,
		Services:              domain.SplitTags(req.Services),
		Regions:               domain.SplitTags(req.Regions),
		CommissionValue:       req.CommissionValue,
		NotifyOnClose:         req.NotifyOnClose,
		RedistributionEnabled: req.RedistributionEnabled,
		OverwriteAllowed:      req.OverwriteAllowed,
	}

	created, err := s.repo.RegisterConsultant(ctx, profile)
	if err != nil {
		return transport.ConsultantResponse{}, err
	}
	s.log.Info("consultant registered", "consultant_id", created.ID, "store_id", created.StoreID)
	return toResponse(created), nil
}

// Update patches a consultant's profile and behavior flags.
func (s *Service) Update(ctx context.Context, id string, req transport.UpdateConsultantRequest) (transport.ConsultantResponse, error) {
	update := repository.ConsultantUpdate{
		ID:                    id,
		CompanyName:           req.CompanyName,
		ContactName:           req.ContactName,
		ContactEmail:          req.ContactEmail,
		TelegramChatID:        req.TelegramChatID,
		Active:                req.Active,
		CommissionValue:       req.CommissionValue,
		NotifyOnClose:         req.NotifyOnClose,
		RedistributionEnabled: req.RedistributionEnabled,
		OverwriteAllowed:      req.OverwriteAllowed,
	}
	if req.Services != nil {
		normalized := domain.NormalizeTagCSV(*req.Services)
		update.Services = &normalized
	}
	if req.Regions != nil {
		normalized := domain.NormalizeTagCSV(*req.Regions)
		update.Regions = &normalized
	}

	updated, err := s.repo.UpdateConsultant(ctx, update)
	if err != nil {
		return transport.ConsultantResponse{}, err
	}
	return toResponse(updated), nil
}

// RecordCapture bumps the assigned consultant's counters after a capture or
// redistribution.
func (s *Service) RecordCapture(ctx context.Context, storeID string) error {
	if err := s.repo.AdjustLeadCounters(ctx, storeID, 1, 1, 0); err != nil {
		return fmt.Errorf("record capture counters: %w", err)
	}
	return nil
}

// RecordClose moves one lead from open to closed on the consultant's counters.
func (s *Service) RecordClose(ctx context.Context, storeID string) error {
	if err := s.repo.AdjustLeadCounters(ctx, storeID, 0, -1, 1); err != nil {
		return fmt.Errorf("record close counters: %w", err)
	}
	return nil
}

func toResponse(profile domain.ConsultantProfile) transport.ConsultantResponse {
	return transport.ConsultantResponse{
		ID:                    profile.ID,
		CompanyName:           profile.CompanyName,
		ContactName:           profile.ContactName,
		ContactEmail:          profile.ContactEmail,
		TelegramChatID:        profile.TelegramChatID,
		StoreID:               profile.StoreID,
		Active:                profile.Active,
		Services:              profile.Services,
		Regions:               profile.Regions,
		CommissionValue:       profile.CommissionValue,
		NotifyOnClose:         profile.NotifyOnClose,
		RedistributionEnabled: profile.RedistributionEnabled,
		OverwriteAllowed:      profile.OverwriteAllowed,
		TotalLeads:            profile.TotalLeads,
		OpenLeads:             profile.OpenLeads,
		ClosedLeads:           profile.ClosedLeads,
	}
}
