// Package service assembles leads from intake input and hands them to the
// routing engine.
package service

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"leadrouter_backend/internal/intake/session"
	"leadrouter_backend/internal/intake/transport"
	"leadrouter_backend/internal/routing"
	"leadrouter_backend/internal/routing/domain"
	"leadrouter_backend/internal/taxonomy"
	"leadrouter_backend/platform/apperr"
	"leadrouter_backend/platform/logger"
	"leadrouter_backend/platform/phone"

	"github.com/google/uuid"
)

// Roster lists the consultant profiles the engine matches against.
type Roster interface {
	ListConsultants(ctx context.Context) ([]domain.ConsultantProfile, error)
}

// Service owns the intake flow: draft sessions and lead capture.
type Service struct {
	engine   *routing.Engine
	roster   Roster
	stores   routing.StoreFactory
	sessions *session.Store
	tax      *taxonomy.Taxonomy
	log      *logger.Logger
}

// New creates the intake service.
func New(engine *routing.Engine, roster Roster, stores routing.StoreFactory, sessions *session.Store, tax *taxonomy.Taxonomy, log *logger.Logger) *Service {
	return &Service{
		engine:   engine,
		roster:   roster,
		stores:   stores,
		sessions: sessions,
		tax:      tax,
		log:      log,
	}
}

// PatchSession merges form fields into a draft, creating it on first touch.
func (s *Service) PatchSession(ctx context.Context, id string, req transport.PatchSessionRequest) (transport.SessionResponse, error) {
	draft, err := s.sessions.Apply(ctx, id, session.Patch{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Services:     req.Services,
		Regions:      req.Regions,
		AnnualIncome: req.AnnualIncome,
		Notes:        req.Notes,
	})
	if err != nil {
		return transport.SessionResponse{}, err
	}
	return sessionResponse(id, draft), nil
}

// GetSession returns the current draft.
func (s *Service) GetSession(ctx context.Context, id string) (transport.SessionResponse, error) {
	draft, err := s.sessions.Get(ctx, id)
	if err != nil {
		return transport.SessionResponse{}, err
	}
	return sessionResponse(id, draft), nil
}

// DeleteSession discards a draft.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	return s.sessions.Delete(ctx, id)
}

// SubmitSession assembles the draft into a lead and routes it. The draft is
// consumed whether or not routing assigns a consultant.
func (s *Service) SubmitSession(ctx context.Context, id string) (transport.CaptureResponse, error) {
	draft, err := s.sessions.Take(ctx, id)
	if err != nil {
		return transport.CaptureResponse{}, err
	}
	if strings.TrimSpace(draft.Name) == "" || strings.TrimSpace(draft.Phone) == "" {
		return transport.CaptureResponse{}, apperr.Validation("draft is missing name or phone")
	}
	return s.capture(ctx, domain.SourceTelegram, transport.CaptureLeadRequest{
		Name:         draft.Name,
		Email:        draft.Email,
		Phone:        draft.Phone,
		Services:     draft.Services,
		Regions:      draft.Regions,
		AnnualIncome: draft.AnnualIncome,
		Notes:        draft.Notes,
	})
}

// Capture routes a complete lead submitted in one call.
func (s *Service) Capture(ctx context.Context, req transport.CaptureLeadRequest) (transport.CaptureResponse, error) {
	return s.capture(ctx, domain.SourceWebForm, req)
}

func (s *Service) capture(ctx context.Context, source string, req transport.CaptureLeadRequest) (transport.CaptureResponse, error) {
	lead := s.buildLead(req)

	consultants, err := s.roster.ListConsultants(ctx)
	if err != nil {
		return transport.CaptureResponse{}, fmt.Errorf("load roster: %w", err)
	}

	if err := s.engine.CaptureLead(ctx, lead, source, consultants, s.stores); err != nil {
		return transport.CaptureResponse{}, err
	}

	resp := transport.CaptureResponse{LeadID: lead.ID}
	if matches := routing.MatchConsultants(lead, consultants); len(matches) > 0 {
		resp.Assigned = true
		resp.StoreID = matches[0].Consultant.StoreID
	}
	return resp, nil
}

func (s *Service) buildLead(req transport.CaptureLeadRequest) domain.Lead {
	services := s.tax.NormalizeServiceCSV(req.Services)
	regions := s.tax.NormalizeRegionCSV(req.Regions)
	now := time.Now().UTC()

	return domain.Lead{
		ID:               s.leadCode(services, regions),
		Status:           domain.LeadStatusNew,
		Name:             titleCase(req.Name),
		Email:            strings.TrimSpace(strings.ToLower(req.Email)),
		Phone:            phone.NormalizeE164(req.Phone),
		InterestServices: services,
		InterestRegions:  regions,
		AnnualIncome:     strings.TrimSpace(req.AnnualIncome),
		CreatedAt:        now.Format(time.RFC3339),
		CreatedAtUnix:    now.Unix(),
		Notes:            strings.TrimSpace(req.Notes),
	}
}

// leadCode builds the public lead id: PH, the first service and region
// letter codes, and a 4 character base36 suffix.
func (s *Service) leadCode(services, regions string) string {
	serviceCode := taxonomy.UnknownCode
	if tags := domain.SplitTags(services); len(tags) > 0 {
		serviceCode = s.tax.ServiceCode(tags[0])
	}
	regionCode := taxonomy.UnknownCode
	if tags := domain.SplitTags(regions); len(tags) > 0 {
		regionCode = s.tax.RegionCode(tags[0])
	}
	return fmt.Sprintf("PH-%s-%s-%s", serviceCode, regionCode, codeSuffix())
}

func codeSuffix() string {
	id := uuid.New()
	n := binary.BigEndian.Uint32(id[:4])
	suffix := strings.ToUpper(strconv.FormatUint(uint64(n), 36))
	if len(suffix) < 4 {
		suffix = strings.Repeat("0", 4-len(suffix)) + suffix
	}
	return suffix[len(suffix)-4:]
}

func titleCase(name string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(name)))
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func sessionResponse(id string, draft session.Draft) transport.SessionResponse {
	resp := transport.SessionResponse{
		ID:           id,
		Name:         draft.Name,
		Email:        draft.Email,
		Phone:        draft.Phone,
		Services:     draft.Services,
		Regions:      draft.Regions,
		AnnualIncome: draft.AnnualIncome,
		Notes:        draft.Notes,
	}
	if !draft.UpdatedAt.IsZero() {
		resp.UpdatedAt = draft.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}
