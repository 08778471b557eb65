package routing

import (
	"testing"

	"leadrouter_backend/internal/routing/domain"
)

const (
	fmtExpectedMatches = "expected %d matches, got %d"
	fmtExpectedStore   = "expected store %q at position %d, got %q"
)

func legalLisbonLead() domain.Lead {
	return domain.Lead{
		ID:               "PH-L-L-TEST",
		Status:           domain.LeadStatusNew,
		InterestServices: "legal",
		InterestRegions:  "lisboa",
	}
}

func rosterFixture() []domain.ConsultantProfile {
	return []domain.ConsultantProfile{
		{ID: "A", StoreID: "store-a", Active: true, Services: []string{"legal"}, Regions: []string{"lisboa", "porto"}, CommissionValue: 10},
		{ID: "B", StoreID: "store-b", Active: true, Services: []string{"legal", "tax"}, Regions: []string{"lisboa"}, CommissionValue: 20},
	}
}

func TestMatchConsultantsRanksByCommissionDescending(t *testing.T) {
	matches := MatchConsultants(legalLisbonLead(), rosterFixture())

	if len(matches) != 2 {
		t.Fatalf(fmtExpectedMatches, 2, len(matches))
	}
	if matches[0].Consultant.ID != "B" || matches[0].Score != 20 {
		t.Fatalf("expected B(20) first, got %s(%v)", matches[0].Consultant.ID, matches[0].Score)
	}
	if matches[1].Consultant.ID != "A" || matches[1].Score != 10 {
		t.Fatalf("expected A(10) second, got %s(%v)", matches[1].Consultant.ID, matches[1].Score)
	}
}

func TestMatchConsultantsDropsInactiveRegardlessOfOverlap(t *testing.T) {
	roster := rosterFixture()
	roster[1].Active = false

	matches := MatchConsultants(legalLisbonLead(), roster)

	if len(matches) != 1 {
		t.Fatalf(fmtExpectedMatches, 1, len(matches))
	}
	if matches[0].Consultant.ID != "A" {
		t.Fatalf("expected only A to match, got %s", matches[0].Consultant.ID)
	}
}

func TestMatchConsultantsRequiresServiceOverlap(t *testing.T) {
	lead := legalLisbonLead()
	lead.InterestServices = "mortgage"

	matches := MatchConsultants(lead, rosterFixture())

	if len(matches) != 0 {
		t.Fatalf(fmtExpectedMatches, 0, len(matches))
	}
}

func TestMatchConsultantsEmptyServicesPassesAll(t *testing.T) {
	lead := legalLisbonLead()
	lead.InterestServices = ""

	matches := MatchConsultants(lead, rosterFixture())

	if len(matches) != 2 {
		t.Fatalf(fmtExpectedMatches, 2, len(matches))
	}
}

func TestMatchConsultantsEmptyRegionsPassesAll(t *testing.T) {
	lead := legalLisbonLead()
	lead.InterestRegions = "  , "

	matches := MatchConsultants(lead, rosterFixture())

	if len(matches) != 2 {
		t.Fatalf(fmtExpectedMatches, 2, len(matches))
	}
}

func TestMatchConsultantsNormalizesLeadTags(t *testing.T) {
	lead := legalLisbonLead()
	lead.InterestServices = " Legal "
	lead.InterestRegions = "LISBOA"

	matches := MatchConsultants(lead, rosterFixture())

	if len(matches) != 2 {
		t.Fatalf(fmtExpectedMatches, 2, len(matches))
	}
}

func TestMatchConsultantsStableOrderOnEqualScores(t *testing.T) {
	roster := []domain.ConsultantProfile{
		{ID: "first", StoreID: "store-1", Active: true, Services: []string{"legal"}, Regions: []string{"lisboa"}, CommissionValue: 15},
		{ID: "second", StoreID: "store-2", Active: true, Services: []string{"legal"}, Regions: []string{"lisboa"}, CommissionValue: 15},
		{ID: "third", StoreID: "store-3", Active: true, Services: []string{"legal"}, Regions: []string{"lisboa"}, CommissionValue: 15},
	}

	matches := MatchConsultants(legalLisbonLead(), roster)

	if len(matches) != 3 {
		t.Fatalf(fmtExpectedMatches, 3, len(matches))
	}
	for i, want := range []string{"store-1", "store-2", "store-3"} {
		if matches[i].Consultant.StoreID != want {
			t.Fatalf(fmtExpectedStore, want, i, matches[i].Consultant.StoreID)
		}
	}
}

func TestMatchConsultantsDeterministicAcrossCalls(t *testing.T) {
	lead := legalLisbonLead()
	roster := rosterFixture()

	first := MatchConsultants(lead, roster)
	second := MatchConsultants(lead, roster)

	if len(first) != len(second) {
		t.Fatalf("expected identical result length, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Consultant.ID != second[i].Consultant.ID || first[i].Score != second[i].Score {
			t.Fatalf("results diverge at %d: %s(%v) vs %s(%v)",
				i, first[i].Consultant.ID, first[i].Score, second[i].Consultant.ID, second[i].Score)
		}
	}
}
