package routing

import (
	"sort"

	"leadrouter_backend/internal/routing/domain"
)

// MatchConsultants ranks the consultants eligible for a lead. The pipeline
// is: drop inactive profiles, keep service overlaps, keep region overlaps.
// A lead that declares no services (or no regions) passes that filter for
// everyone. The score is the consultant's commission value and the result
// is ordered descending with ties kept in input order, so repeated calls
// on identical input return identical output.
func MatchConsultants(lead domain.Lead, consultants []domain.ConsultantProfile) []domain.MatchResult {
	servicesRequested := lead.RequestedServices()
	regionsRequested := lead.RequestedRegions()

	matches := make([]domain.MatchResult, 0, len(consultants))
	for _, consultant := range consultants {
		if !consultant.Active {
			continue
		}
		if !tagsIntersect(servicesRequested, consultant.Services) {
			continue
		}
		if !tagsIntersect(regionsRequested, consultant.Regions) {
			continue
		}
		matches = append(matches, domain.MatchResult{
			Consultant: consultant,
			Score:      consultant.CommissionValue,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches
}

// tagsIntersect reports whether any requested tag is available. An empty
// request matches everything.
func tagsIntersect(requested, available []string) bool {
	if len(requested) == 0 {
		return true
	}
	for _, want := range requested {
		for _, have := range available {
			if want == have {
				return true
			}
		}
	}
	return false
}
