// Package domain holds the canonical lead routing data model. Earlier
// prototypes of this system carried several divergent lead/consultant
// shapes; this package is the single reconciled contract.
package domain

import "strings"

// LeadStatus is the lifecycle state of a lead.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusLost      LeadStatus = "lost"
	LeadStatusClosed    LeadStatus = "closed"
)

// Routing sources recorded on captured and orphaned leads.
const (
	SourceTelegram           = "telegram"
	SourceWebForm            = "web_form"
	SourceOrphanReprocessing = "orphan_reprocessing"
	SourceRedistribution     = "redistribution"
)

// Processed markers on history entries. An assignment entry starts empty;
// a close entry is stamped "FALSE" meaning downstream bookkeeping is still due.
const (
	ProcessedPending          = ""
	ProcessedNeedsBookkeeping = "FALSE"
)

// Lead is the unit of work flowing through the routing engine. Interest
// fields are comma-separated tag lists; use SplitTags for the normalized
// set-of-string view. ID is assigned once at capture and never changes.
type Lead struct {
	ID                      string     `json:"id"`
	Status                  LeadStatus `json:"status"`
	Name                    string     `json:"name"`
	Email                   string     `json:"email"`
	Phone                   string     `json:"phone"`
	InterestServices        string     `json:"interestServices"`
	InterestRegions         string     `json:"interestRegions"`
	AnnualIncome            string     `json:"annualIncome"`
	CreatedAt               string     `json:"createdAt"`
	CreatedAtUnix           int64      `json:"createdAtUnix"`
	Notes                   string     `json:"notes"`
	CloseStatusIdentifiedAt string     `json:"closeStatusIdentifiedAt"`
}

// RequestedServices returns the normalized service tags the lead asked for.
func (l Lead) RequestedServices() []string {
	return SplitTags(l.InterestServices)
}

// RequestedRegions returns the normalized region tags the lead asked for.
func (l Lead) RequestedRegions() []string {
	return SplitTags(l.InterestRegions)
}

// LeadHistoryEntry is a lead plus its processed marker, appended to a
// consultant's history on assignment and close.
type LeadHistoryEntry struct {
	Lead
	Processed string `json:"processed"`
}

// CapturedLeadEntry is the audit record written when a lead is routed.
// MatchingStoreIDs is frozen at capture time; redistribution only advances
// NextStoreIndex through this fixed list and never re-queries eligibility.
type CapturedLeadEntry struct {
	Lead
	Source           string   `json:"source"`
	MatchingStoreIDs []string `json:"matchingStoreIds"`
	NextStoreIndex   int      `json:"nextStoreIndex"`
	SavedInStoreID   string   `json:"savedInStoreId"`
}

// OrphanLeadEntry is a lead waiting in the orphan queue with its provenance.
type OrphanLeadEntry struct {
	Lead
	Source string `json:"source"`
}

// ConsultantProfile is the control-panel materialization of a consultant:
// eligibility gate, willingness sets, ranking key and behavior flags.
// The lead counters are derived and advisory.
type ConsultantProfile struct {
	ID                    string   `json:"id"`
	CompanyName           string   `json:"companyName"`
	ContactName           string   `json:"contactName"`
	ContactEmail          string   `json:"contactEmail"`
	TelegramChatID        string   `json:"telegramChatId"`
	StoreID               string   `json:"storeId"`
	Active                bool     `json:"active"`
	Services              []string `json:"services"`
	Regions               []string `json:"regions"`
	CommissionValue       float64  `json:"commissionValue"`
	NotifyOnClose         bool     `json:"notifyOnClose"`
	RedistributionEnabled bool     `json:"redistributionEnabled"`
	OverwriteAllowed      bool     `json:"overwriteAllowed"`
	TotalLeads            int      `json:"totalLeads"`
	OpenLeads             int      `json:"openLeads"`
	ClosedLeads           int      `json:"closedLeads"`
}

// MatchResult pairs a consultant with its ranking score.
type MatchResult struct {
	Consultant ConsultantProfile `json:"consultant"`
	Score      float64           `json:"score"`
}

// SplitTags turns a comma-separated tag list into its normalized
// set-of-string view: trimmed, case-folded, empties dropped. This is the
// single normalization step applied wherever tags cross a boundary.
func SplitTags(csv string) []string {
	parts := strings.Split(csv, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// JoinTags renders a tag set back to its comma-separated wire form.
func JoinTags(tags []string) string {
	return strings.Join(tags, ",")
}

// NormalizeTagCSV canonicalizes a comma-separated tag list in one pass.
func NormalizeTagCSV(csv string) string {
	return JoinTags(SplitTags(csv))
}
