// Package transport defines the admin routing HTTP contracts.
package transport

// CloseLeadRequest marks a lead's terminal status. Defaults to "closed".
type CloseLeadRequest struct {
	Status string `json:"status" validate:"omitempty,oneof=closed lost"`
}

// OverwriteLeadRequest carries edited lead fields to re-sync into the
// assigned consultant's store. Nil fields keep the recorded value.
type OverwriteLeadRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=120"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Phone        *string `json:"phone" validate:"omitempty,min=6,max=32"`
	Services     *string `json:"services" validate:"omitempty,max=500"`
	Regions      *string `json:"regions" validate:"omitempty,max=500"`
	AnnualIncome *string `json:"annualIncome" validate:"omitempty,max=120"`
	Notes        *string `json:"notes" validate:"omitempty,max=2000"`
	Status       *string `json:"status" validate:"omitempty,oneof=new contacted lost closed"`
}

// RedistributeResponse reports where a redistributed lead landed.
type RedistributeResponse struct {
	LeadID   string `json:"leadId"`
	Orphaned bool   `json:"orphaned"`
	StoreID  string `json:"storeId,omitempty"`
}

// OrphanResponse is one entry of the orphan queue.
type OrphanResponse struct {
	LeadID           string `json:"leadId"`
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	InterestServices string `json:"interestServices"`
	InterestRegions  string `json:"interestRegions"`
	Source           string `json:"source"`
	CreatedAt        string `json:"createdAt"`
}

// ReprocessResponse summarizes one orphan reprocessing sweep.
type ReprocessResponse struct {
	Reassigned int `json:"reassigned"`
	Remaining  int `json:"remaining"`
}
