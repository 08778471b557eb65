// Package transport defines the intake HTTP contracts.
package transport

// PatchSessionRequest updates an intake draft. Nil fields keep the stored
// value.
type PatchSessionRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=120"`
	Email        *string `json:"email" validate:"omitempty,email"`
	Phone        *string `json:"phone" validate:"omitempty,min=6,max=32"`
	Services     *string `json:"services" validate:"omitempty,max=500"`
	Regions      *string `json:"regions" validate:"omitempty,max=500"`
	AnnualIncome *string `json:"annualIncome" validate:"omitempty,max=120"`
	Notes        *string `json:"notes" validate:"omitempty,max=2000"`
}

// CaptureLeadRequest submits a complete lead in one call.
type CaptureLeadRequest struct {
	Name         string `json:"name" validate:"required,min=2,max=120"`
	Email        string `json:"email" validate:"omitempty,email"`
	Phone        string `json:"phone" validate:"required,min=6,max=32"`
	Services     string `json:"services" validate:"required,max=500"`
	Regions      string `json:"regions" validate:"required,max=500"`
	AnnualIncome string `json:"annualIncome" validate:"omitempty,max=120"`
	Notes        string `json:"notes" validate:"omitempty,max=2000"`
}

// SessionResponse is the current state of an intake draft.
type SessionResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Services     string `json:"services"`
	Regions      string `json:"regions"`
	AnnualIncome string `json:"annualIncome"`
	Notes        string `json:"notes"`
	UpdatedAt    string `json:"updatedAt"`
}

// CaptureResponse reports where a captured lead landed. Assigned is false
// when the lead went to the orphan queue.
type CaptureResponse struct {
	LeadID   string `json:"leadId"`
	Assigned bool   `json:"assigned"`
	StoreID  string `json:"storeId,omitempty"`
}
