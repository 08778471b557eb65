// Package transport defines the consultant roster HTTP contracts.
package transport

// RegisterConsultantRequest creates a consultant. StoreID is optional; when
// absent a store id is generated.
type RegisterConsultantRequest struct {
	CompanyName           string  `json:"companyName" validate:"required,min=2,max=200"`
	ContactName           string  `json:"contactName" validate:"required,min=2,max=120"`
	ContactEmail          string  `json:"contactEmail" validate:"omitempty,email"`
	TelegramChatID        string  `json:"telegramChatId" validate:"omitempty,max=64"`
	StoreID               string  `json:"storeId" validate:"omitempty,max=120"`
	Active                bool    `json:"active"`
	Services              string  `json:"services" validate:"required,max=500"`
	Regions               string  `json:"regions" validate:"required,max=500"`
	CommissionValue       float64 `json:"commissionValue" validate:"gte=0"`
	NotifyOnClose         bool    `json:"notifyOnClose"`
	RedistributionEnabled bool    `json:"redistributionEnabled"`
	OverwriteAllowed      bool    `json:"overwriteAllowed"`
}

// UpdateConsultantRequest patches a consultant. Nil fields keep the stored
// value.
type UpdateConsultantRequest struct {
	CompanyName           *string  `json:"companyName" validate:"omitempty,min=2,max=200"`
	ContactName           *string  `json:"contactName" validate:"omitempty,min=2,max=120"`
	ContactEmail          *string  `json:"contactEmail" validate:"omitempty,email"`
	TelegramChatID        *string  `json:"telegramChatId" validate:"omitempty,max=64"`
	Active                *bool    `json:"active"`
	Services              *string  `json:"services" validate:"omitempty,max=500"`
	Regions               *string  `json:"regions" validate:"omitempty,max=500"`
	CommissionValue       *float64 `json:"commissionValue" validate:"omitempty,gte=0"`
	NotifyOnClose         *bool    `json:"notifyOnClose"`
	RedistributionEnabled *bool    `json:"redistributionEnabled"`
	OverwriteAllowed      *bool    `json:"overwriteAllowed"`
}

// ConsultantResponse is the roster view of a consultant.
type ConsultantResponse struct {
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
