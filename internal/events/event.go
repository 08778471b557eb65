// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadrouter_backend/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Routing Domain Events
// =============================================================================

// LeadCaptured is published when a new lead is assigned to a consultant store.
type LeadCaptured struct {
	BaseEvent
	LeadID          string  `json:"leadId"`
	StoreID         string  `json:"storeId"`
	Source          string  `json:"source"`
	CommissionValue float64 `json:"commissionValue"`
}

func (e LeadCaptured) EventName() string { return "routing.lead.captured" }

// LeadOrphaned is published when a lead had no eligible consultant and
// entered the orphan queue.
type LeadOrphaned struct {
	BaseEvent
	LeadID string `json:"leadId"`
	Source string `json:"source"`
}

func (e LeadOrphaned) EventName() string { return "routing.lead.orphaned" }

// LeadRedistributed is published when a captured lead moved to the next
// candidate in its frozen match list.
type LeadRedistributed struct {
	BaseEvent
	LeadID         string `json:"leadId"`
	ToStoreID      string `json:"toStoreId"`
	NextStoreIndex int    `json:"nextStoreIndex"`
}

func (e LeadRedistributed) EventName() string { return "routing.lead.redistributed" }

// LeadClosed is published when a lead's routing lifecycle terminates.
type LeadClosed struct {
	BaseEvent
	LeadID  string `json:"leadId"`
	StoreID string `json:"storeId"`
	Status  string `json:"status"`
}

func (e LeadClosed) EventName() string { return "routing.lead.closed" }

// ClosedLeadDeleted is published when the deletion watcher finds that a
// closed lead vanished from a consultant's live list.
type ClosedLeadDeleted struct {
	BaseEvent
	LeadID       string `json:"leadId"`
	ConsultantID string `json:"consultantId"`
	StoreID      string `json:"storeId"`
}

func (e ClosedLeadDeleted) EventName() string { return "roster.closed_lead.deleted" }
