// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"pipeline_board_backend/platform/events"

	"github.com/google/uuid"
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

// RefreshOrigin tags who triggered a board refresh. A board ignores its own
// self-tagged trigger inside the suppression window; external triggers always
// refetch.
type RefreshOrigin string

const (
	RefreshOriginSelf     RefreshOrigin = "self"
	RefreshOriginExternal RefreshOrigin = "external"
)

// =============================================================================
// Board Domain Events
// =============================================================================

// BoardRefreshRequested asks the board for an organization to reload its lead
// list. Reason is free text for logging ("organization_switch", "manual",
// "external_write", "sla_sweep", "move_lead").
type BoardRefreshRequested struct {
	BaseEvent
	OrganizationID uuid.UUID     `json:"organizationId"`
	Origin         RefreshOrigin `json:"origin"`
	Reason         string        `json:"reason"`
}

func (e BoardRefreshRequested) EventName() string { return "board.refresh.requested" }

// LeadStatusChanged is published after a lead's status was persisted.
type LeadStatusChanged struct {
	BaseEvent
	OrganizationID uuid.UUID     `json:"organizationId"`
	LeadID         uuid.UUID     `json:"leadId"`
	OldStatusID    uuid.UUID     `json:"oldStatusId"`
	NewStatusID    uuid.UUID     `json:"newStatusId"`
	Origin         RefreshOrigin `json:"origin"`
}

func (e LeadStatusChanged) EventName() string { return "leads.status.changed" }

// LeadContactRecorded is published when a contact event is logged on a lead.
type LeadContactRecorded struct {
	BaseEvent
	OrganizationID uuid.UUID `json:"organizationId"`
	LeadID         uuid.UUID `json:"leadId"`
	ContactedAt    time.Time `json:"contactedAt"`
}

func (e LeadContactRecorded) EventName() string { return "leads.contact.recorded" }

// LeadSLABreached is published by the SLA sweep when a lead crosses into
// overdue or critical.
type LeadSLABreached struct {
	BaseEvent
	OrganizationID uuid.UUID `json:"organizationId"`
	LeadID         uuid.UUID `json:"leadId"`
	TimelineStatus string    `json:"timelineStatus"`
	UrgencyLevel   int       `json:"urgencyLevel"`
}

func (e LeadSLABreached) EventName() string { return "leads.sla.breached" }

// =============================================================================
// Status Catalog Events
// =============================================================================

// StatusCatalogReordered is published after a status list order was persisted.
type StatusCatalogReordered struct {
	BaseEvent
	OrganizationID uuid.UUID   `json:"organizationId"`
	ListKind       string      `json:"listKind"` // "lead_status" or "call_status"
	OrderedIDs     []uuid.UUID `json:"orderedIds"`
}

func (e StatusCatalogReordered) EventName() string { return "catalog.statuses.reordered" }

// CallStatusLinked is published after a call status was mapped to a lead status.
type CallStatusLinked struct {
	BaseEvent
	OrganizationID uuid.UUID `json:"organizationId"`
	CallStatusID   uuid.UUID `json:"callStatusId"`
	LeadStatusID   uuid.UUID `json:"leadStatusId"`
	Priority       int       `json:"priority"`
}

func (e CallStatusLinked) EventName() string { return "catalog.callstatus.linked" }
