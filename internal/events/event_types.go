package events

import (
	"time"

	"github.com/spec-kit/npdi-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketEdited        EventType = "ticket_edited"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketCommentAdded  EventType = "ticket_comment_added"
	EventSKUAssigned         EventType = "ticket_sku_assigned"
	EventNPDIInitiated       EventType = "ticket_npdi_initiated"
)

// AllEventTypes lists every event the service emits, for broad subscribers.
func AllEventTypes() []EventType {
	return []EventType{
		EventTicketCreated,
		EventTicketEdited,
		EventTicketStatusChanged,
		EventTicketCommentAdded,
		EventSKUAssigned,
		EventNPDIInitiated,
	}
}

// Actor identifies who triggered an event.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID           string      `json:"id"`
	Type         EventType   `json:"type"`
	TicketID     string      `json:"ticket_id"`
	TicketNumber string      `json:"ticket_number"`
	Actor        Actor       `json:"actor"`
	Timestamp    time.Time   `json:"timestamp"`
	Payload      interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ProductName string                `json:"product_name"`
	SBU         string                `json:"sbu"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
}

// TicketEditedPayload payload.
type TicketEditedPayload struct {
	Changes []string `json:"changes"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	ProductName string              `json:"product_name"`
	SBU         string              `json:"sbu"`
	Priority    domain.TicketPriority `json:"priority"`
	OldStatus   domain.TicketStatus `json:"old_status"`
	NewStatus   domain.TicketStatus `json:"new_status"`
	Reason      string              `json:"reason,omitempty"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	Preview string `json:"preview"`
}

// SKUAssignedPayload payload.
type SKUAssignedPayload struct {
	OldBaseNumber string `json:"old_base_number,omitempty"`
	NewBaseNumber string `json:"new_base_number"`
}

// NPDIInitiatedPayload payload.
type NPDIInitiatedPayload struct {
	TrackingNumber string `json:"tracking_number"`
	OldTicketNumber string `json:"old_ticket_number"`
}
