package domain

import "time"

// HistoryAction is the machine-readable tag of an audit entry.
type HistoryAction string

const (
	ActionTicketCreated HistoryAction = "TICKET_CREATED"
	ActionTicketEdit    HistoryAction = "TICKET_EDIT"
	ActionStatusChange  HistoryAction = "STATUS_CHANGE"
	ActionCommentAdded  HistoryAction = "COMMENT_ADDED"
	ActionSKUAssignment HistoryAction = "SKU_ASSIGNMENT"
	ActionNPDIInitiated HistoryAction = "NPDI_INITIATED"
)

// StatusHistoryEntry is one immutable audit record. Entries are only ever
// appended; ChangedBy is always the actor's stable id with the display name
// denormalized alongside.
type StatusHistoryEntry struct {
	Status        TicketStatus   `bson:"status" json:"status"`
	ChangedBy     string         `bson:"changedBy" json:"changedBy"`
	ChangedByName string         `bson:"changedByName" json:"changedByName"`
	Reason        string         `bson:"reason" json:"reason"`
	Action        HistoryAction  `bson:"action" json:"action"`
	Timestamp     time.Time      `bson:"timestamp" json:"timestamp"`
	Details       map[string]any `bson:"details,omitempty" json:"details,omitempty"`
}

// Comment is one ticket discussion entry.
type Comment struct {
	Author     string    `bson:"author" json:"author"`
	AuthorName string    `bson:"authorName" json:"authorName"`
	Content    string    `bson:"content" json:"content"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}
