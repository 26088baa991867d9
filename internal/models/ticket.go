package models

import (
	"strings"
	"time"
)

// Canonical ticket statuses. Any other stored value is treated as StatusNew
// on read.
type TicketStatus string

const (
	StatusNew     TicketStatus = "new"
	StatusOpen    TicketStatus = "open"
	StatusPending TicketStatus = "pending"
	StatusClosed  TicketStatus = "closed"
)

// ParseTicketStatus normalizes a stored status string onto the canonical set.
func ParseTicketStatus(s string) (TicketStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "new":
		return StatusNew, true
	case "open":
		return StatusOpen, true
	case "pending":
		return StatusPending, true
	case "closed":
		return StatusClosed, true
	default:
		return StatusNew, false
	}
}

// CanTransition reports whether a status change is allowed:
// new -> open -> pending <-> open -> closed, closed terminal.
// A no-op transition to the current status is always allowed.
func (s TicketStatus) CanTransition(to TicketStatus) bool {
	if s == to {
		return true
	}
	switch s {
	case StatusNew:
		return to == StatusOpen || to == StatusClosed
	case StatusOpen:
		return to == StatusPending || to == StatusClosed
	case StatusPending:
		return to == StatusOpen || to == StatusClosed
	case StatusClosed:
		return false
	default:
		return false
	}
}

// Ticket priorities.
type TicketPriority string

const (
	PriorityLow      TicketPriority = "low"
	PriorityMedium   TicketPriority = "medium"
	PriorityHigh     TicketPriority = "high"
	PriorityCritical TicketPriority = "critical"
)

// ParseTicketPriority normalizes a priority string, falling back to medium.
func ParseTicketPriority(s string) (TicketPriority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return PriorityLow, true
	case "medium":
		return PriorityMedium, true
	case "high":
		return PriorityHigh, true
	case "critical":
		return PriorityCritical, true
	default:
		return PriorityMedium, false
	}
}

// Ticket sources.
const (
	SourceEmail  = "email"
	SourceManual = "manual"
)

// Ticket represents a support request, created either from an inbound email
// or through the API.
type Ticket struct {
	ID             int            `json:"id" db:"id"`
	TicketNumber   string         `json:"ticket_number" db:"ticket_number"`
	Subject        string         `json:"subject" db:"subject"`
	Body           string         `json:"body" db:"body"`
	Status         TicketStatus   `json:"status" db:"status"`
	Priority       TicketPriority `json:"priority" db:"priority"`
	Category       string         `json:"category" db:"category"`
	Source         string         `json:"source" db:"source"`
	MessageID      *string        `json:"message_id,omitempty" db:"message_id"`
	FromEmail      string         `json:"from_email,omitempty" db:"from_email"`
	ToEmail        string         `json:"to_email,omitempty" db:"to_email"`
	CustomerName   *string        `json:"customer_name,omitempty" db:"customer_name"`
	CustomerID     *int           `json:"customer_id,omitempty" db:"customer_id"`
	CustomerEmail  *string        `json:"customer_email,omitempty" db:"customer_email"`
	CustomerPhone  *string        `json:"customer_phone,omitempty" db:"customer_phone"`
	CompanyID      *int           `json:"company_id,omitempty" db:"company_id"`
	AssigneeID     *int           `json:"assignee_id,omitempty" db:"assignee_id"`
	CreatedBy      *int           `json:"created_by,omitempty" db:"created_by"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
	ClosedAt       *time.Time     `json:"closed_at,omitempty" db:"closed_at"`
	ResolutionTime *int           `json:"resolution_time,omitempty" db:"resolution_time"` // whole hours
}

// TicketFilter narrows ticket listings. Zero values mean "no constraint".
// Listing is most-recent-N; there is no cursor or offset.
type TicketFilter struct {
	Status     TicketStatus
	Priority   TicketPriority
	AssigneeID int
	CreatedBy  int
	Limit      int
}

// TicketPatch carries optional field updates for a ticket.
type TicketPatch struct {
	Subject    *string
	Body       *string
	Status     *TicketStatus
	Priority   *TicketPriority
	Category   *string
	AssigneeID *int
	CompanyID  *int
}
