package models

import "time"

// ActivityEntry is an append-only audit record. Entries are never mutated or
// deleted in normal operation. ActorID is nil for system actions.
type ActivityEntry struct {
	ID           int64     `json:"id" db:"id"`
	ActorID      *int      `json:"actor_id,omitempty" db:"actor_id"`
	Action       string    `json:"action" db:"action"`
	ResourceType string    `json:"resource_type" db:"resource_type"`
	ResourceID   string    `json:"resource_id,omitempty" db:"resource_id"`
	Details      string    `json:"details,omitempty" db:"details"` // JSON payload
	RemoteAddr   string    `json:"remote_addr,omitempty" db:"remote_addr"`
	RequestID    string    `json:"request_id,omitempty" db:"request_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Common audit action names.
const (
	ActionLogin         = "login"
	ActionLoginFailed   = "login_failed"
	ActionLogout        = "logout"
	ActionUserCreated   = "user_created"
	ActionUserUpdated   = "user_updated"
	ActionUserDeleted   = "user_deleted"
	ActionTicketCreated = "ticket_created"
	ActionTicketUpdated = "ticket_updated"
	ActionTicketClosed  = "ticket_closed"
	ActionMailIngested  = "mail_ingested"
)
