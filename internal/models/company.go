package models

import "time"

// Company is an optional grouping entity for users and tickets.
type Company struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Domain       *string   `json:"domain,omitempty" db:"domain"`
	ContactEmail *string   `json:"contact_email,omitempty" db:"contact_email"`
	ContactPhone *string   `json:"contact_phone,omitempty" db:"contact_phone"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
