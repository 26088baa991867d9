package models

import "time"

// Session lifetime applied at login. Validation never extends it.
const SessionTTL = 24 * time.Hour

// Session represents a bearer session row. The token is an opaque random
// string; there is no signing or rotation, validity is purely a table lookup
// plus the expiry check.
type Session struct {
	Token      string    `json:"token" db:"token"`
	UserID     int       `json:"user_id" db:"user_id"`
	ExpiresAt  time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	RemoteAddr string    `json:"remote_addr,omitempty" db:"remote_addr"`
	UserAgent  string    `json:"user_agent,omitempty" db:"user_agent"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Identity is the result of validating a session token: who the caller is,
// with the role already normalized.
type Identity struct {
	UserID   int    `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}
