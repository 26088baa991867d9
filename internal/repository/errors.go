package repository

import (
	"errors"
	"strings"
)

// Sentinel errors returned by repositories. Services translate these into
// API error codes; raw driver errors never cross the service boundary.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// isUniqueViolation reports whether a driver error indicates a unique
// constraint conflict. Both lib/pq and go-sqlite3 embed the constraint name
// in the message; matching on it avoids importing driver error types here.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") || // lib/pq
		strings.Contains(msg, "UNIQUE constraint failed") // go-sqlite3
}
