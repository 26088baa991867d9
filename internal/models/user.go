package models

import (
	"strings"
	"time"
)

// Role is the closed set of account roles. Stored role strings are parsed
// through ParseRole on read so that downstream code never compares raw
// database values.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleAgent    Role = "agent"
	RoleCustomer Role = "customer"
	RoleUnknown  Role = ""
)

// ParseRole normalizes a stored role string (trim + lowercase) and maps it
// onto the closed Role set. Anything unrecognized parses to RoleUnknown,
// which carries zero capabilities. ParseRole is idempotent.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin
	case "agent":
		return RoleAgent
	case "customer":
		return RoleCustomer
	default:
		return RoleUnknown
	}
}

// Valid reports whether the role is one of the three known values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleAgent || r == RoleCustomer
}

func (r Role) String() string { return string(r) }

// User represents an account record in the users table.
type User struct {
	ID           int        `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FullName     string     `json:"full_name" db:"full_name"`
	Role         Role       `json:"role" db:"role"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CompanyID    *int       `json:"company_id,omitempty" db:"company_id"`
	Department   *string    `json:"department,omitempty" db:"department"`
	JobTitle     *string    `json:"job_title,omitempty" db:"job_title"`
	Phone        *string    `json:"phone,omitempty" db:"phone"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// PublicProfile is the caller-visible slice of a user record. The password
// hash never leaves the repository layer.
type PublicProfile struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}

// Profile returns the public view of the user with the role normalized.
func (u *User) Profile() PublicProfile {
	return PublicProfile{
		ID:       u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     ParseRole(string(u.Role)),
	}
}

// UserPatch carries optional field updates for a user record. Nil fields are
// left untouched. Updates are always issued through parameterized queries
// built from this struct, never from interpolated field lists.
type UserPatch struct {
	Email      *string
	FullName   *string
	Role       *Role
	IsActive   *bool
	CompanyID  *int
	Department *string
	JobTitle   *string
	Phone      *string
	Password   *string // plaintext; hashed by the service before persisting
}
