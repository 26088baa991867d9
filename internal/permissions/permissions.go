// Package permissions maps normalized roles onto capability tags. The table
// is fixed at compile time; there are no per-user overrides.
package permissions

import "github.com/deskhive/deskhive/internal/models"

// Capability tags.
const (
	AdminAccess      = "admin_access"
	TicketManagement = "ticket_management"
	UserManagement   = "user_management"
	SettingsAccess   = "settings_access"
	CustomerAccess   = "customer_access"
)

var roleCapabilities = map[models.Role][]string{
	models.RoleAdmin:    {AdminAccess, TicketManagement, UserManagement, SettingsAccess},
	models.RoleAgent:    {TicketManagement, SettingsAccess},
	models.RoleCustomer: {CustomerAccess, SettingsAccess},
}

// Resolve returns the ordered capability set for a role. Unknown roles
// resolve to an empty set, not an error: callers must treat an empty set as
// fully unauthorized.
func Resolve(role models.Role) []string {
	caps, ok := roleCapabilities[models.ParseRole(string(role))]
	if !ok {
		return []string{}
	}
	out := make([]string, len(caps))
	copy(out, caps)
	return out
}

// Has reports whether the role carries the given capability tag.
func Has(role models.Role, capability string) bool {
	for _, c := range Resolve(role) {
		if c == capability {
			return true
		}
	}
	return false
}
