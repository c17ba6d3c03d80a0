// internal/domain/models/roles.go
package models

import "strings"

// Roles stored on User.Role.
const (
	RoleMember = "MEMBER"
	RoleLeader = "LEADER"
	RoleAdmin  = "ADMIN"
)

// AllRoles lists every assignable role.
var AllRoles = []string{RoleMember, RoleLeader, RoleAdmin}

// IsValidRole reports whether r is exactly one of the stored role values.
func IsValidRole(r string) bool {
	switch r {
	case RoleMember, RoleLeader, RoleAdmin:
		return true
	}
	return false
}

// CanonicalRole upper-cases and trims r. It does not validate.
func CanonicalRole(r string) string {
	return strings.ToUpper(strings.TrimSpace(r))
}
