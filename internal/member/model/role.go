package model

import "fmt"

// Role is a member's position within a circle.
type Role string

// Roles ordered from highest to lowest.
const (
	RoleLeader Role = "leader"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Rank returns the role's position in the hierarchy leader(3) > admin(2) > member(1).
// Unknown roles, including the empty role of a non-member, rank 0.
func (r Role) Rank() int {
	switch r {
	case RoleLeader:
		return 3
	case RoleAdmin:
		return 2
	case RoleMember:
		return 1
	default:
		return 0
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r.Rank() > 0
}

// AtLeast reports whether r satisfies the required role.
// A zero-rank role never satisfies anything.
func (r Role) AtLeast(required Role) bool {
	return r.Valid() && r.Rank() >= required.Rank()
}

// IsAdmin reports whether r belongs in a profile's admin circle list.
func (r Role) IsAdmin() bool {
	return r.AtLeast(RoleAdmin)
}

// ParseRole converts s into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}
