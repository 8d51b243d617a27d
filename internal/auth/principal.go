package auth

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

// Principal is a verified identity attached to a request after token
// validation. The core only consumes it for authorization decisions.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

// HasRole reports whether the principal's role is in allowedRoles. Pure
// predicate, no side effects.
func HasRole(principal *Principal, allowedRoles ...Role) bool {
	if principal == nil {
		return false
	}

	for _, role := range allowedRoles {
		if principal.Role == role {
			return true
		}
	}

	return false
}
