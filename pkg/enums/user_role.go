package enums

import (
	"fmt"
	"strings"
)

// UserRole maps to the user_role enum in Postgres.
type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleManager UserRole = "manager"
	UserRoleUser    UserRole = "user"
)

var validUserRoles = []UserRole{
	UserRoleAdmin,
	UserRoleManager,
	UserRoleUser,
}

func (r UserRole) String() string {
	return string(r)
}

// IsValid reports whether the role is one of the canonical values.
func (r UserRole) IsValid() bool {
	for _, candidate := range validUserRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanReview reports whether the role may approve, reject or fulfill requests.
func (r UserRole) CanReview() bool {
	return r == UserRoleAdmin || r == UserRoleManager
}

// ParseUserRole converts a raw string into a UserRole.
func ParseUserRole(value string) (UserRole, error) {
	normalized := UserRole(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid user role %q", value)
}
