package utils

import (
	"strings"
)

// Roles understood by the platform. Tenancy is per merchant user; admins
// operate across tenants.
const (
	RoleAdmin    = "admin"
	RoleMerchant = "merchant"
)

// ValidateAndNormalizeRole trims and lowercases a role string and reports
// whether the platform accepts it for user accounts.
func ValidateAndNormalizeRole(role string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(role))
	switch normalized {
	case RoleAdmin, RoleMerchant:
		return normalized, true
	}
	return normalized, false
}

// IsValidRole checks if a role is valid without normalizing it
func IsValidRole(role string) bool {
	_, ok := ValidateAndNormalizeRole(role)
	return ok
}
