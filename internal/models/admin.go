package models

import (
	"strings"
	"time"
)

// Admin roles accepted by the allowlist.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// AdminUser is a principal granted access to the admin API.
type AdminUser struct {
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	AddedBy   string     `json:"addedBy"`
	AddedAt   time.Time  `json:"addedAt"`
	UpdatedBy string     `json:"updatedBy,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// AdminConfig is the persisted layout of admin-config.json.
type AdminConfig struct {
	Users []AdminUser `json:"users"`
}

// IsValidAdminRole reports whether role is one of the enumerated admin roles.
func IsValidAdminRole(role string) bool {
	switch role {
	case RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// NormalizeEmail lower-cases and trims an e-mail address used as a principal key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
