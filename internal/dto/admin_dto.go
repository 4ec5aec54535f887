package dto

import (
	"time"

	"github.com/noah-isme/gema-site-api/internal/models"
)

// OffsetPagination describes a limit/offset page of a collection.
type OffsetPagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// AdminUserCreateRequest adds a principal to the allowlist.
type AdminUserCreateRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
	Role  string `json:"role" validate:"required,oneof=admin super_admin"`
}

// AdminUserUpdateRequest patches a principal.
type AdminUserUpdateRequest struct {
	Role *string `json:"role" validate:"omitempty,oneof=admin super_admin"`
}

// AdminUserResponse wraps a single principal.
type AdminUserResponse struct {
	User models.AdminUser `json:"user"`
}

// AdminUserUpdateResponse reports the role transition of an update.
type AdminUserUpdateResponse struct {
	User         models.AdminUser `json:"user"`
	PreviousRole string           `json:"previousRole"`
	NewRole      string           `json:"newRole"`
}

// AdminUserListResponse lists the allowlist.
type AdminUserListResponse struct {
	Users []models.AdminUser `json:"users"`
	Total int                `json:"total"`
}

// AuditLogListRequest pages through the audit log.
type AuditLogListRequest struct {
	Limit  int
	Offset int
	Action string
}

// AuditLogListResponse is a page of audit records, newest first.
type AuditLogListResponse struct {
	Items      []models.AuditRecord `json:"items"`
	Pagination OffsetPagination     `json:"pagination"`
}

// ErrorLogListRequest pages through the error log.
type ErrorLogListRequest struct {
	Limit  int
	Offset int
	Level  string
}

// ErrorLogListResponse is a page of error log entries, newest first.
type ErrorLogListResponse struct {
	Items      []models.ErrorLogEntry `json:"items"`
	Pagination OffsetPagination       `json:"pagination"`
}

// ErrorLogCreateRequest is a client-side error report.
type ErrorLogCreateRequest struct {
	Level    string                 `json:"level" validate:"omitempty,oneof=error warn info"`
	Message  string                 `json:"message" validate:"required,max=4000"`
	Source   string                 `json:"source" validate:"omitempty,max=64"`
	Path     string                 `json:"path" validate:"omitempty,max=512"`
	Metadata map[string]interface{} `json:"metadata"`
}

// ErrorLogClearResponse reports a retention purge.
type ErrorLogClearResponse struct {
	Removed int       `json:"removed"`
	Cutoff  time.Time `json:"cutoff"`
}

// SessionResponse describes the authenticated admin session.
type SessionResponse struct {
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}
