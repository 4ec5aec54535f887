package models

import (
	"time"

	"gorm.io/datatypes"
)

// Audit actions recorded after administrative mutations.
const (
	AuditUserAdded          = "USER_ADDED"
	AuditUserUpdated        = "USER_UPDATED"
	AuditUserRemoved        = "USER_REMOVED"
	AuditContentCommitted   = "CONTENT_COMMITTED"
	AuditContributorAdded   = "CONTRIBUTOR_ADDED"
	AuditContributorUpdated = "CONTRIBUTOR_UPDATED"
	AuditContributorRemoved = "CONTRIBUTOR_REMOVED"
	AuditMaintenanceToggled = "MAINTENANCE_TOGGLED"
	AuditContentCreated     = "CONTENT_CREATED"
	AuditErrorLogsCleared   = "ERROR_LOGS_CLEARED"
	AuditNewsletterSent     = "NEWSLETTER_SENT"
)

// AuditRecord is an immutable entry describing one administrative mutation.
type AuditRecord struct {
	ID              string            `gorm:"primaryKey;size:36" json:"id"`
	Action          string            `gorm:"size:64;index;not null" json:"action"`
	ActingAdmin     string            `gorm:"size:255;not null" json:"actingAdmin"`
	TargetPrincipal string            `gorm:"size:255" json:"targetPrincipal"`
	Details         string            `gorm:"type:text" json:"details"`
	Timestamp       time.Time         `gorm:"index;not null" json:"timestamp"`
	Metadata        datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	Sequence        int64             `gorm:"index;not null;default:0" json:"-"`
}

// Error log severities.
const (
	LogLevelError = "error"
	LogLevelWarn  = "warn"
	LogLevelInfo  = "info"
)

// ErrorLogEntry captures an application error or notable event.
type ErrorLogEntry struct {
	ID            string            `gorm:"primaryKey;size:36" json:"id"`
	Level         string            `gorm:"size:16;index;not null" json:"level"`
	Message       string            `gorm:"type:text;not null" json:"message"`
	Source        string            `gorm:"size:64" json:"source"`
	Path          string            `gorm:"size:512" json:"path,omitempty"`
	Status        int               `json:"status,omitempty"`
	CorrelationID string            `gorm:"size:64" json:"correlationId,omitempty"`
	Metadata      datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	Timestamp     time.Time         `gorm:"index;not null" json:"timestamp"`
	Sequence      int64             `gorm:"index;not null;default:0" json:"-"`
}
