package dto

import "time"

// DashboardResponse aggregates counts for the admin dashboard.
type DashboardResponse struct {
	Admins               int       `json:"admins"`
	Subscribers          int       `json:"subscribers"`
	ConfirmedSubscribers int       `json:"confirmedSubscribers"`
	Contributors         int       `json:"contributors"`
	BlogPosts            int       `json:"blogPosts"`
	Pages                int       `json:"pages"`
	AuditRecords         int       `json:"auditRecords"`
	RecentErrors         int       `json:"recentErrors"`
	Maintenance          bool      `json:"maintenance"`
	GeneratedAt          time.Time `json:"generatedAt"`
	CacheHit             bool      `json:"cacheHit"`
}

// MaintenanceUpdateRequest toggles maintenance mode.
type MaintenanceUpdateRequest struct {
	Enabled *bool  `json:"enabled" validate:"required"`
	Message string `json:"message" validate:"omitempty,max=500"`
}
