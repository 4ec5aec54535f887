package models

import "time"

// MaintenanceState describes the maintenance flag.
type MaintenanceState struct {
	Enabled   bool       `json:"enabled"`
	Message   string     `json:"message,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
	UpdatedBy string     `json:"updatedBy,omitempty"`
}

// Diagnostic check statuses, ordered by severity.
const (
	CheckPass = "pass"
	CheckWarn = "warn"
	CheckFail = "fail"
)

// DiagnosticCheck is the outcome of a single diagnostic probe.
type DiagnosticCheck struct {
	Name       string  `json:"name"`
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	DurationMs float64 `json:"durationMs"`
}

// DiagnosticsReport groups the checks from one run.
type DiagnosticsReport struct {
	Status      string            `json:"status"`
	Checks      []DiagnosticCheck `json:"checks"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

// RouteStats aggregates requests for a single route.
type RouteStats struct {
	Requests     int64   `json:"requests"`
	Errors       int64   `json:"errors"`
	AvgLatencyMs float64 `json:"avgLatencyMs"`
}

// MonitoringSnapshot is the in-process request metrics view.
type MonitoringSnapshot struct {
	Since         time.Time             `json:"since"`
	TotalRequests int64                 `json:"totalRequests"`
	TotalErrors   int64                 `json:"totalErrors"`
	ErrorRate     float64               `json:"errorRate"`
	AvgLatencyMs  float64               `json:"avgLatencyMs"`
	StatusCodes   map[string]int64      `json:"statusCodes"`
	Routes        map[string]RouteStats `json:"routes"`
}
