package service

import "github.com/noah-isme/gema-site-api/internal/models"

// MonitoringService exposes the request counters collected by the HTTP layer.
type MonitoringService interface {
	Snapshot() models.MonitoringSnapshot
	Reset() models.MonitoringSnapshot
}
