package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-site-api/internal/models"
)

// DiagnosticsConfig describes what the probes should look at.
type DiagnosticsConfig struct {
	DataDir          string
	ContentDir       string
	GitHubConfigured bool
	EmailConfigured  bool
}

// DiagnosticsService runs environment probes and keeps the latest report.
type DiagnosticsService interface {
	Run(ctx context.Context) models.DiagnosticsReport
	Last() (models.DiagnosticsReport, bool)
}

type diagnosticProbe struct {
	name  string
	check func(ctx context.Context) (string, string)
}

type diagnosticsService struct {
	cfg         DiagnosticsConfig
	cache       *redis.Client
	maintenance MaintenanceStatus
	logger      zerolog.Logger
	now         func() time.Time

	mu   sync.RWMutex
	last *models.DiagnosticsReport
}

// NewDiagnosticsService constructs the diagnostics runner.
func NewDiagnosticsService(cfg DiagnosticsConfig, cache *redis.Client, maintenance MaintenanceStatus, logger zerolog.Logger) DiagnosticsService {
	return &diagnosticsService{
		cfg:         cfg,
		cache:       cache,
		maintenance: maintenance,
		logger:      logger.With().Str("component", "diagnostics_service").Logger(),
		now:         time.Now,
	}
}

func (s *diagnosticsService) Run(ctx context.Context) models.DiagnosticsReport {
	probes := []diagnosticProbe{
		{name: "data_dir_writable", check: s.checkDataDir},
		{name: "content_dir_readable", check: s.checkContentDir},
		{name: "github_configured", check: s.checkGitHub},
		{name: "email_configured", check: s.checkEmail},
		{name: "redis", check: s.checkRedis},
		{name: "maintenance", check: s.checkMaintenance},
	}

	report := models.DiagnosticsReport{Status: models.CheckPass, Checks: make([]models.DiagnosticCheck, 0, len(probes))}
	for _, probe := range probes {
		started := time.Now()
		status, message := probe.check(ctx)
		report.Checks = append(report.Checks, models.DiagnosticCheck{
			Name:       probe.name,
			Status:     status,
			Message:    message,
			DurationMs: float64(time.Since(started).Microseconds()) / 1000,
		})
		report.Status = worseStatus(report.Status, status)
	}
	report.GeneratedAt = s.now().UTC()

	s.mu.Lock()
	s.last = &report
	s.mu.Unlock()

	s.logger.Info().Str("status", report.Status).Msg("diagnostics completed")
	return report
}

func (s *diagnosticsService) Last() (models.DiagnosticsReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return models.DiagnosticsReport{}, false
	}
	return *s.last, true
}

func (s *diagnosticsService) checkDataDir(context.Context) (string, string) {
	file, err := os.CreateTemp(s.cfg.DataDir, ".diagnostics-*")
	if err != nil {
		return models.CheckFail, fmt.Sprintf("data directory is not writable: %v", err)
	}
	name := file.Name()
	_ = file.Close()
	_ = os.Remove(name)
	return models.CheckPass, "data directory is writable"
}

func (s *diagnosticsService) checkContentDir(context.Context) (string, string) {
	entries, err := os.ReadDir(s.cfg.ContentDir)
	if err != nil {
		return models.CheckFail, fmt.Sprintf("content directory is not readable: %v", err)
	}
	return models.CheckPass, fmt.Sprintf("content directory has %d entries", len(entries))
}

func (s *diagnosticsService) checkGitHub(context.Context) (string, string) {
	if !s.cfg.GitHubConfigured {
		return models.CheckWarn, "github credentials are not configured; content commits are disabled"
	}
	return models.CheckPass, "github credentials are configured"
}

func (s *diagnosticsService) checkEmail(context.Context) (string, string) {
	if !s.cfg.EmailConfigured {
		return models.CheckWarn, "email provider is not configured; messages are logged only"
	}
	return models.CheckPass, "email provider is configured"
}

func (s *diagnosticsService) checkRedis(ctx context.Context) (string, string) {
	if s.cache == nil {
		return models.CheckWarn, "redis is not configured; caching is disabled"
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.cache.Ping(pingCtx).Err(); err != nil {
		return models.CheckFail, fmt.Sprintf("redis ping failed: %v", err)
	}
	return models.CheckPass, "redis is reachable"
}

func (s *diagnosticsService) checkMaintenance(context.Context) (string, string) {
	if s.maintenance != nil && s.maintenance.Status().Enabled {
		return models.CheckWarn, "maintenance mode is enabled"
	}
	return models.CheckPass, "maintenance mode is disabled"
}

func statusRank(status string) int {
	switch status {
	case models.CheckFail:
		return 2
	case models.CheckWarn:
		return 1
	default:
		return 0
	}
}

func worseStatus(current, next string) string {
	if statusRank(next) > statusRank(current) {
		return next
	}
	return current
}
