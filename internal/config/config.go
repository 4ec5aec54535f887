package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName    string
	AppEnv     string
	AppPort    string
	BaseURL    string
	DataDir    string
	ContentDir string
	EnvFile    string

	SessionSecret   string
	SessionTTL      time.Duration
	BootstrapAdmins []string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	GitHubToken  string
	GitHubOwner  string
	GitHubRepo   string
	GitHubBranch string
	GitHubStats  bool

	EmailAPIKey     string
	EmailFrom       string
	EmailRatePerSec int

	RedisURL string
	CacheTTL time.Duration

	DatabaseDriver string
	DatabaseURL    string

	NATSURL          string
	NATSAuditSubject string

	ErrorRetentionDays      int
	PruneSchedule           string
	ContributorSyncSchedule string

	MaintenanceEnabled bool
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// GitHubConfigured reports whether remote content commits can be made.
func (c Config) GitHubConfigured() bool {
	return c.GitHubToken != "" && c.GitHubOwner != "" && c.GitHubRepo != ""
}

// GoogleConfigured reports whether OAuth login is available.
func (c Config) GoogleConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// IsProduction reports whether the service runs in production mode.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("SITE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GEMA Site API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.base_url", "http://localhost:8080")
	v.SetDefault("data.dir", "data")
	v.SetDefault("content.dir", "content")
	v.SetDefault("env.file", ".env.local")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("github.branch", "main")
	v.SetDefault("email.from", "GEMA <newsletter@localhost>")
	v.SetDefault("email.rate_per_sec", 5)
	v.SetDefault("cache.ttl", "2m")
	v.SetDefault("database.driver", "json")
	v.SetDefault("nats.audit_subject", "site.audit")
	v.SetDefault("jobs.error_retention_days", 30)
	v.SetDefault("jobs.prune_schedule", "@daily")

	sessionTTL, err := parseDuration(v.GetString("session.ttl"), 24*time.Hour)
	if err != nil {
		return Config{}, fmt.Errorf("invalid session ttl: %w", err)
	}

	cacheTTL, err := parseDuration(v.GetString("cache.ttl"), 2*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid cache ttl: %w", err)
	}

	cfg := Config{
		AppName:                 v.GetString("app.name"),
		AppEnv:                  v.GetString("app.env"),
		AppPort:                 v.GetString("app.port"),
		BaseURL:                 strings.TrimRight(v.GetString("app.base_url"), "/"),
		DataDir:                 filepath.Clean(v.GetString("data.dir")),
		ContentDir:              filepath.Clean(v.GetString("content.dir")),
		EnvFile:                 v.GetString("env.file"),
		SessionSecret:           v.GetString("session.secret"),
		SessionTTL:              sessionTTL,
		BootstrapAdmins:         splitList(v.GetString("auth.bootstrap_admins")),
		GoogleClientID:          v.GetString("google.client_id"),
		GoogleClientSecret:      v.GetString("google.client_secret"),
		GoogleRedirectURL:       v.GetString("google.redirect_url"),
		GitHubToken:             v.GetString("github.token"),
		GitHubOwner:             v.GetString("github.owner"),
		GitHubRepo:              v.GetString("github.repo"),
		GitHubBranch:            v.GetString("github.branch"),
		GitHubStats:             v.GetBool("github.stats"),
		EmailAPIKey:             v.GetString("email.api_key"),
		EmailFrom:               v.GetString("email.from"),
		EmailRatePerSec:         v.GetInt("email.rate_per_sec"),
		RedisURL:                v.GetString("redis.url"),
		CacheTTL:                cacheTTL,
		DatabaseDriver:          strings.ToLower(v.GetString("database.driver")),
		DatabaseURL:             v.GetString("database.url"),
		NATSURL:                 v.GetString("nats.url"),
		NATSAuditSubject:        v.GetString("nats.audit_subject"),
		ErrorRetentionDays:      v.GetInt("jobs.error_retention_days"),
		PruneSchedule:           v.GetString("jobs.prune_schedule"),
		ContributorSyncSchedule: v.GetString("jobs.contributor_sync_schedule"),
		MaintenanceEnabled:      v.GetBool("maintenance.enabled"),
	}

	if cfg.GoogleRedirectURL == "" {
		cfg.GoogleRedirectURL = cfg.BaseURL + "/auth/google/callback"
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the invariants Load cannot default.
func (c Config) Validate() error {
	if c.SessionSecret == "" {
		return fmt.Errorf("session secret must be provided")
	}

	switch c.DatabaseDriver {
	case "json":
	case "sqlite", "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("database url is required for driver %q", c.DatabaseDriver)
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}

	if c.EmailRatePerSec <= 0 {
		return fmt.Errorf("email rate must be positive")
	}

	return nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}

func splitList(input string) []string {
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.ToLower(strings.TrimSpace(part))
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
