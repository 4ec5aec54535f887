package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-site-api/internal/models"
)

const (
	maintenanceEnvKey  = "MAINTENANCE_MODE"
	maintenanceMarker  = ".maintenance"
	defaultMaintenance = "The site is undergoing maintenance. Please check back soon."
)

// MaintenanceStatus exposes the current maintenance flag.
type MaintenanceStatus interface {
	Status() models.MaintenanceState
}

// MaintenanceService reads and toggles maintenance mode.
type MaintenanceService interface {
	MaintenanceStatus
	Set(ctx context.Context, enabled bool, message string, actor Principal) (models.MaintenanceState, error)
	Watch(ctx context.Context) error
}

type maintenanceService struct {
	envFile    string
	markerPath string
	audit      AuditRecorder
	logger     zerolog.Logger
	now        func() time.Time

	mu    sync.RWMutex
	state models.MaintenanceState
}

// NewMaintenanceService loads the flag from the marker file under dataDir. When the
// marker is absent, MAINTENANCE_MODE in envFile seeds the flag; initial is used only
// when the env file does not carry that key.
func NewMaintenanceService(dataDir, envFile string, initial bool, audit AuditRecorder, logger zerolog.Logger) (MaintenanceService, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	s := &maintenanceService{
		envFile:    envFile,
		markerPath: filepath.Join(dataDir, maintenanceMarker),
		audit:      audit,
		logger:     logger.With().Str("component", "maintenance_service").Logger(),
		now:        time.Now,
	}

	if err := s.reload(); err != nil {
		return nil, err
	}
	seed, ok, err := s.readEnv()
	if err != nil {
		return nil, fmt.Errorf("read env file: %w", err)
	}
	if !ok {
		seed = initial
	}
	if seed && !s.Status().Enabled {
		if err := s.writeMarker(true, defaultMaintenance); err != nil {
			return nil, err
		}
		if err := s.reload(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *maintenanceService) Status() models.MaintenanceState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *maintenanceService) Set(ctx context.Context, enabled bool, message string, actor Principal) (models.MaintenanceState, error) {
	message = strings.TrimSpace(message)
	if enabled && message == "" {
		message = defaultMaintenance
	}

	if err := s.writeEnv(enabled); err != nil {
		return models.MaintenanceState{}, fmt.Errorf("update env file: %w", err)
	}
	if err := s.writeMarker(enabled, message); err != nil {
		return models.MaintenanceState{}, fmt.Errorf("update maintenance marker: %w", err)
	}

	now := s.now().UTC()
	s.mu.Lock()
	previous := s.state.Enabled
	s.state = models.MaintenanceState{Enabled: enabled, UpdatedAt: &now, UpdatedBy: models.NormalizeEmail(actor.Email)}
	if enabled {
		s.state.Message = message
	}
	state := s.state
	s.mu.Unlock()

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Action:      models.AuditMaintenanceToggled,
		ActingAdmin: actor.Email,
		Details:     fmt.Sprintf("Maintenance mode %s", onOff(enabled)),
		Metadata:    map[string]interface{}{"enabled": enabled, "previous": previous},
	})
	s.logger.Info().Bool("enabled", enabled).Msg("maintenance mode updated")
	return state, nil
}

// Watch reloads the flag whenever the marker file changes on disk. It blocks until ctx ends.
func (s *maintenanceService) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.markerPath)); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != s.markerPath {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if err := s.reload(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to reload maintenance marker")
				continue
			}
			s.logger.Info().Bool("enabled", s.Status().Enabled).Msg("maintenance marker changed")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn().Err(err).Msg("maintenance watcher error")
		}
	}
}

func (s *maintenanceService) reload() error {
	data, err := os.ReadFile(s.markerPath)
	state := models.MaintenanceState{}
	switch {
	case err == nil:
		state.Enabled = true
		state.Message = strings.TrimSpace(string(data))
		if state.Message == "" {
			state.Message = defaultMaintenance
		}
		if info, statErr := os.Stat(s.markerPath); statErr == nil {
			modified := info.ModTime().UTC()
			state.UpdatedAt = &modified
		}
	case !errors.Is(err, os.ErrNotExist):
		return err
	}

	s.mu.Lock()
	if state.Enabled == s.state.Enabled && s.state.UpdatedBy != "" {
		state.UpdatedBy = s.state.UpdatedBy
	}
	s.state = state
	s.mu.Unlock()
	return nil
}

func (s *maintenanceService) writeMarker(enabled bool, message string) error {
	if !enabled {
		if err := os.Remove(s.markerPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	tmp := s.markerPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(message+"\n"), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.markerPath)
}

// readEnv reports the persisted MAINTENANCE_MODE value and whether the key is present.
func (s *maintenanceService) readEnv() (bool, bool, error) {
	if s.envFile == "" {
		return false, false, nil
	}
	values, err := godotenv.Read(s.envFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, false, nil
		}
		return false, false, err
	}
	raw, ok := values[maintenanceEnvKey]
	if !ok {
		return false, false, nil
	}
	enabled, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return false, false, fmt.Errorf("invalid %s value %q", maintenanceEnvKey, raw)
	}
	return enabled, true, nil
}

func (s *maintenanceService) writeEnv(enabled bool) error {
	if s.envFile == "" {
		return nil
	}
	values, err := godotenv.Read(s.envFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		values = map[string]string{}
	}
	values[maintenanceEnvKey] = strconv.FormatBool(enabled)
	return godotenv.Write(values, s.envFile)
}

func onOff(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
