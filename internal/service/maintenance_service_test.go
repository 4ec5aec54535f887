package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-site-api/internal/models"
)

func TestMaintenanceServiceToggle(t *testing.T) {
	dataDir := t.TempDir()
	envFile := filepath.Join(t.TempDir(), ".env.local")
	require.NoError(t, os.WriteFile(envFile, []byte("SITE_APP_NAME=demo\n"), 0o644))
	audit := &memoryAuditRecorder{}

	svc, err := NewMaintenanceService(dataDir, envFile, false, audit, testLogger())
	require.NoError(t, err)
	require.False(t, svc.Status().Enabled)

	state, err := svc.Set(context.Background(), true, "", superAdmin)
	require.NoError(t, err)
	require.True(t, state.Enabled)
	require.Equal(t, defaultMaintenance, state.Message)
	require.Equal(t, "owner@example.com", state.UpdatedBy)

	marker, err := os.ReadFile(filepath.Join(dataDir, maintenanceMarker))
	require.NoError(t, err)
	require.Contains(t, string(marker), defaultMaintenance)

	values, err := godotenv.Read(envFile)
	require.NoError(t, err)
	require.Equal(t, "true", values[maintenanceEnvKey])
	require.Equal(t, "demo", values["SITE_APP_NAME"])

	state, err = svc.Set(context.Background(), false, "ignored", superAdmin)
	require.NoError(t, err)
	require.False(t, state.Enabled)
	require.Empty(t, state.Message)

	_, err = os.Stat(filepath.Join(dataDir, maintenanceMarker))
	require.True(t, os.IsNotExist(err))

	require.Equal(t, 2, audit.count())
	require.Equal(t, models.AuditMaintenanceToggled, audit.entries[0].Action)
	require.Equal(t, true, audit.entries[1].Metadata["previous"])
}

func TestMaintenanceServiceInitialFlagAndExistingMarker(t *testing.T) {
	dataDir := t.TempDir()

	svc, err := NewMaintenanceService(dataDir, "", true, nil, testLogger())
	require.NoError(t, err)
	require.True(t, svc.Status().Enabled)

	require.NoError(t, os.WriteFile(filepath.Join(dataDir, maintenanceMarker), []byte("Back at noon\n"), 0o644))
	reloaded, err := NewMaintenanceService(dataDir, "", false, nil, testLogger())
	require.NoError(t, err)
	require.True(t, reloaded.Status().Enabled)
	require.Equal(t, "Back at noon", reloaded.Status().Message)
}

func TestMaintenanceServiceWatchPicksUpMarker(t *testing.T) {
	dataDir := t.TempDir()
	svc, err := NewMaintenanceService(dataDir, "", false, nil, testLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- svc.Watch(ctx) }()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(dataDir, maintenanceMarker), []byte("Deploying\n"), 0o644)
		return svc.Status().Message == "Deploying"
	}, 2*time.Second, 50*time.Millisecond)
	require.True(t, svc.Status().Enabled)

	cancel()
	require.NoError(t, <-done)
}

func TestMaintenanceServiceDisableSurvivesRestart(t *testing.T) {
	dataDir := t.TempDir()
	envFile := filepath.Join(t.TempDir(), ".env.local")

	svc, err := NewMaintenanceService(dataDir, envFile, true, nil, testLogger())
	require.NoError(t, err)
	require.True(t, svc.Status().Enabled)

	_, err = svc.Set(context.Background(), false, "", superAdmin)
	require.NoError(t, err)

	restarted, err := NewMaintenanceService(dataDir, envFile, true, nil, testLogger())
	require.NoError(t, err)
	require.False(t, restarted.Status().Enabled)

	_, err = os.Stat(filepath.Join(dataDir, maintenanceMarker))
	require.True(t, os.IsNotExist(err))
}

func TestMaintenanceServiceSeedsFromEnvFile(t *testing.T) {
	dataDir := t.TempDir()
	envFile := filepath.Join(t.TempDir(), ".env.local")
	require.NoError(t, os.WriteFile(envFile, []byte("MAINTENANCE_MODE=true\n"), 0o644))

	svc, err := NewMaintenanceService(dataDir, envFile, false, nil, testLogger())
	require.NoError(t, err)
	require.True(t, svc.Status().Enabled)
	require.Equal(t, defaultMaintenance, svc.Status().Message)
}

func TestMaintenanceServiceRejectsInvalidEnvValue(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env.local")
	require.NoError(t, os.WriteFile(envFile, []byte("MAINTENANCE_MODE=sometimes\n"), 0o644))

	_, err := NewMaintenanceService(t.TempDir(), envFile, false, nil, testLogger())
	require.Error(t, err)
}
