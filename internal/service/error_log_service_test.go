package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-site-api/internal/apperror"
	"github.com/noah-isme/gema-site-api/internal/dto"
	"github.com/noah-isme/gema-site-api/internal/models"
	"github.com/noah-isme/gema-site-api/internal/repository"
)

func setupErrorLogService(t *testing.T) (*errorLogService, repository.ErrorLogRepository, *memoryAuditRecorder) {
	t.Helper()
	repo, err := repository.NewJSONErrorLogRepository(t.TempDir())
	require.NoError(t, err)
	audit := &memoryAuditRecorder{}
	return NewErrorLogService(repo, audit, testValidator(), testLogger()).(*errorLogService), repo, audit
}

func TestErrorLogServiceCreateDefaults(t *testing.T) {
	svc, _, _ := setupErrorLogService(t)

	entry, err := svc.Create(context.Background(), dto.ErrorLogCreateRequest{
		Message:  " Hydration failed ",
		Metadata: map[string]interface{}{"sessionToken": "abc", "component": "Navbar"},
	}, "corr-1")
	require.NoError(t, err)
	require.Equal(t, models.LogLevelError, entry.Level)
	require.Equal(t, "client", entry.Source)
	require.Equal(t, "Hydration failed", entry.Message)
	require.Equal(t, "corr-1", entry.CorrelationID)
	require.Equal(t, "***", entry.Metadata["sessionToken"])
	require.Equal(t, "Navbar", entry.Metadata["component"])
}

func TestErrorLogServiceCreateValidates(t *testing.T) {
	svc, _, _ := setupErrorLogService(t)

	_, err := svc.Create(context.Background(), dto.ErrorLogCreateRequest{Level: "fatal", Message: "x"}, "")
	require.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.Create(context.Background(), dto.ErrorLogCreateRequest{}, "")
	require.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestErrorLogServiceListFiltersByLevel(t *testing.T) {
	svc, _, _ := setupErrorLogService(t)
	ctx := context.Background()

	require.NoError(t, svc.Report(ctx, models.ErrorLogEntry{Message: "boom", Source: "server"}))
	require.NoError(t, svc.Report(ctx, models.ErrorLogEntry{Level: models.LogLevelWarn, Message: "slow", Source: "server"}))

	page, err := svc.List(ctx, dto.ErrorLogListRequest{Level: " WARN "})
	require.NoError(t, err)
	require.Equal(t, 1, page.Pagination.Total)
	require.Equal(t, "slow", page.Items[0].Message)

	page, err = svc.List(ctx, dto.ErrorLogListRequest{Limit: 9999})
	require.NoError(t, err)
	require.Equal(t, 500, page.Pagination.Limit)
	require.Len(t, page.Items, 2)
}

func TestErrorLogServiceClearOlderThan(t *testing.T) {
	svc, repo, audit := setupErrorLogService(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	require.NoError(t, repo.Append(ctx, models.ErrorLogEntry{ID: "old", Level: models.LogLevelError, Message: "old", Timestamp: now.AddDate(0, 0, -40)}))
	require.NoError(t, repo.Append(ctx, models.ErrorLogEntry{ID: "recent", Level: models.LogLevelError, Message: "recent", Timestamp: now.AddDate(0, 0, -2)}))
	require.NoError(t, repo.Append(ctx, models.ErrorLogEntry{ID: "fresh", Level: models.LogLevelError, Message: "fresh", Timestamp: now}))

	_, err := svc.ClearOlderThan(ctx, -1, superAdmin)
	require.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	require.Zero(t, audit.count())

	result, err := svc.ClearOlderThan(ctx, 30, superAdmin)
	require.NoError(t, err)
	require.Equal(t, 1, result.Removed)
	require.Equal(t, 1, audit.count())
	require.Equal(t, models.AuditErrorLogsCleared, audit.entries[0].Action)
	require.Equal(t, superAdmin.Email, audit.entries[0].ActingAdmin)
	require.Equal(t, 1, audit.entries[0].Metadata["removed"])

	count, err := svc.CountSince(ctx, now.AddDate(0, 0, -7))
	require.NoError(t, err)
	require.Equal(t, 2, count)

	result, err = svc.ClearOlderThan(ctx, 0, superAdmin)
	require.NoError(t, err)
	require.Equal(t, 2, result.Removed)
	require.Equal(t, 2, audit.count())

	page, err := svc.List(ctx, dto.ErrorLogListRequest{})
	require.NoError(t, err)
	require.Empty(t, page.Items)
}
