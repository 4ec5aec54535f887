package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-site-api/internal/repository"
)

func TestSchedulerRegistersJobs(t *testing.T) {
	repo, err := repository.NewJSONErrorLogRepository(t.TempDir())
	require.NoError(t, err)
	errorLogs := NewErrorLogService(repo, nil, testValidator(), testLogger())

	scheduler := NewScheduler(testLogger())
	require.NoError(t, scheduler.AddErrorLogRetention("@daily", errorLogs, 30))
	require.Equal(t, 1, scheduler.Entries())

	require.Error(t, scheduler.AddErrorLogRetention("@daily", errorLogs, 0))
	require.Error(t, scheduler.AddErrorLogRetention("not a schedule", errorLogs, 30))
	require.Equal(t, 1, scheduler.Entries())
}
