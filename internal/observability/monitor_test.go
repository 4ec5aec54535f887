package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMonitorAggregatesRequests(t *testing.T) {
	monitor := NewMonitor()

	monitor.Record("/api/v1/blog", 200, 10*time.Millisecond)
	monitor.Record("/api/v1/blog", 200, 30*time.Millisecond)
	monitor.Record("/api/admin/users", 500, 20*time.Millisecond)
	monitor.Record("/api/admin/users", 404, 20*time.Millisecond)

	snapshot := monitor.Snapshot()
	require.EqualValues(t, 4, snapshot.TotalRequests)
	require.EqualValues(t, 1, snapshot.TotalErrors)
	require.InDelta(t, 0.25, snapshot.ErrorRate, 0.0001)
	require.InDelta(t, 20.0, snapshot.AvgLatencyMs, 0.0001)
	require.EqualValues(t, 2, snapshot.StatusCodes["200"])
	require.EqualValues(t, 1, snapshot.StatusCodes["500"])

	blog := snapshot.Routes["/api/v1/blog"]
	require.EqualValues(t, 2, blog.Requests)
	require.InDelta(t, 20.0, blog.AvgLatencyMs, 0.0001)
	require.EqualValues(t, 1, snapshot.Routes["/api/admin/users"].Errors)
}

func TestMonitorResetReturnsPreviousSnapshot(t *testing.T) {
	monitor := NewMonitor()
	monitor.Record("/healthz/live", 200, time.Millisecond)

	previous := monitor.Reset()
	require.EqualValues(t, 1, previous.TotalRequests)

	current := monitor.Snapshot()
	require.Zero(t, current.TotalRequests)
	require.Empty(t, current.Routes)
	require.Zero(t, current.ErrorRate)
}
