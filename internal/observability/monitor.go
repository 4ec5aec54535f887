package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/noah-isme/gema-site-api/internal/models"
)

type routeTotals struct {
	requests int64
	errors   int64
	latency  time.Duration
}

// Monitor keeps in-process request counters for the monitoring endpoint.
type Monitor struct {
	mu       sync.Mutex
	since    time.Time
	requests int64
	errors   int64
	latency  time.Duration
	statuses map[int]int64
	routes   map[string]*routeTotals
	now      func() time.Time
}

// NewMonitor returns an empty monitor.
func NewMonitor() *Monitor {
	m := &Monitor{now: time.Now}
	m.resetLocked()
	return m
}

// Record adds one completed request. Statuses >= 500 count as errors.
func (m *Monitor) Record(route string, status int, latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests++
	m.latency += latency
	m.statuses[status]++

	totals, ok := m.routes[route]
	if !ok {
		totals = &routeTotals{}
		m.routes[route] = totals
	}
	totals.requests++
	totals.latency += latency

	if status >= 500 {
		m.errors++
		totals.errors++
	}
}

// Snapshot returns a copy of the current counters.
func (m *Monitor) Snapshot() models.MonitoringSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Reset clears the counters and returns the values from before the reset.
func (m *Monitor) Reset() models.MonitoringSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	previous := m.snapshotLocked()
	m.resetLocked()
	return previous
}

func (m *Monitor) snapshotLocked() models.MonitoringSnapshot {
	snapshot := models.MonitoringSnapshot{
		Since:         m.since,
		TotalRequests: m.requests,
		TotalErrors:   m.errors,
		StatusCodes:   make(map[string]int64, len(m.statuses)),
		Routes:        make(map[string]models.RouteStats, len(m.routes)),
	}
	if m.requests > 0 {
		snapshot.ErrorRate = float64(m.errors) / float64(m.requests)
		snapshot.AvgLatencyMs = averageMs(m.latency, m.requests)
	}
	for status, count := range m.statuses {
		snapshot.StatusCodes[strconv.Itoa(status)] = count
	}
	for route, totals := range m.routes {
		snapshot.Routes[route] = models.RouteStats{
			Requests:     totals.requests,
			Errors:       totals.errors,
			AvgLatencyMs: averageMs(totals.latency, totals.requests),
		}
	}
	return snapshot
}

func (m *Monitor) resetLocked() {
	m.since = m.now().UTC()
	m.requests = 0
	m.errors = 0
	m.latency = 0
	m.statuses = map[int]int64{}
	m.routes = map[string]*routeTotals{}
}

func averageMs(total time.Duration, count int64) float64 {
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count) / float64(time.Millisecond)
}
