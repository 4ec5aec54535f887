package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-site-api/internal/models"
	"github.com/noah-isme/gema-site-api/internal/observability"
)

type fixedMaintenance struct {
	state models.MaintenanceState
}

func (f fixedMaintenance) Status() models.MaintenanceState {
	return f.state
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func TestCorrelationIDPropagates(t *testing.T) {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		if GetCorrelationID(c) != CorrelationIDFromContext(c.UserContext()) {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(GetCorrelationID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(CorrelationHeader, "abc-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "abc-123", resp.Header.Get(CorrelationHeader))
	require.Equal(t, "abc-123", readBody(t, resp))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.NotEmpty(t, resp.Header.Get(CorrelationHeader))
}

func TestMaintenanceBlocksPublicRoutes(t *testing.T) {
	app := fiber.New()
	app.Use(Maintenance(fixedMaintenance{state: models.MaintenanceState{Enabled: true, Message: "Back soon"}}))
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }
	app.Post("/api/newsletter/subscribe", ok)
	app.Get("/api/newsletter/confirm", ok)
	app.Get("/healthz/live", ok)
	app.Get("/api/v1/health", ok)
	app.Get("/api/admin/maintenance", ok)
	app.Get("/auth/session", ok)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/newsletter/subscribe", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	require.Contains(t, readBody(t, resp), "Back soon")

	for _, path := range []string{"/api/newsletter/confirm", "/healthz/live", "/api/v1/health", "/api/admin/maintenance", "/auth/session"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, path)
	}
}

func TestMaintenanceDisabledPassesThrough(t *testing.T) {
	app := fiber.New()
	app.Use(Maintenance(fixedMaintenance{}))
	app.Post("/api/newsletter/subscribe", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusCreated) })

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/newsletter/subscribe", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
}

func TestObservabilityFeedsMonitor(t *testing.T) {
	monitor := observability.NewMonitor()
	app := fiber.New()
	app.Use(Observability(zerolog.Nop(), monitor))
	app.Get("/api/admin/users", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/boom", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusInternalServerError) })

	for _, path := range []string{"/api/admin/users", "/api/admin/users", "/boom"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil))
		require.NoError(t, err)
		resp.Body.Close()
	}

	snapshot := monitor.Snapshot()
	require.EqualValues(t, 3, snapshot.TotalRequests)
	require.EqualValues(t, 1, snapshot.TotalErrors)
	require.EqualValues(t, 2, snapshot.Routes["/api/admin/users"].Requests)
}

func TestRateLimitRejectsBurst(t *testing.T) {
	app := fiber.New()
	app.Post("/subscribe", RateLimit("newsletter", 2, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/subscribe", nil))
		require.NoError(t, err)
		statuses = append(statuses, resp.StatusCode)
	}
	require.Equal(t, []int{fiber.StatusOK, fiber.StatusOK, fiber.StatusTooManyRequests}, statuses)
}

type captureReporter struct {
	entries []models.ErrorLogEntry
}

func (r *captureReporter) Report(ctx context.Context, entry models.ErrorLogEntry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func TestErrorCaptureRecordsServerErrors(t *testing.T) {
	reporter := &captureReporter{}
	app := fiber.New()
	app.Use(CorrelationID())
	app.Use(ErrorCapture(reporter, zerolog.Nop()))
	app.Get("/fail", func(c *fiber.Ctx) error {
		SetErrorCause(c, errors.New("disk full"))
		return c.SendStatus(fiber.StatusInternalServerError)
	})
	app.Get("/missing", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	req.Header.Set(CorrelationHeader, "corr-9")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	require.Len(t, reporter.entries, 1)
	entry := reporter.entries[0]
	require.Equal(t, "disk full", entry.Message)
	require.Equal(t, "GET /fail", entry.Path)
	require.Equal(t, fiber.StatusInternalServerError, entry.Status)
	require.Equal(t, "corr-9", entry.CorrelationID)
}
