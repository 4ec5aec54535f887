package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-site-api/internal/middleware"
	"github.com/noah-isme/gema-site-api/internal/repository"
	"github.com/noah-isme/gema-site-api/internal/service"
)

const ownerEmail = "owner@example.com"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details"`
}

// adminHarness is an app whose /api/admin group runs the real session chain.
type adminHarness struct {
	app      *fiber.App
	admin    fiber.Router
	sessions service.SessionService
	users    repository.AdminUserRepository
	auditLog repository.AuditLogRepository
	audit    service.AuditService
	validate *validator.Validate
	logger   zerolog.Logger
	dataDir  string
}

func newAdminHarness(t *testing.T) *adminHarness {
	t.Helper()

	dataDir := t.TempDir()
	logger := zerolog.New(io.Discard)

	users, err := repository.NewAdminUserRepository(dataDir)
	require.NoError(t, err)
	auditRepo, err := repository.NewJSONAuditLogRepository(dataDir)
	require.NoError(t, err)

	sessions := service.NewSessionService("test-secret", time.Hour, "test")
	access := service.NewAccessValidator(users, []string{ownerEmail}, logger)

	app := fiber.New()
	admin := app.Group("/api/admin", middleware.Session(sessions), middleware.RequireAdmin(access))

	return &adminHarness{
		app:      app,
		admin:    admin,
		sessions: sessions,
		users:    users,
		auditLog: auditRepo,
		audit:    service.NewAuditService(auditRepo, nil, "", logger),
		validate: validator.New(),
		logger:   logger,
		dataDir:  dataDir,
	}
}

func (h *adminHarness) token(t *testing.T, email string) string {
	t.Helper()
	token, _, err := h.sessions.Issue(service.Session{Email: email, Name: "Test"})
	require.NoError(t, err)
	return token
}

func (h *adminHarness) do(t *testing.T, method, path, token string, payload interface{}) (*http.Response, envelope) {
	t.Helper()
	return doRequest(t, h.app, method, path, token, payload)
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, payload interface{}) (*http.Response, envelope) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp, decoded
}

func decodeData(t *testing.T, env envelope, target interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(env.Data, target))
}
