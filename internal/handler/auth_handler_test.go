package handler_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-site-api/internal/dto"
	"github.com/noah-isme/gema-site-api/internal/handler"
	"github.com/noah-isme/gema-site-api/internal/middleware"
	"github.com/noah-isme/gema-site-api/internal/repository"
	"github.com/noah-isme/gema-site-api/internal/service"
	"github.com/noah-isme/gema-site-api/pkg/oauth"
)

type fakeProvider struct {
	identity oauth.Identity
	err      error
	code     string
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (oauth.Identity, error) {
	p.code = code
	return p.identity, p.err
}

func newAuthApp(t *testing.T, provider handler.IdentityProvider) (*fiber.App, service.SessionService) {
	t.Helper()

	logger := zerolog.New(io.Discard)
	users, err := repository.NewAdminUserRepository(t.TempDir())
	require.NoError(t, err)

	sessions := service.NewSessionService("test-secret", time.Hour, "test")
	access := service.NewAccessValidator(users, []string{ownerEmail}, logger)

	app := fiber.New()
	handler.NewAuthHandler(provider, sessions, access, handler.AuthConfig{}, logger).
		Register(app.Group("/auth", middleware.Session(sessions)))
	return app, sessions
}

func cookieValue(resp *http.Response, name string) string {
	for _, cookie := range resp.Cookies() {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

func TestAuthHandler_LoginRedirectsWithState(t *testing.T) {
	app, _ := newAuthApp(t, &fakeProvider{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/auth/google/login", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, resp.StatusCode)

	state := cookieValue(resp, "site_oauth_state")
	require.NotEmpty(t, state)
	require.True(t, strings.HasSuffix(resp.Header.Get("Location"), "state="+state))
}

func TestAuthHandler_CallbackIssuesSession(t *testing.T) {
	provider := &fakeProvider{identity: oauth.Identity{Email: ownerEmail, Name: "Owner"}}
	app, sessions := newAuthApp(t, provider)

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=abc&code=xyz", nil)
	req.Header.Set("Cookie", "site_oauth_state=abc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/admin", resp.Header.Get("Location"))
	require.Equal(t, "xyz", provider.code)

	token := cookieValue(resp, middleware.SessionCookie)
	require.NotEmpty(t, token)

	session, err := sessions.Parse(token)
	require.NoError(t, err)
	require.Equal(t, ownerEmail, session.Email)
	require.Equal(t, "super_admin", session.Role)

	resp, env := doRequest(t, app, http.MethodGet, "/auth/session", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var current dto.SessionResponse
	decodeData(t, env, &current)
	require.Equal(t, ownerEmail, current.Email)
	require.Equal(t, "super_admin", current.Role)
}

func TestAuthHandler_CallbackRejectsStateMismatch(t *testing.T) {
	app, _ := newAuthApp(t, &fakeProvider{identity: oauth.Identity{Email: ownerEmail}})

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=abc&code=xyz", nil)
	req.Header.Set("Cookie", "site_oauth_state=other")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthHandler_CallbackRejectsUnlistedAccount(t *testing.T) {
	app, _ := newAuthApp(t, &fakeProvider{identity: oauth.Identity{Email: "stranger@example.com"}})

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=abc&code=xyz", nil)
	req.Header.Set("Cookie", "site_oauth_state=abc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.Empty(t, cookieValue(resp, middleware.SessionCookie))
}

func TestAuthHandler_ExchangeFailureUnauthorized(t *testing.T) {
	app, _ := newAuthApp(t, &fakeProvider{err: errors.New("bad code")})

	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback?state=abc&code=xyz", nil)
	req.Header.Set("Cookie", "site_oauth_state=abc")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthHandler_NotConfigured(t *testing.T) {
	app, _ := newAuthApp(t, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/auth/google/login", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestAuthHandler_SessionWithoutCookie(t *testing.T) {
	app, _ := newAuthApp(t, &fakeProvider{})

	resp, _ := doRequest(t, app, http.MethodGet, "/auth/session", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
