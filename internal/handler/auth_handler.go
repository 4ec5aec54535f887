package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-site-api/internal/dto"
	"github.com/noah-isme/gema-site-api/internal/middleware"
	"github.com/noah-isme/gema-site-api/internal/service"
	"github.com/noah-isme/gema-site-api/internal/utils"
	"github.com/noah-isme/gema-site-api/pkg/oauth"
)

const oauthStateCookie = "site_oauth_state"

// IdentityProvider runs the OAuth authorization code flow.
type IdentityProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (oauth.Identity, error)
}

// AuthConfig controls cookie and redirect behaviour.
type AuthConfig struct {
	SecureCookies bool
	AfterLogin    string
}

// AuthHandler manages admin sign-in through the identity provider.
type AuthHandler struct {
	provider  IdentityProvider
	sessions  service.SessionService
	validator service.AccessValidator
	cfg       AuthConfig
	logger    zerolog.Logger
}

// NewAuthHandler constructs the handler. provider may be nil when OAuth is not configured.
func NewAuthHandler(provider IdentityProvider, sessions service.SessionService, validator service.AccessValidator, cfg AuthConfig, logger zerolog.Logger) *AuthHandler {
	if cfg.AfterLogin == "" {
		cfg.AfterLogin = "/admin"
	}
	return &AuthHandler{
		provider:  provider,
		sessions:  sessions,
		validator: validator,
		cfg:       cfg,
		logger:    logger.With().Str("component", "auth_handler").Logger(),
	}
}

// Register attaches routes.
func (h *AuthHandler) Register(router fiber.Router) {
	router.Get("/google/login", h.login)
	router.Get("/google/callback", h.callback)
	router.Post("/logout", h.logout)
	router.Get("/session", h.session)
}

func (h *AuthHandler) login(c *fiber.Ctx) error {
	if h.provider == nil {
		return utils.SendError(c, fiber.StatusServiceUnavailable, "sign-in is not configured")
	}

	state, err := randomState()
	if err != nil {
		return respondError(c, h.logger, err, "failed to start sign-in")
	}
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth",
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.Redirect(h.provider.AuthCodeURL(state), fiber.StatusFound)
}

func (h *AuthHandler) callback(c *fiber.Ctx) error {
	if h.provider == nil {
		return utils.SendError(c, fiber.StatusServiceUnavailable, "sign-in is not configured")
	}

	state := c.Query("state")
	expected := c.Cookies(oauthStateCookie)
	c.ClearCookie(oauthStateCookie)
	if state == "" || state != expected {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid oauth state")
	}

	identity, err := h.provider.Exchange(c.UserContext(), c.Query("code"))
	if err != nil {
		requestLogger(h.logger, c).Warn().Err(err).Msg("oauth exchange failed")
		return utils.SendError(c, fiber.StatusUnauthorized, "sign-in failed")
	}

	result := h.validator.Validate(c.UserContext(), &service.Session{Email: identity.Email, Name: identity.Name})
	if !result.IsValid {
		return utils.SendError(c, result.Kind.HTTPStatus(), result.Error)
	}

	token, expiresAt, err := h.sessions.Issue(service.Session{Email: identity.Email, Name: identity.Name, Role: result.Role})
	if err != nil {
		return respondError(c, h.logger, err, "failed to issue session")
	}
	h.setSessionCookie(c, token, expiresAt)

	requestLogger(h.logger, c).Info().Str("role", result.Role).Msg("admin signed in")
	return c.Redirect(h.cfg.AfterLogin, fiber.StatusFound)
}

func (h *AuthHandler) logout(c *fiber.Ctx) error {
	h.setSessionCookie(c, "", time.Unix(0, 0))
	return utils.SendSuccess(c, "signed out", nil)
}

func (h *AuthHandler) session(c *fiber.Ctx) error {
	result := h.validator.Validate(c.UserContext(), middleware.SessionFromContext(c))
	if !result.IsValid {
		return utils.SendError(c, result.Kind.HTTPStatus(), result.Error)
	}
	return utils.SendSuccess(c, "session active", dto.SessionResponse{
		Email:     result.Session.Email,
		Name:      result.Session.Name,
		Role:      result.Role,
		ExpiresAt: result.Session.ExpiresAt,
	})
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func randomState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
