package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-site-api/internal/service"
)

// SessionCookie is the cookie carrying the signed admin session.
const SessionCookie = "site_session"

const sessionLocal = "session"

// Session parses the session cookie or bearer token when present. A missing or invalid
// token leaves the request anonymous; access decisions are made by RequireAdmin.
func Session(sessions service.SessionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := sessionToken(c)
		if token == "" {
			return c.Next()
		}

		session, err := sessions.Parse(token)
		if err == nil {
			c.Locals(sessionLocal, session)
		}
		return c.Next()
	}
}

// SessionFromContext returns the parsed session, or nil for anonymous requests.
func SessionFromContext(c *fiber.Ctx) *service.Session {
	if c == nil {
		return nil
	}
	if session, ok := c.Locals(sessionLocal).(*service.Session); ok {
		return session
	}
	return nil
}

func sessionToken(c *fiber.Ctx) string {
	if cookie := strings.TrimSpace(c.Cookies(SessionCookie)); cookie != "" {
		return cookie
	}

	authorization := c.Get(fiber.HeaderAuthorization)
	const bearer = "bearer "
	if len(authorization) > len(bearer) && strings.ToLower(authorization[:len(bearer)]) == bearer {
		return strings.TrimSpace(authorization[len(bearer):])
	}
	return ""
}
