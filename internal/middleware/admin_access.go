package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-site-api/internal/service"
	"github.com/noah-isme/gema-site-api/internal/utils"
)

const principalLocal = "admin_principal"

// RequireAdmin admits only sessions whose e-mail is on the allowlist. The principal,
// carrying the current allowlist role, is stored for downstream handlers.
func RequireAdmin(validator service.AccessValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result := validator.Validate(c.UserContext(), SessionFromContext(c))
		if !result.IsValid {
			status := result.Kind.HTTPStatus()
			if status >= fiber.StatusInternalServerError {
				SetErrorCause(c, errors.New(result.Error))
			}
			return utils.SendError(c, status, result.Error)
		}

		c.Locals(principalLocal, service.Principal{
			Email: result.Session.Email,
			Name:  result.Session.Name,
			Role:  result.Role,
		})
		return c.Next()
	}
}

// RequireSuperAdmin must run after RequireAdmin.
func RequireSuperAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
		}
		if !principal.IsSuperAdmin() {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

// PrincipalFromContext returns the admin admitted by RequireAdmin.
func PrincipalFromContext(c *fiber.Ctx) (service.Principal, bool) {
	if c == nil {
		return service.Principal{}, false
	}
	principal, ok := c.Locals(principalLocal).(service.Principal)
	return principal, ok
}
