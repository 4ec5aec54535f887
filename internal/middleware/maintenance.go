package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-site-api/internal/service"
	"github.com/noah-isme/gema-site-api/internal/utils"
)

var maintenanceExempt = []string{
	"/api/v1/health",
	"/healthz/",
	"/metrics",
	"/auth/",
	"/api/admin/",
	"/api/newsletter/confirm",
	"/api/newsletter/unsubscribe",
}

// Maintenance answers 503 for public routes while maintenance mode is enabled.
func Maintenance(status service.MaintenanceStatus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		state := status.Status()
		if !state.Enabled || isMaintenanceExempt(c.Path()) {
			return c.Next()
		}

		c.Set(fiber.HeaderRetryAfter, "300")
		return utils.SendError(c, fiber.StatusServiceUnavailable, state.Message)
	}
}

func isMaintenanceExempt(path string) bool {
	for _, prefix := range maintenanceExempt {
		if path == strings.TrimSuffix(prefix, "/") || strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
