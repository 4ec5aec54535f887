package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-site-api/internal/config"
	"github.com/noah-isme/gema-site-api/internal/handler"
	"github.com/noah-isme/gema-site-api/internal/middleware"
	"github.com/noah-isme/gema-site-api/internal/observability"
	"github.com/noah-isme/gema-site-api/internal/service"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	Sessions      service.SessionService
	Access        service.AccessValidator
	Maintenance   service.MaintenanceStatus
	ErrorReporter service.ErrorReporter
	Logger        zerolog.Logger

	HealthHandler      *handler.HealthHandler
	AuthHandler        *handler.AuthHandler
	AdminUserHandler   *handler.AdminUserHandler
	AuditLogHandler    *handler.AuditLogHandler
	ErrorLogHandler    *handler.ErrorLogHandler
	ContentHandler     *handler.ContentHandler
	BlogHandler        *handler.BlogHandler
	NewsletterHandler  *handler.NewsletterHandler
	ContributorHandler *handler.ContributorHandler
	OperationsHandler  *handler.OperationsHandler

	// Rate limits; zero values fall back to the defaults below.
	SubscribeLimit int
	CommitLimit    int
}

const (
	defaultSubscribeLimit = 5
	defaultCommitLimit    = 30
)

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	if deps.Maintenance != nil {
		app.Use(middleware.Maintenance(deps.Maintenance))
	}

	app.Get("/metrics", observability.MetricsHandler())
	if deps.HealthHandler != nil {
		deps.HealthHandler.Register(app)
	}

	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(app.Group("/auth", middleware.Session(deps.Sessions)))
	}

	if deps.NewsletterHandler != nil {
		limit := deps.SubscribeLimit
		if limit <= 0 {
			limit = defaultSubscribeLimit
		}
		public := app.Group("/api/newsletter")
		deps.NewsletterHandler.Register(public, middleware.RateLimit("newsletter-subscribe", limit, time.Minute))
	}

	admin := app.Group("/api/admin", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	},
		middleware.ErrorCapture(deps.ErrorReporter, deps.Logger),
		middleware.Session(deps.Sessions),
		middleware.RequireAdmin(deps.Access),
	)

	// Allowlist management; super_admin gating happens per operation.
	if deps.AdminUserHandler != nil {
		deps.AdminUserHandler.Register(admin.Group("/users"))
	}

	if deps.AuditLogHandler != nil {
		deps.AuditLogHandler.Register(admin.Group("/audit-logs"))
	}
	if deps.ErrorLogHandler != nil {
		deps.ErrorLogHandler.Register(admin.Group("/error-logs"))
	}

	if deps.ContentHandler != nil {
		limit := deps.CommitLimit
		if limit <= 0 {
			limit = defaultCommitLimit
		}
		deps.ContentHandler.Register(admin.Group("/content", middleware.RateLimit("content-commit", limit, time.Minute)))
	}
	if deps.BlogHandler != nil {
		deps.BlogHandler.Register(admin)
	}

	if deps.NewsletterHandler != nil {
		deps.NewsletterHandler.RegisterAdmin(admin.Group("/newsletter"))
	}

	if deps.ContributorHandler != nil {
		deps.ContributorHandler.Register(admin.Group("/contributors"))
	}

	if deps.OperationsHandler != nil {
		deps.OperationsHandler.Register(admin)
	}
}
