package handler

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/gema-site-api/internal/config"
	"github.com/noah-isme/gema-site-api/internal/utils"
)

// HealthResponse represents the payload returned by the health endpoint.
type HealthResponse struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Service     string    `json:"service"`
	Environment string    `json:"environment"`
}

// HealthHandler serves the health and probe endpoints.
type HealthHandler struct {
	cfg   config.Config
	cache *redis.Client
}

// NewHealthHandler constructs the handler. cache may be nil.
func NewHealthHandler(cfg config.Config, cache *redis.Client) *HealthHandler {
	return &HealthHandler{cfg: cfg, cache: cache}
}

// Register attaches routes to the application root.
func (h *HealthHandler) Register(app fiber.Router) {
	app.Get("/api/v1/health", h.health)
	app.Get("/healthz/live", h.live)
	app.Get("/healthz/ready", h.ready)
}

func (h *HealthHandler) health(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "service healthy", HealthResponse{
		Status:      "ok",
		Timestamp:   time.Now().UTC(),
		Service:     h.cfg.AppName,
		Environment: h.cfg.AppEnv,
	})
}

func (h *HealthHandler) live(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusOK)
}

func (h *HealthHandler) ready(c *fiber.Ctx) error {
	if _, err := os.ReadDir(h.cfg.DataDir); err != nil {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}
	if h.cache != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.cache.Ping(ctx).Err(); err != nil {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}
	}
	return c.SendStatus(fiber.StatusOK)
}
