package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-site-api/internal/dto"
	"github.com/noah-isme/gema-site-api/internal/middleware"
	"github.com/noah-isme/gema-site-api/internal/service"
	"github.com/noah-isme/gema-site-api/internal/utils"
)

// AuditLogHandler serves the audit trail.
type AuditLogHandler struct {
	service service.AuditService
	logger  zerolog.Logger
}

// NewAuditLogHandler constructs the handler.
func NewAuditLogHandler(service service.AuditService, logger zerolog.Logger) *AuditLogHandler {
	return &AuditLogHandler{
		service: service,
		logger:  logger.With().Str("component", "audit_log_handler").Logger(),
	}
}

// Register attaches routes.
func (h *AuditLogHandler) Register(router fiber.Router) {
	router.Get("", h.list)
}

func (h *AuditLogHandler) list(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	page, err := h.service.List(c.UserContext(), dto.AuditLogListRequest{Limit: limit, Offset: offset, Action: c.Query("action")})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list audit logs")
	}
	return utils.SendSuccess(c, "audit logs retrieved", page)
}

// ErrorLogHandler serves and prunes the application error log.
type ErrorLogHandler struct {
	service service.ErrorLogService
	logger  zerolog.Logger
}

// NewErrorLogHandler constructs the handler.
func NewErrorLogHandler(service service.ErrorLogService, logger zerolog.Logger) *ErrorLogHandler {
	return &ErrorLogHandler{
		service: service,
		logger:  logger.With().Str("component", "error_log_handler").Logger(),
	}
}

// Register attaches routes.
func (h *ErrorLogHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Delete("", h.clear)
}

func (h *ErrorLogHandler) list(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	page, err := h.service.List(c.UserContext(), dto.ErrorLogListRequest{Limit: limit, Offset: offset, Level: c.Query("level")})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list error logs")
	}
	return utils.SendSuccess(c, "error logs retrieved", page)
}

func (h *ErrorLogHandler) create(c *fiber.Ctx) error {
	var req dto.ErrorLogCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	entry, err := h.service.Create(c.UserContext(), req, middleware.GetCorrelationID(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to record error log")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "error log recorded", entry)
}

func (h *ErrorLogHandler) clear(c *fiber.Ctx) error {
	if strings.TrimSpace(c.Query("days")) == "" {
		return utils.Fail(c, fiber.StatusBadRequest, "days is required", map[string]interface{}{"days": "required"})
	}
	days, err := parseQueryInt(c, "days")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid days")
	}

	actor := principalFromContext(c)
	result, err := h.service.ClearOlderThan(c.UserContext(), days, actor)
	if err != nil {
		return respondError(c, h.logger, err, "failed to clear error logs")
	}
	requestLogger(h.logger, c).Info().
		Str("actor", actor.Email).
		Int("removed", result.Removed).
		Msg("error logs cleared")
	return utils.SendSuccess(c, "error logs cleared", result)
}
