package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-site-api/internal/dto"
	"github.com/noah-isme/gema-site-api/internal/service"
	"github.com/noah-isme/gema-site-api/internal/utils"
)

// OperationsHandler serves the dashboard, diagnostics, monitoring and maintenance endpoints.
type OperationsHandler struct {
	dashboard   service.DashboardService
	diagnostics service.DiagnosticsService
	monitoring  service.MonitoringService
	maintenance service.MaintenanceService
	validator   *validator.Validate
	logger      zerolog.Logger
}

// OperationsServices groups the collaborators of OperationsHandler.
type OperationsServices struct {
	Dashboard   service.DashboardService
	Diagnostics service.DiagnosticsService
	Monitoring  service.MonitoringService
	Maintenance service.MaintenanceService
}

// NewOperationsHandler constructs the handler.
func NewOperationsHandler(services OperationsServices, validate *validator.Validate, logger zerolog.Logger) *OperationsHandler {
	return &OperationsHandler{
		dashboard:   services.Dashboard,
		diagnostics: services.Diagnostics,
		monitoring:  services.Monitoring,
		maintenance: services.Maintenance,
		validator:   validate,
		logger:      logger.With().Str("component", "operations_handler").Logger(),
	}
}

// Register attaches routes.
func (h *OperationsHandler) Register(router fiber.Router) {
	router.Get("/dashboard", h.getDashboard)
	router.Get("/diagnostics", h.getDiagnostics)
	router.Post("/diagnostics/run", h.runDiagnostics)
	router.Get("/monitoring/metrics", h.getMetrics)
	router.Post("/monitoring/metrics/reset", h.resetMetrics)
	router.Get("/maintenance", h.getMaintenance)
	router.Post("/maintenance", h.setMaintenance)
}

func (h *OperationsHandler) getDashboard(c *fiber.Ctx) error {
	summary, err := h.dashboard.Summary(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "failed to load dashboard")
	}
	return utils.SendSuccess(c, "dashboard retrieved", summary)
}

func (h *OperationsHandler) getDiagnostics(c *fiber.Ctx) error {
	report, ok := h.diagnostics.Last()
	if !ok {
		report = h.diagnostics.Run(c.UserContext())
	}
	return utils.SendSuccess(c, "diagnostics retrieved", report)
}

func (h *OperationsHandler) runDiagnostics(c *fiber.Ctx) error {
	report := h.diagnostics.Run(c.UserContext())
	return utils.SendSuccess(c, "diagnostics completed", report)
}

func (h *OperationsHandler) getMetrics(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "metrics retrieved", h.monitoring.Snapshot())
}

func (h *OperationsHandler) resetMetrics(c *fiber.Ctx) error {
	previous := h.monitoring.Reset()
	requestLogger(h.logger, c).Info().
		Str("actor", principalFromContext(c).Email).
		Int64("requests", previous.TotalRequests).
		Msg("monitoring counters reset")
	return utils.SendSuccess(c, "metrics reset", fiber.Map{"previous": previous})
}

func (h *OperationsHandler) getMaintenance(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "maintenance state retrieved", h.maintenance.Status())
}

func (h *OperationsHandler) setMaintenance(c *fiber.Ctx) error {
	var req dto.MaintenanceUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}
	if err := h.validator.Struct(req); err != nil {
		return respondError(c, h.logger, err, "invalid maintenance request")
	}

	state, err := h.maintenance.Set(c.UserContext(), *req.Enabled, req.Message, principalFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to update maintenance mode")
	}
	return utils.SendSuccess(c, "maintenance state updated", state)
}
