package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-site-api/internal/dto"
	"github.com/noah-isme/gema-site-api/internal/service"
	"github.com/noah-isme/gema-site-api/internal/utils"
)

// ContributorHandler manages the contributor roster.
type ContributorHandler struct {
	service service.ContributorService
	logger  zerolog.Logger
}

// NewContributorHandler constructs the handler.
func NewContributorHandler(service service.ContributorService, logger zerolog.Logger) *ContributorHandler {
	return &ContributorHandler{
		service: service,
		logger:  logger.With().Str("component", "contributor_handler").Logger(),
	}
}

// Register attaches routes.
func (h *ContributorHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.create)
	router.Post("/sync", h.sync)
	router.Patch("/:id", h.updateRole)
	router.Delete("/:id", h.delete)
}

func (h *ContributorHandler) list(c *fiber.Ctx) error {
	result, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "failed to list contributors")
	}
	return utils.SendSuccess(c, "contributors retrieved", result)
}

func (h *ContributorHandler) create(c *fiber.Ctx) error {
	var req dto.ContributorCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	contributor, err := h.service.Create(c.UserContext(), req, principalFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to create contributor")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "contributor created", fiber.Map{"contributor": contributor})
}

func (h *ContributorHandler) updateRole(c *fiber.Ctx) error {
	var req dto.ContributorRoleUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	contributor, err := h.service.UpdateRole(c.UserContext(), pathParam(c, "id"), req, principalFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to update contributor")
	}
	return utils.SendSuccess(c, "contributor updated", fiber.Map{"contributor": contributor})
}

func (h *ContributorHandler) delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), pathParam(c, "id"), principalFromContext(c)); err != nil {
		return respondError(c, h.logger, err, "failed to delete contributor")
	}
	return utils.SendSuccess(c, "contributor deleted", nil)
}

func (h *ContributorHandler) sync(c *fiber.Ctx) error {
	result, err := h.service.Sync(c.UserContext(), principalFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to sync contributors")
	}
	return utils.SendSuccess(c, "contributors synced", result)
}
