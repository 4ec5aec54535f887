package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-site-api/internal/dto"
	"github.com/noah-isme/gema-site-api/internal/service"
	"github.com/noah-isme/gema-site-api/internal/utils"
)

// AdminUserHandler exposes the admin allowlist endpoints.
type AdminUserHandler struct {
	service service.AdminUserService
	logger  zerolog.Logger
}

// NewAdminUserHandler constructs the handler.
func NewAdminUserHandler(service service.AdminUserService, logger zerolog.Logger) *AdminUserHandler {
	return &AdminUserHandler{
		service: service,
		logger:  logger.With().Str("component", "admin_user_handler").Logger(),
	}
}

// Register attaches routes.
func (h *AdminUserHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Post("", h.add)
	router.Patch("/:email", h.update)
	router.Delete("/:email", h.remove)
}

func (h *AdminUserHandler) list(c *fiber.Ctx) error {
	users, err := h.service.List(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "failed to list admin users")
	}
	return utils.SendSuccess(c, "admin users retrieved", dto.AdminUserListResponse{Users: users, Total: len(users)})
}

func (h *AdminUserHandler) add(c *fiber.Ctx) error {
	var req dto.AdminUserCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	user, err := h.service.Add(c.UserContext(), principalFromContext(c), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to add admin user")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "admin user added", dto.AdminUserResponse{User: user})
}

func (h *AdminUserHandler) update(c *fiber.Ctx) error {
	var req dto.AdminUserUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	result, err := h.service.Update(c.UserContext(), principalFromContext(c), pathParam(c, "email"), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to update admin user")
	}
	return utils.SendSuccess(c, "admin user updated", result)
}

func (h *AdminUserHandler) remove(c *fiber.Ctx) error {
	user, err := h.service.Remove(c.UserContext(), principalFromContext(c), pathParam(c, "email"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to remove admin user")
	}
	return utils.SendSuccess(c, "admin user removed", dto.AdminUserResponse{User: user})
}
