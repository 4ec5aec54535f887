package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-site-api/internal/dto"
	"github.com/noah-isme/gema-site-api/internal/service"
	"github.com/noah-isme/gema-site-api/internal/utils"
)

// ContentHandler commits content changes to the remote repository.
type ContentHandler struct {
	service service.ContentCommitService
	logger  zerolog.Logger
}

// NewContentHandler constructs the handler.
func NewContentHandler(service service.ContentCommitService, logger zerolog.Logger) *ContentHandler {
	return &ContentHandler{
		service: service,
		logger:  logger.With().Str("component", "content_handler").Logger(),
	}
}

// Register attaches routes.
func (h *ContentHandler) Register(router fiber.Router) {
	router.Post("/commit", h.commit)
}

func (h *ContentHandler) commit(c *fiber.Ctx) error {
	var req dto.ContentCommitRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	actor := principalFromContext(c)
	outcome, err := h.service.Commit(c.UserContext(), req, actor.Email)
	if err != nil {
		return respondError(c, h.logger, err, "failed to commit content")
	}

	if !outcome.Success {
		requestLogger(h.logger, c).Warn().
			Str("resource", req.ResourceType).
			Str("action", req.Action).
			Str("kind", outcome.Kind.String()).
			Msg(outcome.Error)
		return c.Status(outcome.Kind.HTTPStatus()).JSON(outcome.ContentCommitResponse)
	}
	return c.Status(fiber.StatusOK).JSON(outcome.ContentCommitResponse)
}

// BlogHandler manages local blog posts and pages.
type BlogHandler struct {
	service service.BlogService
	logger  zerolog.Logger
}

// NewBlogHandler constructs the handler.
func NewBlogHandler(service service.BlogService, logger zerolog.Logger) *BlogHandler {
	return &BlogHandler{
		service: service,
		logger:  logger.With().Str("component", "blog_handler").Logger(),
	}
}

// Register attaches routes.
func (h *BlogHandler) Register(router fiber.Router) {
	router.Get("/blog", h.listPosts)
	router.Post("/blog", h.create)
	router.Get("/pages", h.listPages)
}

func (h *BlogHandler) listPosts(c *fiber.Ctx) error {
	posts, err := h.service.ListPosts(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "failed to list blog posts")
	}
	return utils.SendSuccess(c, "blog posts retrieved", posts)
}

func (h *BlogHandler) listPages(c *fiber.Ctx) error {
	pages, err := h.service.ListPages(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "failed to list pages")
	}
	return utils.SendSuccess(c, "pages retrieved", pages)
}

func (h *BlogHandler) create(c *fiber.Ctx) error {
	var req dto.BlogCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	result, err := h.service.Create(c.UserContext(), req, principalFromContext(c))
	if err != nil {
		return respondError(c, h.logger, err, "failed to create blog post")
	}

	message := "blog post created"
	if result.NewsletterResult != nil && !result.NewsletterResult.Success {
		message = "blog post created; newsletter delivery failed"
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, message, result)
}
