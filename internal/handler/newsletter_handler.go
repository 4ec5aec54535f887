package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-site-api/internal/dto"
	"github.com/noah-isme/gema-site-api/internal/service"
	"github.com/noah-isme/gema-site-api/internal/utils"
)

// NewsletterHandler exposes the public subscription flow and the admin newsletter tools.
type NewsletterHandler struct {
	service service.NewsletterService
	logger  zerolog.Logger
}

// NewNewsletterHandler constructs the handler.
func NewNewsletterHandler(service service.NewsletterService, logger zerolog.Logger) *NewsletterHandler {
	return &NewsletterHandler{
		service: service,
		logger:  logger.With().Str("component", "newsletter_handler").Logger(),
	}
}

// Register attaches the public routes. limiter guards the signup endpoint.
func (h *NewsletterHandler) Register(router fiber.Router, limiter fiber.Handler) {
	if limiter != nil {
		router.Post("/subscribe", limiter, h.subscribe)
	} else {
		router.Post("/subscribe", h.subscribe)
	}
	router.Get("/confirm", h.confirm)
	router.Get("/unsubscribe", h.unsubscribe)
	router.Post("/unsubscribe", h.unsubscribe)
}

// RegisterAdmin attaches the admin routes.
func (h *NewsletterHandler) RegisterAdmin(router fiber.Router) {
	router.Get("/subscribers", h.listSubscribers)
	router.Post("/send", h.send)
	router.Get("/delivery-logs", h.listDeliveryLogs)
	router.Post("/delivery-logs", h.recordDelivery)
}

func (h *NewsletterHandler) subscribe(c *fiber.Ctx) error {
	var req dto.NewsletterSubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	result, err := h.service.Subscribe(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to subscribe")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "check your inbox to confirm the subscription", result)
}

func (h *NewsletterHandler) confirm(c *fiber.Ctx) error {
	subscriber, err := h.service.Confirm(c.UserContext(), c.Query("token"))
	if err != nil {
		return respondError(c, h.logger, err, "failed to confirm subscription")
	}
	return utils.SendSuccess(c, "subscription confirmed", fiber.Map{"email": subscriber.Email, "confirmed": subscriber.Confirmed})
}

func (h *NewsletterHandler) unsubscribe(c *fiber.Ctx) error {
	token := c.Query("token")
	if strings.TrimSpace(token) == "" {
		token = c.FormValue("token")
	}

	subscriber, err := h.service.Unsubscribe(c.UserContext(), token)
	if err != nil {
		return respondError(c, h.logger, err, "failed to unsubscribe")
	}
	return utils.SendSuccess(c, "unsubscribed", fiber.Map{"email": subscriber.Email})
}

func (h *NewsletterHandler) listSubscribers(c *fiber.Ctx) error {
	result, err := h.service.ListSubscribers(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, err, "failed to list subscribers")
	}
	return utils.SendSuccess(c, "subscribers retrieved", result)
}

func (h *NewsletterHandler) send(c *fiber.Ctx) error {
	var req dto.NewsletterSendRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	result, err := h.service.SendCampaign(c.UserContext(), service.Campaign{Subject: req.Subject, HTML: req.HTML, Name: req.Campaign, Actor: principalFromContext(c)})
	if err != nil {
		return respondError(c, h.logger, err, "failed to send newsletter")
	}
	requestLogger(h.logger, c).Info().
		Str("actor", principalFromContext(c).Email).
		Int("sent", result.Sent).
		Int("failed", result.Failed).
		Msg("newsletter campaign sent")
	return utils.SendSuccess(c, "newsletter sent", result)
}

func (h *NewsletterHandler) listDeliveryLogs(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid limit")
	}
	offset, err := parseQueryInt(c, "offset")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid offset")
	}

	result, err := h.service.ListDeliveryLogs(c.UserContext(), dto.DeliveryLogListRequest{Limit: limit, Offset: offset, Status: c.Query("status")})
	if err != nil {
		return respondError(c, h.logger, err, "failed to list delivery logs")
	}
	return utils.SendSuccess(c, "delivery logs retrieved", result)
}

func (h *NewsletterHandler) recordDelivery(c *fiber.Ctx) error {
	var req dto.DeliveryLogCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	entry, err := h.service.RecordDeliveryEvent(c.UserContext(), req)
	if err != nil {
		return respondError(c, h.logger, err, "failed to record delivery event")
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "delivery event recorded", entry)
}
