package handler

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-site-api/internal/apperror"
	"github.com/noah-isme/gema-site-api/internal/middleware"
	"github.com/noah-isme/gema-site-api/internal/service"
	"github.com/noah-isme/gema-site-api/internal/utils"
)

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	return strconv.Atoi(value)
}

func pathParam(c *fiber.Ctx, key string) string {
	raw := c.Params(key)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return strings.TrimSpace(decoded)
	}
	return strings.TrimSpace(raw)
}

func principalFromContext(c *fiber.Ctx) service.Principal {
	principal, _ := middleware.PrincipalFromContext(c)
	return principal
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

// respondError maps err onto the response envelope. Server-side failures are logged and
// their cause handed to the error log middleware; the client sees fallback instead.
func respondError(c *fiber.Ctx, logger zerolog.Logger, err error, fallback string) error {
	appErr := apperror.From(err)
	status := appErr.Kind.HTTPStatus()

	switch {
	case status >= fiber.StatusInternalServerError:
		requestLogger(logger, c).Error().Err(err).Msg(fallback)
		middleware.SetErrorCause(c, err)
		message := fallback
		if appErr.Kind == apperror.KindExternalService {
			message = appErr.Message
		}
		return utils.SendError(c, status, message)
	case appErr.Kind == apperror.KindValidation:
		return utils.Fail(c, status, appErr.Message, appErr.Details)
	default:
		return utils.SendError(c, status, appErr.Message)
	}
}

func invalidBody(c *fiber.Ctx) error {
	return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
}
