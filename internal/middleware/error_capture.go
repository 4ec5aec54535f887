package middleware

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-site-api/internal/models"
	"github.com/noah-isme/gema-site-api/internal/service"
)

const errorCauseLocal = "error_cause"

// SetErrorCause remembers the error behind a failed response for ErrorCapture.
func SetErrorCause(c *fiber.Ctx, err error) {
	if c != nil && err != nil {
		c.Locals(errorCauseLocal, err.Error())
	}
}

// ErrorCapture appends every 5xx response to the error log.
func ErrorCapture(reporter service.ErrorReporter, logger zerolog.Logger) fiber.Handler {
	log := logger.With().Str("component", "error_capture").Logger()

	return func(c *fiber.Ctx) error {
		err := c.Next()

		status := c.Response().StatusCode()
		if fiberErr, ok := err.(*fiber.Error); ok {
			status = fiberErr.Code
		}
		if status < fiber.StatusInternalServerError || reporter == nil {
			return err
		}

		message, _ := c.Locals(errorCauseLocal).(string)
		if message == "" && err != nil {
			message = err.Error()
		}
		if message == "" {
			message = "internal server error"
		}

		entry := models.ErrorLogEntry{
			Level:         models.LogLevelError,
			Message:       message,
			Source:        "server",
			Path:          c.Method() + " " + c.Path(),
			Status:        status,
			CorrelationID: GetCorrelationID(c),
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if reportErr := reporter.Report(ctx, entry); reportErr != nil {
			log.Warn().Err(reportErr).Str("correlation_id", entry.CorrelationID).Msg("failed to record error log entry")
		}
		return err
	}
}
