package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-site-api/pkg/mailer"
)

// EmailSender delivers a single e-mail and returns the provider message id.
type EmailSender interface {
	Send(ctx context.Context, msg mailer.Message) (string, error)
	Name() string
}

// LogEmailSender is used when no provider is configured; it only logs the message.
type LogEmailSender struct {
	logger zerolog.Logger
}

// NewLogEmailSender constructs a logging sender.
func NewLogEmailSender(logger zerolog.Logger) *LogEmailSender {
	return &LogEmailSender{logger: logger.With().Str("component", "log_email_sender").Logger()}
}

// Send logs the message and reports success.
func (l *LogEmailSender) Send(ctx context.Context, msg mailer.Message) (string, error) {
	id := "log-" + uuid.NewString()
	l.logger.Info().
		Str("to", maskEmailAddress(msg.To)).
		Str("subject", msg.Subject).
		Str("message_id", id).
		Msg("email delivered to log")
	return id, nil
}

// Name identifies the sender.
func (l *LogEmailSender) Name() string {
	return "log"
}
