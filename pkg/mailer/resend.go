// Package mailer delivers transactional and newsletter e-mail through Resend.
package mailer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// Config holds the provider credentials and sender identity.
type Config struct {
	APIKey  string
	From    string
	BaseURL string
}

// Message is a single outbound e-mail.
type Message struct {
	To      string
	Subject string
	HTML    string
	Headers map[string]string
}

// Resend sends e-mail through the Resend API.
type Resend struct {
	client *resend.Client
	from   string
	logger zerolog.Logger
}

// NewResend constructs the sender.
func NewResend(cfg Config, httpClient *http.Client, logger zerolog.Logger) (*Resend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("resend api key must be provided")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("sender address must be provided")
	}

	var client *resend.Client
	if httpClient != nil {
		client = resend.NewCustomClient(httpClient, cfg.APIKey)
	} else {
		client = resend.NewClient(cfg.APIKey)
	}
	if cfg.BaseURL != "" {
		parsed, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid resend base url: %w", err)
		}
		client.BaseURL = parsed
	}

	return &Resend{
		client: client,
		from:   cfg.From,
		logger: logger.With().Str("component", "resend_mailer").Logger(),
	}, nil
}

// Send delivers msg and returns the provider message id.
func (r *Resend) Send(ctx context.Context, msg Message) (string, error) {
	sent, err := r.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    r.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Headers: msg.Headers,
	})
	if err != nil {
		return "", fmt.Errorf("resend send failed: %w", err)
	}
	return sent.Id, nil
}

// Name identifies the provider in logs and diagnostics.
func (r *Resend) Name() string {
	return "resend"
}
