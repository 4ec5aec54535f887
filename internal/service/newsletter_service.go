package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"

	"github.com/noah-isme/gema-site-api/internal/apperror"
	"github.com/noah-isme/gema-site-api/internal/dto"
	"github.com/noah-isme/gema-site-api/internal/models"
	"github.com/noah-isme/gema-site-api/internal/observability"
	"github.com/noah-isme/gema-site-api/internal/repository"
	"github.com/noah-isme/gema-site-api/pkg/mailer"
)

const (
	defaultDeliveryPageSize = 50
	maxDeliveryPageSize     = 500
	confirmationCampaign    = "confirmation"
)

// Campaign is one newsletter send.
type Campaign struct {
	Subject string
	HTML    string
	Name    string
	Actor   Principal
}

// CampaignSender sends a newsletter campaign to confirmed subscribers.
type CampaignSender interface {
	SendCampaign(ctx context.Context, campaign Campaign) (dto.NewsletterSendResponse, error)
}

// NewsletterService manages subscriptions, campaigns and delivery logs.
type NewsletterService interface {
	CampaignSender
	Subscribe(ctx context.Context, req dto.NewsletterSubscribeRequest) (dto.NewsletterSubscribeResponse, error)
	Confirm(ctx context.Context, token string) (models.Subscriber, error)
	Unsubscribe(ctx context.Context, token string) (models.Subscriber, error)
	ListSubscribers(ctx context.Context) (dto.SubscriberListResponse, error)
	ListDeliveryLogs(ctx context.Context, req dto.DeliveryLogListRequest) (dto.DeliveryLogListResponse, error)
	RecordDeliveryEvent(ctx context.Context, req dto.DeliveryLogCreateRequest) (models.EmailDeliveryLog, error)
}

// NewsletterConfig configures links and throttling.
type NewsletterConfig struct {
	BaseURL    string
	SiteName   string
	RatePerSec int
}

type newsletterService struct {
	subscribers repository.SubscriberRepository
	logs        repository.EmailLogRepository
	sender      EmailSender
	audit       AuditRecorder
	limiter     *rate.Limiter
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	strict      *bluemonday.Policy
	cfg         NewsletterConfig
	logger      zerolog.Logger
	now         func() time.Time
}

// NewNewsletterService constructs the newsletter service.
func NewNewsletterService(subscribers repository.SubscriberRepository, logs repository.EmailLogRepository, sender EmailSender, audit AuditRecorder, validate *validator.Validate, cfg NewsletterConfig, logger zerolog.Logger) NewsletterService {
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 5
	}
	if cfg.SiteName == "" {
		cfg.SiteName = "Newsletter"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &newsletterService{
		subscribers: subscribers,
		logs:        logs,
		sender:      sender,
		audit:       audit,
		limiter:     rate.NewLimiter(rate.Limit(rps), rps),
		validator:   validate,
		sanitizer:   bluemonday.UGCPolicy(),
		strict:      bluemonday.StrictPolicy(),
		cfg:         cfg,
		logger:      logger.With().Str("component", "newsletter_service").Logger(),
		now:         time.Now,
	}
}

func (s *newsletterService) Subscribe(ctx context.Context, req dto.NewsletterSubscribeRequest) (dto.NewsletterSubscribeResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.NewsletterSubscribeResponse{}, err
	}

	email := models.NormalizeEmail(req.Email)
	existing, err := s.subscribers.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.Confirmed {
			return dto.NewsletterSubscribeResponse{}, ErrAlreadySubscribed
		}
		sent := s.sendConfirmation(ctx, existing)
		return dto.NewsletterSubscribeResponse{Email: existing.Email, Confirmed: false, ConfirmationSent: sent}, nil
	case !errors.Is(err, repository.ErrNotFound):
		return dto.NewsletterSubscribeResponse{}, err
	}

	subscriber := models.Subscriber{
		Email:            email,
		Name:             strings.TrimSpace(s.strict.Sanitize(req.Name)),
		SubscribedAt:     s.now().UTC(),
		Confirmed:        false,
		Tags:             sanitizeTags(req.Tags),
		UnsubscribeToken: uuid.NewString(),
	}
	if err := s.subscribers.Create(ctx, subscriber); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return dto.NewsletterSubscribeResponse{}, ErrAlreadySubscribed
		}
		return dto.NewsletterSubscribeResponse{}, err
	}

	s.logger.Info().Str("email", maskEmailAddress(email)).Msg("newsletter subscription created")
	sent := s.sendConfirmation(ctx, subscriber)
	return dto.NewsletterSubscribeResponse{Email: email, Confirmed: false, ConfirmationSent: sent}, nil
}

func (s *newsletterService) Confirm(ctx context.Context, token string) (models.Subscriber, error) {
	subscriber, err := s.subscribers.UpdateByToken(ctx, strings.TrimSpace(token), func(sub *models.Subscriber) error {
		if sub.Confirmed {
			return nil
		}
		now := s.now().UTC()
		sub.Confirmed = true
		sub.ConfirmedAt = &now
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Subscriber{}, ErrSubscriberNotFound
		}
		return models.Subscriber{}, err
	}
	return subscriber, nil
}

func (s *newsletterService) Unsubscribe(ctx context.Context, token string) (models.Subscriber, error) {
	removed, err := s.subscribers.DeleteByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Subscriber{}, ErrSubscriberNotFound
		}
		return models.Subscriber{}, err
	}
	s.logger.Info().Str("email", maskEmailAddress(removed.Email)).Msg("newsletter subscription removed")
	return removed, nil
}

func (s *newsletterService) ListSubscribers(ctx context.Context) (dto.SubscriberListResponse, error) {
	items, err := s.subscribers.List(ctx)
	if err != nil {
		return dto.SubscriberListResponse{}, err
	}
	confirmed := 0
	for _, item := range items {
		if item.Confirmed {
			confirmed++
		}
	}
	return dto.SubscriberListResponse{Subscribers: items, Total: len(items), Confirmed: confirmed}, nil
}

// SendCampaign mails every confirmed subscriber, one at a time under the rate limiter.
// Individual failures are counted and logged; the returned error is reserved for
// failures that stop the campaign.
func (s *newsletterService) SendCampaign(ctx context.Context, campaign Campaign) (dto.NewsletterSendResponse, error) {
	subject := strings.TrimSpace(campaign.Subject)
	if subject == "" || strings.TrimSpace(campaign.HTML) == "" {
		return dto.NewsletterSendResponse{}, apperror.Validation("subject and html are required", map[string]interface{}{"subject": "required", "html": "required"})
	}
	name := strings.TrimSpace(campaign.Name)
	if name == "" {
		name = slugify(subject)
	}

	tracer := otel.Tracer("github.com/noah-isme/gema-site-api/internal/service/newsletter")
	ctx, span := tracer.Start(ctx, "newsletter.campaign")
	span.SetAttributes(attribute.String("newsletter.campaign", name))
	defer span.End()

	subscribers, err := s.subscribers.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list_subscribers_failed")
		return dto.NewsletterSendResponse{}, err
	}

	body := s.sanitizer.Sanitize(campaign.HTML)
	result := dto.NewsletterSendResponse{}
	deliveries := make([]models.EmailDeliveryLog, 0, len(subscribers))
	var sendErr error

	for _, subscriber := range subscribers {
		if !subscriber.Confirmed {
			continue
		}
		result.Total++

		if err := s.limiter.Wait(ctx); err != nil {
			sendErr = fmt.Errorf("campaign interrupted: %w", err)
			result.Failed++
			break
		}

		msg := mailer.Message{
			To:      subscriber.Email,
			Subject: subject,
			HTML:    body + s.unsubscribeFooter(subscriber.UnsubscribeToken),
			Headers: map[string]string{"List-Unsubscribe": "<" + s.unsubscribeURL(subscriber.UnsubscribeToken) + ">"},
		}
		deliveries = append(deliveries, s.deliver(ctx, msg, name, &result))
	}

	if sendErr != nil {
		// recipients never attempted count as failed
		remaining := 0
		for _, subscriber := range subscribers {
			if subscriber.Confirmed {
				remaining++
			}
		}
		result.Failed += remaining - result.Total
		result.Total = remaining
	}

	if err := s.logs.Append(ctx, deliveries...); err != nil {
		s.logger.Warn().Err(err).Msg("failed to persist delivery logs")
	}

	span.SetAttributes(attribute.Int("newsletter.sent", result.Sent), attribute.Int("newsletter.failed", result.Failed))
	if sendErr != nil {
		span.RecordError(sendErr)
		span.SetStatus(codes.Error, "campaign_interrupted")
		return result, sendErr
	}
	if result.Failed > 0 {
		span.SetStatus(codes.Error, "partial_failure")
	}

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Action:      models.AuditNewsletterSent,
		ActingAdmin: campaign.Actor.Email,
		Details:     fmt.Sprintf("Sent newsletter campaign %s", name),
		Metadata:    map[string]interface{}{"campaign": name, "subject": subject, "sent": result.Sent, "failed": result.Failed},
	})
	s.logger.Info().Str("campaign", name).Int("sent", result.Sent).Int("failed", result.Failed).Msg("newsletter campaign finished")
	return result, nil
}

func (s *newsletterService) deliver(ctx context.Context, msg mailer.Message, campaign string, result *dto.NewsletterSendResponse) models.EmailDeliveryLog {
	entry := models.EmailDeliveryLog{
		ID:        uuid.NewString(),
		Email:     msg.To,
		Subject:   msg.Subject,
		Campaign:  campaign,
		Timestamp: s.now().UTC(),
	}

	providerID, err := s.sender.Send(ctx, msg)
	if err != nil {
		result.Failed++
		entry.Status = models.DeliveryFailed
		entry.Error = err.Error()
		observability.NewsletterEmails().WithLabelValues("campaign", models.DeliveryFailed).Inc()
		s.logger.Warn().Err(err).Str("email", maskEmailAddress(msg.To)).Msg("newsletter delivery failed")
		return entry
	}

	result.Sent++
	entry.Status = models.DeliverySent
	entry.ProviderID = providerID
	observability.NewsletterEmails().WithLabelValues("campaign", models.DeliverySent).Inc()
	return entry
}

func (s *newsletterService) sendConfirmation(ctx context.Context, subscriber models.Subscriber) bool {
	confirmURL := s.cfg.BaseURL + "/api/newsletter/confirm?token=" + url.QueryEscape(subscriber.UnsubscribeToken)
	msg := mailer.Message{
		To:      subscriber.Email,
		Subject: "Confirm your subscription to " + s.cfg.SiteName,
		HTML: fmt.Sprintf(`<p>Please confirm your subscription to %s.</p><p><a href="%s">Confirm subscription</a></p>`,
			html.EscapeString(s.cfg.SiteName), html.EscapeString(confirmURL)),
	}

	entry := models.EmailDeliveryLog{
		ID:        uuid.NewString(),
		Email:     subscriber.Email,
		Subject:   msg.Subject,
		Campaign:  confirmationCampaign,
		Timestamp: s.now().UTC(),
	}
	providerID, err := s.sender.Send(ctx, msg)
	if err != nil {
		entry.Status = models.DeliveryFailed
		entry.Error = err.Error()
		s.logger.Warn().Err(err).Str("email", maskEmailAddress(subscriber.Email)).Msg("confirmation email failed")
	} else {
		entry.Status = models.DeliverySent
		entry.ProviderID = providerID
	}
	observability.NewsletterEmails().WithLabelValues(confirmationCampaign, entry.Status).Inc()

	if appendErr := s.logs.Append(ctx, entry); appendErr != nil {
		s.logger.Warn().Err(appendErr).Msg("failed to persist delivery log")
	}
	return err == nil
}

func (s *newsletterService) ListDeliveryLogs(ctx context.Context, req dto.DeliveryLogListRequest) (dto.DeliveryLogListResponse, error) {
	limit := clampLimit(req.Limit, defaultDeliveryPageSize, maxDeliveryPageSize)
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}
	items, total, err := s.logs.List(ctx, repository.DeliveryLogFilter{
		Page:   repository.Page{Limit: limit, Offset: offset},
		Status: strings.ToLower(strings.TrimSpace(req.Status)),
	})
	if err != nil {
		return dto.DeliveryLogListResponse{}, err
	}
	if items == nil {
		items = []models.EmailDeliveryLog{}
	}
	return dto.DeliveryLogListResponse{
		Items:      items,
		Pagination: dto.OffsetPagination{Limit: limit, Offset: offset, Total: total},
	}, nil
}

func (s *newsletterService) RecordDeliveryEvent(ctx context.Context, req dto.DeliveryLogCreateRequest) (models.EmailDeliveryLog, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.EmailDeliveryLog{}, err
	}
	entry := models.EmailDeliveryLog{
		ID:         uuid.NewString(),
		Email:      models.NormalizeEmail(req.Email),
		Subject:    strings.TrimSpace(req.Subject),
		Campaign:   strings.TrimSpace(req.Campaign),
		Status:     req.Status,
		ProviderID: strings.TrimSpace(req.ProviderID),
		Error:      strings.TrimSpace(req.Error),
		Timestamp:  s.now().UTC(),
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		return models.EmailDeliveryLog{}, err
	}
	return entry, nil
}

func (s *newsletterService) unsubscribeURL(token string) string {
	return s.cfg.BaseURL + "/api/newsletter/unsubscribe?token=" + url.QueryEscape(token)
}

func (s *newsletterService) unsubscribeFooter(token string) string {
	return fmt.Sprintf(`<hr><p style="font-size:12px;color:#666">You are receiving this because you subscribed to %s. <a href="%s">Unsubscribe</a></p>`,
		html.EscapeString(s.cfg.SiteName), html.EscapeString(s.unsubscribeURL(token)))
}
