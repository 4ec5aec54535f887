package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/noah-isme/gema-site-api/internal/dto"
	"github.com/noah-isme/gema-site-api/internal/repository"
)

const dashboardCacheKey = "dashboard:summary"

// DashboardSources groups the stores the dashboard counts over.
type DashboardSources struct {
	Admins       repository.AdminUserRepository
	Subscribers  repository.SubscriberRepository
	Contributors repository.ContributorRepository
	Content      repository.ContentRepository
	Audit        repository.AuditLogRepository
	Errors       ErrorCounter
	Maintenance  MaintenanceStatus
}

// DashboardService aggregates counts for the admin dashboard.
type DashboardService interface {
	Summary(ctx context.Context) (dto.DashboardResponse, error)
}

type dashboardService struct {
	sources  DashboardSources
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewDashboardService constructs the dashboard service. A nil cache disables caching.
func NewDashboardService(sources DashboardSources, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) DashboardService {
	return &dashboardService{
		sources:  sources,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "dashboard_service").Logger(),
		now:      time.Now,
	}
}

func (s *dashboardService) Summary(ctx context.Context) (dto.DashboardResponse, error) {
	tracer := otel.Tracer("github.com/noah-isme/gema-site-api/internal/service/dashboard")
	ctx, span := tracer.Start(ctx, "dashboard.aggregate")
	span.SetAttributes(attribute.String("dashboard.cache_key", dashboardCacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, dashboardCacheKey).Result()
		if err == nil {
			var response dto.DashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				if s.sources.Maintenance != nil {
					response.Maintenance = s.sources.Maintenance.Status().Enabled
				}
				span.SetAttributes(attribute.Bool("dashboard.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
			span.RecordError(err)
		}
	}

	summary, err := s.collect(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dashboard_collect_failed")
		return dto.DashboardResponse{}, err
	}

	if s.cache != nil {
		payload, err := json.Marshal(summary)
		if err == nil {
			if err := s.cache.Set(ctx, dashboardCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
				span.RecordError(err)
			}
		}
	}

	return summary, nil
}

func (s *dashboardService) collect(ctx context.Context) (dto.DashboardResponse, error) {
	summary := dto.DashboardResponse{GeneratedAt: s.now().UTC()}

	admins, err := s.sources.Admins.List(ctx)
	if err != nil {
		return summary, err
	}
	summary.Admins = len(admins)

	subscribers, err := s.sources.Subscribers.List(ctx)
	if err != nil {
		return summary, err
	}
	summary.Subscribers = len(subscribers)
	for _, subscriber := range subscribers {
		if subscriber.Confirmed {
			summary.ConfirmedSubscribers++
		}
	}

	contributors, err := s.sources.Contributors.List(ctx)
	if err != nil {
		return summary, err
	}
	summary.Contributors = len(contributors)

	posts, err := s.sources.Content.ListPosts(ctx)
	if err != nil {
		return summary, err
	}
	summary.BlogPosts = len(posts)

	pages, err := s.sources.Content.ListPages(ctx)
	if err != nil {
		return summary, err
	}
	summary.Pages = len(pages)

	_, auditTotal, err := s.sources.Audit.List(ctx, repository.AuditLogFilter{Page: repository.Page{Limit: 1}})
	if err != nil {
		return summary, err
	}
	summary.AuditRecords = auditTotal

	since := summary.GeneratedAt.Add(-24 * time.Hour)
	recentErrors, err := s.sources.Errors.CountSince(ctx, since)
	if err != nil {
		return summary, err
	}
	summary.RecentErrors = recentErrors

	if s.sources.Maintenance != nil {
		summary.Maintenance = s.sources.Maintenance.Status().Enabled
	}
	return summary, nil
}
