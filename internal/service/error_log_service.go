package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-site-api/internal/apperror"
	"github.com/noah-isme/gema-site-api/internal/dto"
	"github.com/noah-isme/gema-site-api/internal/models"
	"github.com/noah-isme/gema-site-api/internal/repository"
)

const (
	defaultErrorPageSize = 50
	maxErrorPageSize     = 500
)

// ErrorReporter appends application errors to the error log.
type ErrorReporter interface {
	Report(ctx context.Context, entry models.ErrorLogEntry) error
}

// ErrorCounter counts error log entries recorded since a point in time.
type ErrorCounter interface {
	CountSince(ctx context.Context, since time.Time) (int, error)
}

// ErrorLogService records, lists and prunes application error logs.
type ErrorLogService interface {
	ErrorReporter
	ErrorCounter
	List(ctx context.Context, req dto.ErrorLogListRequest) (dto.ErrorLogListResponse, error)
	Create(ctx context.Context, req dto.ErrorLogCreateRequest, correlationID string) (models.ErrorLogEntry, error)
	ClearOlderThan(ctx context.Context, days int, actor Principal) (dto.ErrorLogClearResponse, error)
}

type errorLogService struct {
	repo      repository.ErrorLogRepository
	audit     AuditRecorder
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewErrorLogService constructs the error log service.
func NewErrorLogService(repo repository.ErrorLogRepository, audit AuditRecorder, validate *validator.Validate, logger zerolog.Logger) ErrorLogService {
	return &errorLogService{
		repo:      repo,
		audit:     audit,
		validator: validate,
		logger:    logger.With().Str("component", "error_log_service").Logger(),
		now:       time.Now,
	}
}

func (s *errorLogService) Report(ctx context.Context, entry models.ErrorLogEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now().UTC()
	}
	if entry.Level == "" {
		entry.Level = models.LogLevelError
	}
	entry.Metadata = sanitizeMetadata(entry.Metadata)
	return s.repo.Append(ctx, entry)
}

func (s *errorLogService) Create(ctx context.Context, req dto.ErrorLogCreateRequest, correlationID string) (models.ErrorLogEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.ErrorLogEntry{}, err
	}

	source := strings.TrimSpace(req.Source)
	if source == "" {
		source = "client"
	}
	level := req.Level
	if level == "" {
		level = models.LogLevelError
	}
	entry := models.ErrorLogEntry{
		ID:            uuid.NewString(),
		Level:         level,
		Message:       strings.TrimSpace(req.Message),
		Source:        source,
		Path:          strings.TrimSpace(req.Path),
		CorrelationID: correlationID,
		Metadata:      sanitizeMetadata(req.Metadata),
		Timestamp:     s.now().UTC(),
	}
	if err := s.Report(ctx, entry); err != nil {
		return models.ErrorLogEntry{}, err
	}
	return entry, nil
}

func (s *errorLogService) List(ctx context.Context, req dto.ErrorLogListRequest) (dto.ErrorLogListResponse, error) {
	limit := clampLimit(req.Limit, defaultErrorPageSize, maxErrorPageSize)
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	entries, total, err := s.repo.List(ctx, repository.ErrorLogFilter{
		Page:  repository.Page{Limit: limit, Offset: offset},
		Level: strings.ToLower(strings.TrimSpace(req.Level)),
	})
	if err != nil {
		return dto.ErrorLogListResponse{}, err
	}
	if entries == nil {
		entries = []models.ErrorLogEntry{}
	}

	return dto.ErrorLogListResponse{
		Items:      entries,
		Pagination: dto.OffsetPagination{Limit: limit, Offset: offset, Total: total},
	}, nil
}

// ClearOlderThan removes entries older than days; zero clears everything. Each clear is audited.
func (s *errorLogService) ClearOlderThan(ctx context.Context, days int, actor Principal) (dto.ErrorLogClearResponse, error) {
	if days < 0 {
		return dto.ErrorLogClearResponse{}, apperror.Validation("days must not be negative", map[string]interface{}{"days": "gte"})
	}

	cutoff := s.now().UTC().AddDate(0, 0, -days)
	if days == 0 {
		// include entries stamped in the current instant
		cutoff = cutoff.Add(time.Second)
	}
	removed, err := s.repo.ClearOlderThan(ctx, cutoff)
	if err != nil {
		return dto.ErrorLogClearResponse{}, err
	}

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Action:      models.AuditErrorLogsCleared,
		ActingAdmin: actor.Email,
		Details:     fmt.Sprintf("Cleared %d error log entries older than %d days", removed, days),
		Metadata:    map[string]interface{}{"days": days, "removed": removed, "cutoff": cutoff.Format(time.RFC3339)},
	})
	s.logger.Info().Int("removed", removed).Int("days", days).Msg("error logs pruned")
	return dto.ErrorLogClearResponse{Removed: removed, Cutoff: cutoff}, nil
}

func (s *errorLogService) CountSince(ctx context.Context, since time.Time) (int, error) {
	_, total, err := s.repo.List(ctx, repository.ErrorLogFilter{Page: repository.Page{Limit: 1}, Since: since})
	return total, err
}
