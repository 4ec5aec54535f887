package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-site-api/internal/dto"
	"github.com/noah-isme/gema-site-api/internal/models"
	"github.com/noah-isme/gema-site-api/internal/observability"
	"github.com/noah-isme/gema-site-api/internal/repository"
)

const (
	defaultAuditPageSize = 50
	maxAuditPageSize     = 500
)

// AuditEntry carries the fields a caller supplies for one audit record.
type AuditEntry struct {
	Action          string
	ActingAdmin     string
	TargetPrincipal string
	Details         string
	Metadata        map[string]interface{}
}

// AuditRecorder appends audit records after administrative mutations.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) (models.AuditRecord, error)
}

// AuditService records and queries the audit trail.
type AuditService interface {
	AuditRecorder
	List(ctx context.Context, req dto.AuditLogListRequest) (dto.AuditLogListResponse, error)
}

// EventPublisher fans audit records out to a message bus. *nats.Conn satisfies it.
type EventPublisher interface {
	Publish(subject string, data []byte) error
}

type auditService struct {
	repo      repository.AuditLogRepository
	publisher EventPublisher
	subject   string
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAuditService constructs the audit service. publisher may be nil.
func NewAuditService(repo repository.AuditLogRepository, publisher EventPublisher, subject string, logger zerolog.Logger) AuditService {
	return &auditService{
		repo:      repo,
		publisher: publisher,
		subject:   strings.TrimSpace(subject),
		logger:    logger.With().Str("component", "audit_service").Logger(),
		now:       time.Now,
	}
}

func (s *auditService) Record(ctx context.Context, entry AuditEntry) (models.AuditRecord, error) {
	record := models.AuditRecord{
		ID:              uuid.NewString(),
		Action:          strings.ToUpper(strings.TrimSpace(entry.Action)),
		ActingAdmin:     models.NormalizeEmail(entry.ActingAdmin),
		TargetPrincipal: strings.TrimSpace(entry.TargetPrincipal),
		Details:         strings.TrimSpace(entry.Details),
		Timestamp:       s.now().UTC(),
		Metadata:        sanitizeMetadata(entry.Metadata),
	}

	if err := s.repo.Append(ctx, record); err != nil {
		s.logger.Error().Err(err).Str("action", record.Action).Msg("failed to append audit record")
		return models.AuditRecord{}, err
	}

	observability.AuditRecords().WithLabelValues(record.Action).Inc()
	s.publish(record)
	return record, nil
}

func (s *auditService) publish(record models.AuditRecord) {
	if s.publisher == nil || s.subject == "" {
		return
	}
	payload, err := json.Marshal(record)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode audit event")
		return
	}
	if err := s.publisher.Publish(s.subject, payload); err != nil {
		s.logger.Warn().Err(err).Str("subject", s.subject).Msg("failed to publish audit event")
	}
}

func (s *auditService) List(ctx context.Context, req dto.AuditLogListRequest) (dto.AuditLogListResponse, error) {
	limit := clampLimit(req.Limit, defaultAuditPageSize, maxAuditPageSize)
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}

	records, total, err := s.repo.List(ctx, repository.AuditLogFilter{
		Page:   repository.Page{Limit: limit, Offset: offset},
		Action: strings.ToUpper(strings.TrimSpace(req.Action)),
	})
	if err != nil {
		return dto.AuditLogListResponse{}, err
	}
	if records == nil {
		records = []models.AuditRecord{}
	}

	return dto.AuditLogListResponse{
		Items:      records,
		Pagination: dto.OffsetPagination{Limit: limit, Offset: offset, Total: total},
	}, nil
}

// recordAudit appends an audit record on behalf of a mutation that already succeeded.
// A failure is logged and does not undo the mutation.
func recordAudit(ctx context.Context, recorder AuditRecorder, logger zerolog.Logger, entry AuditEntry) {
	if recorder == nil {
		return
	}
	if _, err := recorder.Record(ctx, entry); err != nil {
		logger.Warn().Err(err).Str("action", entry.Action).Msg("failed to record audit entry")
	}
}
