package repository

import (
	"context"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-site-api/internal/models"
	"github.com/noah-isme/gema-site-api/internal/storage"
)

// AuditLogFilter narrows audit log queries.
type AuditLogFilter struct {
	Page
	Action string
}

// AuditLogRepository persists the append-only audit trail.
type AuditLogRepository interface {
	Append(ctx context.Context, record models.AuditRecord) error
	List(ctx context.Context, filter AuditLogFilter) ([]models.AuditRecord, int, error)
}

type jsonAuditLogRepository struct {
	doc *storage.Document[[]models.AuditRecord]
}

// NewJSONAuditLogRepository stores the audit trail in <dataDir>/audit-logs.json.
func NewJSONAuditLogRepository(dataDir string) (AuditLogRepository, error) {
	doc, err := storage.NewDocument[[]models.AuditRecord](filepath.Join(dataDir, "audit-logs.json"))
	if err != nil {
		return nil, err
	}
	return &jsonAuditLogRepository{doc: doc}, nil
}

func (r *jsonAuditLogRepository) Append(ctx context.Context, record models.AuditRecord) error {
	_, err := r.doc.Update(ctx, func(records *[]models.AuditRecord) error {
		*records = append(*records, record)
		return nil
	})
	return err
}

func (r *jsonAuditLogRepository) List(ctx context.Context, filter AuditLogFilter) ([]models.AuditRecord, int, error) {
	records, err := r.doc.Load(ctx)
	if err != nil {
		return nil, 0, err
	}

	matched := make([]models.AuditRecord, 0, len(records))
	for _, record := range records {
		if filter.Action != "" && record.Action != filter.Action {
			continue
		}
		matched = append(matched, record)
	}

	sorted := newestFirst(matched, func(r models.AuditRecord) time.Time { return r.Timestamp })
	start, end := filter.bounds(len(sorted))
	return sorted[start:end], len(sorted), nil
}

type gormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository stores the audit trail in a SQL table.
func NewGormAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &gormAuditLogRepository{db: db}
}

func (r *gormAuditLogRepository) Append(ctx context.Context, record models.AuditRecord) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := nextSequence(tx, &models.AuditRecord{})
		if err != nil {
			return err
		}
		record.Sequence = seq
		return tx.Create(&record).Error
	})
}

func (r *gormAuditLogRepository) List(ctx context.Context, filter AuditLogFilter) ([]models.AuditRecord, int, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditRecord{})
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var records []models.AuditRecord
	if err := query.Order(newestFirstOrder).Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, int(total), nil
}
