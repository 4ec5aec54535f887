package repository

import (
	"context"
	"path/filepath"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/gema-site-api/internal/models"
	"github.com/noah-isme/gema-site-api/internal/storage"
)

// ErrorLogFilter narrows error log queries.
type ErrorLogFilter struct {
	Page
	Level string
	Since time.Time
}

// ErrorLogRepository persists application errors. It is the only log with a purge operation.
type ErrorLogRepository interface {
	Append(ctx context.Context, entry models.ErrorLogEntry) error
	List(ctx context.Context, filter ErrorLogFilter) ([]models.ErrorLogEntry, int, error)
	ClearOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

type jsonErrorLogRepository struct {
	doc *storage.Document[[]models.ErrorLogEntry]
}

// NewJSONErrorLogRepository stores error logs in <dataDir>/error-logs.json.
func NewJSONErrorLogRepository(dataDir string) (ErrorLogRepository, error) {
	doc, err := storage.NewDocument[[]models.ErrorLogEntry](filepath.Join(dataDir, "error-logs.json"))
	if err != nil {
		return nil, err
	}
	return &jsonErrorLogRepository{doc: doc}, nil
}

func (r *jsonErrorLogRepository) Append(ctx context.Context, entry models.ErrorLogEntry) error {
	_, err := r.doc.Update(ctx, func(entries *[]models.ErrorLogEntry) error {
		*entries = append(*entries, entry)
		return nil
	})
	return err
}

func (r *jsonErrorLogRepository) List(ctx context.Context, filter ErrorLogFilter) ([]models.ErrorLogEntry, int, error) {
	entries, err := r.doc.Load(ctx)
	if err != nil {
		return nil, 0, err
	}

	matched := make([]models.ErrorLogEntry, 0, len(entries))
	for _, entry := range entries {
		if filter.Level != "" && entry.Level != filter.Level {
			continue
		}
		if !filter.Since.IsZero() && entry.Timestamp.Before(filter.Since) {
			continue
		}
		matched = append(matched, entry)
	}

	sorted := newestFirst(matched, func(e models.ErrorLogEntry) time.Time { return e.Timestamp })
	start, end := filter.bounds(len(sorted))
	return sorted[start:end], len(sorted), nil
}

func (r *jsonErrorLogRepository) ClearOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	removed := 0
	_, err := r.doc.Update(ctx, func(entries *[]models.ErrorLogEntry) error {
		kept := (*entries)[:0]
		for _, entry := range *entries {
			if entry.Timestamp.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, entry)
		}
		*entries = kept
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

type gormErrorLogRepository struct {
	db *gorm.DB
}

// NewGormErrorLogRepository stores error logs in a SQL table.
func NewGormErrorLogRepository(db *gorm.DB) ErrorLogRepository {
	return &gormErrorLogRepository{db: db}
}

func (r *gormErrorLogRepository) Append(ctx context.Context, entry models.ErrorLogEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seq, err := nextSequence(tx, &models.ErrorLogEntry{})
		if err != nil {
			return err
		}
		entry.Sequence = seq
		return tx.Create(&entry).Error
	})
}

func (r *gormErrorLogRepository) List(ctx context.Context, filter ErrorLogFilter) ([]models.ErrorLogEntry, int, error) {
	query := r.db.WithContext(ctx).Model(&models.ErrorLogEntry{})
	if filter.Level != "" {
		query = query.Where("level = ?", filter.Level)
	}
	if !filter.Since.IsZero() {
		query = query.Where("timestamp >= ?", filter.Since)
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

	var entries []models.ErrorLogEntry
	if err := query.Order(newestFirstOrder).Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, int(total), nil
}

func (r *gormErrorLogRepository) ClearOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	result := r.db.WithContext(ctx).Where("timestamp < ?", cutoff).Delete(&models.ErrorLogEntry{})
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}
