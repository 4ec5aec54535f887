package repository

import (
	"context"
	"path/filepath"
	"time"

	"github.com/noah-isme/gema-site-api/internal/models"
	"github.com/noah-isme/gema-site-api/internal/storage"
)

// DeliveryLogFilter narrows delivery log queries.
type DeliveryLogFilter struct {
	Page
	Status string
}

// EmailLogRepository persists outbound e-mail delivery logs.
type EmailLogRepository interface {
	Append(ctx context.Context, entries ...models.EmailDeliveryLog) error
	List(ctx context.Context, filter DeliveryLogFilter) ([]models.EmailDeliveryLog, int, error)
}

type emailLogRepository struct {
	doc *storage.Document[[]models.EmailDeliveryLog]
}

// NewEmailLogRepository binds delivery logs to <dataDir>/email-delivery-logs.json.
func NewEmailLogRepository(dataDir string) (EmailLogRepository, error) {
	doc, err := storage.NewDocument[[]models.EmailDeliveryLog](filepath.Join(dataDir, "email-delivery-logs.json"))
	if err != nil {
		return nil, err
	}
	return &emailLogRepository{doc: doc}, nil
}

func (r *emailLogRepository) Append(ctx context.Context, entries ...models.EmailDeliveryLog) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := r.doc.Update(ctx, func(items *[]models.EmailDeliveryLog) error {
		*items = append(*items, entries...)
		return nil
	})
	return err
}

func (r *emailLogRepository) List(ctx context.Context, filter DeliveryLogFilter) ([]models.EmailDeliveryLog, int, error) {
	items, err := r.doc.Load(ctx)
	if err != nil {
		return nil, 0, err
	}

	matched := make([]models.EmailDeliveryLog, 0, len(items))
	for _, item := range items {
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		matched = append(matched, item)
	}

	sorted := newestFirst(matched, func(e models.EmailDeliveryLog) time.Time { return e.Timestamp })
	start, end := filter.bounds(len(sorted))
	return sorted[start:end], len(sorted), nil
}
