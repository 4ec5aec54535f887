package repository

import (
	"context"
	"path/filepath"

	"github.com/noah-isme/gema-site-api/internal/models"
	"github.com/noah-isme/gema-site-api/internal/storage"
)

// SubscriberRepository persists newsletter subscribers.
type SubscriberRepository interface {
	List(ctx context.Context) ([]models.Subscriber, error)
	GetByEmail(ctx context.Context, email string) (models.Subscriber, error)
	Create(ctx context.Context, subscriber models.Subscriber) error
	UpdateByToken(ctx context.Context, token string, fn func(s *models.Subscriber) error) (models.Subscriber, error)
	DeleteByToken(ctx context.Context, token string) (models.Subscriber, error)
}

type subscriberRepository struct {
	doc *storage.Document[[]models.Subscriber]
}

// NewSubscriberRepository binds subscribers to <dataDir>/newsletter-subscribers.json.
func NewSubscriberRepository(dataDir string) (SubscriberRepository, error) {
	doc, err := storage.NewDocument[[]models.Subscriber](filepath.Join(dataDir, "newsletter-subscribers.json"))
	if err != nil {
		return nil, err
	}
	return &subscriberRepository{doc: doc}, nil
}

func (r *subscriberRepository) List(ctx context.Context) ([]models.Subscriber, error) {
	items, err := r.doc.Load(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Subscriber{}
	}
	return items, nil
}

func (r *subscriberRepository) GetByEmail(ctx context.Context, email string) (models.Subscriber, error) {
	items, err := r.doc.Load(ctx)
	if err != nil {
		return models.Subscriber{}, err
	}
	key := models.NormalizeEmail(email)
	for _, item := range items {
		if models.NormalizeEmail(item.Email) == key {
			return item, nil
		}
	}
	return models.Subscriber{}, ErrNotFound
}

func (r *subscriberRepository) Create(ctx context.Context, subscriber models.Subscriber) error {
	_, err := r.doc.Update(ctx, func(items *[]models.Subscriber) error {
		key := models.NormalizeEmail(subscriber.Email)
		for _, item := range *items {
			if models.NormalizeEmail(item.Email) == key {
				return ErrDuplicate
			}
		}
		*items = append(*items, subscriber)
		return nil
	})
	return err
}

func (r *subscriberRepository) UpdateByToken(ctx context.Context, token string, fn func(s *models.Subscriber) error) (models.Subscriber, error) {
	var updated models.Subscriber
	_, err := r.doc.Update(ctx, func(items *[]models.Subscriber) error {
		idx := indexOfToken(*items, token)
		if idx < 0 {
			return ErrNotFound
		}
		if err := fn(&(*items)[idx]); err != nil {
			return err
		}
		updated = (*items)[idx]
		return nil
	})
	return updated, err
}

func (r *subscriberRepository) DeleteByToken(ctx context.Context, token string) (models.Subscriber, error) {
	var removed models.Subscriber
	_, err := r.doc.Update(ctx, func(items *[]models.Subscriber) error {
		idx := indexOfToken(*items, token)
		if idx < 0 {
			return ErrNotFound
		}
		removed = (*items)[idx]
		*items = append((*items)[:idx], (*items)[idx+1:]...)
		return nil
	})
	return removed, err
}

func indexOfToken(items []models.Subscriber, token string) int {
	if token == "" {
		return -1
	}
	for i, item := range items {
		if item.UnsubscribeToken == token {
			return i
		}
	}
	return -1
}
