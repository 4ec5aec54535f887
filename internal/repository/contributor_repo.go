package repository

import (
	"context"
	"path/filepath"

	"github.com/noah-isme/gema-site-api/internal/models"
	"github.com/noah-isme/gema-site-api/internal/storage"
)

// ContributorRepository persists the contributor roster.
type ContributorRepository interface {
	List(ctx context.Context) ([]models.Contributor, error)
	Create(ctx context.Context, contributor models.Contributor) error
	Update(ctx context.Context, id string, fn func(c *models.Contributor) error) (models.Contributor, error)
	Delete(ctx context.Context, id string) (models.Contributor, error)
	// Replace rewrites the whole roster through fn in a single write.
	Replace(ctx context.Context, fn func(current []models.Contributor) ([]models.Contributor, error)) ([]models.Contributor, error)
}

type contributorRepository struct {
	doc *storage.Document[[]models.Contributor]
}

// NewContributorRepository binds the roster to <dataDir>/contributors.json.
func NewContributorRepository(dataDir string) (ContributorRepository, error) {
	doc, err := storage.NewDocument[[]models.Contributor](filepath.Join(dataDir, "contributors.json"))
	if err != nil {
		return nil, err
	}
	return &contributorRepository{doc: doc}, nil
}

func (r *contributorRepository) List(ctx context.Context) ([]models.Contributor, error) {
	items, err := r.doc.Load(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Contributor{}
	}
	return items, nil
}

func (r *contributorRepository) Create(ctx context.Context, contributor models.Contributor) error {
	_, err := r.doc.Update(ctx, func(items *[]models.Contributor) error {
		if indexOfContributor(*items, contributor.ID) >= 0 {
			return ErrDuplicate
		}
		*items = append(*items, contributor)
		return nil
	})
	return err
}

func (r *contributorRepository) Update(ctx context.Context, id string, fn func(c *models.Contributor) error) (models.Contributor, error) {
	var updated models.Contributor
	_, err := r.doc.Update(ctx, func(items *[]models.Contributor) error {
		idx := indexOfContributor(*items, id)
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

func (r *contributorRepository) Delete(ctx context.Context, id string) (models.Contributor, error) {
	var removed models.Contributor
	_, err := r.doc.Update(ctx, func(items *[]models.Contributor) error {
		idx := indexOfContributor(*items, id)
		if idx < 0 {
			return ErrNotFound
		}
		removed = (*items)[idx]
		*items = append((*items)[:idx], (*items)[idx+1:]...)
		return nil
	})
	return removed, err
}

func (r *contributorRepository) Replace(ctx context.Context, fn func(current []models.Contributor) ([]models.Contributor, error)) ([]models.Contributor, error) {
	return r.doc.Update(ctx, func(items *[]models.Contributor) error {
		next, err := fn(*items)
		if err != nil {
			return err
		}
		*items = next
		return nil
	})
}

func indexOfContributor(items []models.Contributor, id string) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
