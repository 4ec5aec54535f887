package repository

import (
	"context"
	"path/filepath"

	"github.com/noah-isme/gema-site-api/internal/models"
	"github.com/noah-isme/gema-site-api/internal/storage"
)

// AdminUserRepository persists the admin allowlist.
type AdminUserRepository interface {
	List(ctx context.Context) ([]models.AdminUser, error)
	Get(ctx context.Context, email string) (models.AdminUser, error)
	Add(ctx context.Context, user models.AdminUser) error
	Update(ctx context.Context, email string, fn func(user *models.AdminUser) error) (models.AdminUser, error)
	Remove(ctx context.Context, email string) (models.AdminUser, error)
}

type adminUserRepository struct {
	doc *storage.Document[models.AdminConfig]
}

// NewAdminUserRepository binds the allowlist to <dataDir>/admin-config.json.
func NewAdminUserRepository(dataDir string) (AdminUserRepository, error) {
	doc, err := storage.NewDocument[models.AdminConfig](filepath.Join(dataDir, "admin-config.json"))
	if err != nil {
		return nil, err
	}
	return &adminUserRepository{doc: doc}, nil
}

func (r *adminUserRepository) List(ctx context.Context) ([]models.AdminUser, error) {
	cfg, err := r.doc.Load(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]models.AdminUser, len(cfg.Users))
	copy(users, cfg.Users)
	return users, nil
}

func (r *adminUserRepository) Get(ctx context.Context, email string) (models.AdminUser, error) {
	cfg, err := r.doc.Load(ctx)
	if err != nil {
		return models.AdminUser{}, err
	}
	if idx := indexOfAdmin(cfg.Users, email); idx >= 0 {
		return cfg.Users[idx], nil
	}
	return models.AdminUser{}, ErrNotFound
}

func (r *adminUserRepository) Add(ctx context.Context, user models.AdminUser) error {
	_, err := r.doc.Update(ctx, func(cfg *models.AdminConfig) error {
		if indexOfAdmin(cfg.Users, user.Email) >= 0 {
			return ErrDuplicate
		}
		cfg.Users = append(cfg.Users, user)
		return nil
	})
	return err
}

func (r *adminUserRepository) Update(ctx context.Context, email string, fn func(user *models.AdminUser) error) (models.AdminUser, error) {
	var updated models.AdminUser
	_, err := r.doc.Update(ctx, func(cfg *models.AdminConfig) error {
		idx := indexOfAdmin(cfg.Users, email)
		if idx < 0 {
			return ErrNotFound
		}
		if err := fn(&cfg.Users[idx]); err != nil {
			return err
		}
		updated = cfg.Users[idx]
		return nil
	})
	return updated, err
}

func (r *adminUserRepository) Remove(ctx context.Context, email string) (models.AdminUser, error) {
	var removed models.AdminUser
	_, err := r.doc.Update(ctx, func(cfg *models.AdminConfig) error {
		idx := indexOfAdmin(cfg.Users, email)
		if idx < 0 {
			return ErrNotFound
		}
		removed = cfg.Users[idx]
		cfg.Users = append(cfg.Users[:idx], cfg.Users[idx+1:]...)
		return nil
	})
	return removed, err
}

func indexOfAdmin(users []models.AdminUser, email string) int {
	key := models.NormalizeEmail(email)
	for i, user := range users {
		if models.NormalizeEmail(user.Email) == key {
			return i
		}
	}
	return -1
}
