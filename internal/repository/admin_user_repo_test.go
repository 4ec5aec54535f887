package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-site-api/internal/models"
)

func TestAdminUserRepositoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo, err := NewAdminUserRepository(t.TempDir())
	require.NoError(t, err)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, users)

	user := models.AdminUser{Email: "a@x.com", Role: models.RoleAdmin, AddedBy: "root@x.com", AddedAt: time.Now().UTC()}
	require.NoError(t, repo.Add(ctx, user))
	require.ErrorIs(t, repo.Add(ctx, models.AdminUser{Email: "A@X.com", Role: models.RoleAdmin}), ErrDuplicate)

	found, err := repo.Get(ctx, " A@x.COM ")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", found.Email)

	updated, err := repo.Update(ctx, "a@x.com", func(u *models.AdminUser) error {
		u.Role = models.RoleSuperAdmin
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, models.RoleSuperAdmin, updated.Role)

	_, err = repo.Update(ctx, "missing@x.com", func(*models.AdminUser) error { return nil })
	require.ErrorIs(t, err, ErrNotFound)

	removed, err := repo.Remove(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, models.RoleSuperAdmin, removed.Role)

	_, err = repo.Remove(ctx, "a@x.com")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAdminUserRepositoryListIsStable(t *testing.T) {
	ctx := context.Background()
	repo, err := NewAdminUserRepository(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, repo.Add(ctx, models.AdminUser{Email: "one@x.com", Role: models.RoleAdmin}))
	require.NoError(t, repo.Add(ctx, models.AdminUser{Email: "two@x.com", Role: models.RoleAdmin}))

	first, err := repo.List(ctx)
	require.NoError(t, err)
	second, err := repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
