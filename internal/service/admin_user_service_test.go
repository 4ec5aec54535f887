package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-site-api/internal/apperror"
	"github.com/noah-isme/gema-site-api/internal/dto"
	"github.com/noah-isme/gema-site-api/internal/models"
	"github.com/noah-isme/gema-site-api/internal/repository"
)

func setupAdminUserService(t *testing.T) (AdminUserService, repository.AdminUserRepository, *memoryAuditRecorder) {
	t.Helper()
	repo, err := repository.NewAdminUserRepository(t.TempDir())
	require.NoError(t, err)
	audit := &memoryAuditRecorder{}
	return NewAdminUserService(repo, audit, testValidator(), testLogger()), repo, audit
}

func stringPtr(value string) *string {
	return &value
}

var (
	superAdmin = Principal{Email: "owner@example.com", Role: models.RoleSuperAdmin}
	plainAdmin = Principal{Email: "editor@example.com", Role: models.RoleAdmin}
)

func TestAdminUserServiceAddRecordsAudit(t *testing.T) {
	svc, repo, audit := setupAdminUserService(t)
	ctx := context.Background()

	user, err := svc.Add(ctx, superAdmin, dto.AdminUserCreateRequest{Email: " New@Example.com ", Role: models.RoleAdmin})
	require.NoError(t, err)
	require.Equal(t, "new@example.com", user.Email)
	require.Equal(t, "owner@example.com", user.AddedBy)

	stored, err := repo.Get(ctx, "new@example.com")
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, stored.Role)

	require.Equal(t, 1, audit.count())
	require.Equal(t, models.AuditUserAdded, audit.entries[0].Action)
	require.Equal(t, "new@example.com", audit.entries[0].TargetPrincipal)
}

func TestAdminUserServiceAddDuplicate(t *testing.T) {
	svc, _, audit := setupAdminUserService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, superAdmin, dto.AdminUserCreateRequest{Email: "dup@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = svc.Add(ctx, superAdmin, dto.AdminUserCreateRequest{Email: "DUP@example.com", Role: models.RoleAdmin})
	require.ErrorIs(t, err, ErrAdminUserExists)
	require.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	require.Equal(t, 1, audit.count())
}

func TestAdminUserServiceAddValidatesPayload(t *testing.T) {
	svc, _, audit := setupAdminUserService(t)

	_, err := svc.Add(context.Background(), superAdmin, dto.AdminUserCreateRequest{Email: "not-an-email", Role: models.RoleAdmin})
	require.Error(t, err)
	require.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.Add(context.Background(), superAdmin, dto.AdminUserCreateRequest{Email: "a@example.com", Role: "owner"})
	require.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	require.Zero(t, audit.count())
}

func TestAdminUserServiceOnlySuperAdminGrantsSuperAdmin(t *testing.T) {
	svc, _, audit := setupAdminUserService(t)

	_, err := svc.Add(context.Background(), plainAdmin, dto.AdminUserCreateRequest{Email: "boss@example.com", Role: models.RoleSuperAdmin})
	require.ErrorIs(t, err, ErrSuperAdminRequired)
	require.Zero(t, audit.count())
}

func TestAdminUserServiceUpdateRole(t *testing.T) {
	svc, _, audit := setupAdminUserService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, superAdmin, dto.AdminUserCreateRequest{Email: "team@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)

	result, err := svc.Update(ctx, superAdmin, "team@example.com", dto.AdminUserUpdateRequest{Role: stringPtr(models.RoleSuperAdmin)})
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, result.PreviousRole)
	require.Equal(t, models.RoleSuperAdmin, result.NewRole)
	require.Equal(t, "owner@example.com", result.User.UpdatedBy)
	require.NotNil(t, result.User.UpdatedAt)

	require.Equal(t, 2, audit.count())
	last := audit.entries[1]
	require.Equal(t, models.AuditUserUpdated, last.Action)
	require.Equal(t, models.RoleAdmin, last.Metadata["previousRole"])
}

func TestAdminUserServiceUpdateInvalidRoleLeavesStoreUnchanged(t *testing.T) {
	svc, repo, audit := setupAdminUserService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, superAdmin, dto.AdminUserCreateRequest{Email: "team@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = svc.Update(ctx, superAdmin, "team@example.com", dto.AdminUserUpdateRequest{Role: stringPtr("owner")})
	require.ErrorIs(t, err, ErrInvalidAdminRole)

	_, err = svc.Update(ctx, superAdmin, "team@example.com", dto.AdminUserUpdateRequest{})
	require.ErrorIs(t, err, ErrEmptyPatch)

	stored, err := repo.Get(ctx, "team@example.com")
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, stored.Role)
	require.Nil(t, stored.UpdatedAt)
	require.Equal(t, 1, audit.count())
}

func TestAdminUserServiceUpdateMissing(t *testing.T) {
	svc, _, _ := setupAdminUserService(t)

	_, err := svc.Update(context.Background(), superAdmin, "ghost@example.com", dto.AdminUserUpdateRequest{Role: stringPtr(models.RoleAdmin)})
	require.ErrorIs(t, err, ErrAdminUserNotFound)
}

func TestAdminUserServiceAdminCannotDemoteSuperAdmin(t *testing.T) {
	svc, repo, _ := setupAdminUserService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, superAdmin, dto.AdminUserCreateRequest{Email: "boss@example.com", Role: models.RoleSuperAdmin})
	require.NoError(t, err)

	_, err = svc.Update(ctx, plainAdmin, "boss@example.com", dto.AdminUserUpdateRequest{Role: stringPtr(models.RoleAdmin)})
	require.ErrorIs(t, err, ErrSuperAdminRequired)

	_, err = svc.Remove(ctx, plainAdmin, "boss@example.com")
	require.ErrorIs(t, err, ErrSuperAdminRequired)

	stored, err := repo.Get(ctx, "boss@example.com")
	require.NoError(t, err)
	require.Equal(t, models.RoleSuperAdmin, stored.Role)
}

func TestAdminUserServiceRemove(t *testing.T) {
	svc, repo, audit := setupAdminUserService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, superAdmin, dto.AdminUserCreateRequest{Email: "gone@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)

	removed, err := svc.Remove(ctx, superAdmin, "GONE@example.com")
	require.NoError(t, err)
	require.Equal(t, "gone@example.com", removed.Email)

	_, err = repo.Get(ctx, "gone@example.com")
	require.ErrorIs(t, err, repository.ErrNotFound)
	require.Equal(t, 2, audit.count())
	require.Equal(t, models.AuditUserRemoved, audit.entries[1].Action)

	_, err = svc.Remove(ctx, superAdmin, "gone@example.com")
	require.ErrorIs(t, err, ErrAdminUserNotFound)
}

func TestAdminUserServiceRejectsSelfRemoval(t *testing.T) {
	svc, repo, audit := setupAdminUserService(t)
	ctx := context.Background()

	require.NoError(t, repo.Add(ctx, models.AdminUser{Email: "owner@example.com", Role: models.RoleSuperAdmin}))

	_, err := svc.Remove(ctx, superAdmin, " Owner@Example.com ")
	require.ErrorIs(t, err, ErrSelfRemoval)
	require.Equal(t, apperror.KindForbidden, apperror.KindOf(err))
	require.Equal(t, "Operation Not Allowed", apperror.From(err).Message)

	_, err = repo.Get(ctx, "owner@example.com")
	require.NoError(t, err)
	require.Zero(t, audit.count())
}

func TestAdminUserServiceAuditFailureKeepsMutation(t *testing.T) {
	repo, err := repository.NewAdminUserRepository(t.TempDir())
	require.NoError(t, err)
	audit := &memoryAuditRecorder{err: apperror.Internal("audit down", nil)}
	svc := NewAdminUserService(repo, audit, testValidator(), testLogger())

	_, err = svc.Add(context.Background(), superAdmin, dto.AdminUserCreateRequest{Email: "kept@example.com", Role: models.RoleAdmin})
	require.NoError(t, err)

	_, err = repo.Get(context.Background(), "kept@example.com")
	require.NoError(t, err)
}
