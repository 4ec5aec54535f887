package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-site-api/internal/dto"
	"github.com/noah-isme/gema-site-api/internal/models"
	"github.com/noah-isme/gema-site-api/internal/repository"
)

// Principal is the admin performing an operation.
type Principal struct {
	Email string
	Name  string
	Role  string
}

// IsSuperAdmin reports whether the principal holds the super_admin role.
func (p Principal) IsSuperAdmin() bool {
	return p.Role == models.RoleSuperAdmin
}

// AdminUserService manages the admin allowlist.
type AdminUserService interface {
	List(ctx context.Context) ([]models.AdminUser, error)
	Add(ctx context.Context, actor Principal, req dto.AdminUserCreateRequest) (models.AdminUser, error)
	Update(ctx context.Context, actor Principal, email string, req dto.AdminUserUpdateRequest) (dto.AdminUserUpdateResponse, error)
	Remove(ctx context.Context, actor Principal, email string) (models.AdminUser, error)
}

type adminUserService struct {
	repo      repository.AdminUserRepository
	audit     AuditRecorder
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewAdminUserService constructs the allowlist service.
func NewAdminUserService(repo repository.AdminUserRepository, audit AuditRecorder, validate *validator.Validate, logger zerolog.Logger) AdminUserService {
	return &adminUserService{
		repo:      repo,
		audit:     audit,
		validator: validate,
		logger:    logger.With().Str("component", "admin_user_service").Logger(),
		now:       time.Now,
	}
}

func (s *adminUserService) List(ctx context.Context) ([]models.AdminUser, error) {
	return s.repo.List(ctx)
}

func (s *adminUserService) Add(ctx context.Context, actor Principal, req dto.AdminUserCreateRequest) (models.AdminUser, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.AdminUser{}, err
	}
	if req.Role == models.RoleSuperAdmin && !actor.IsSuperAdmin() {
		return models.AdminUser{}, ErrSuperAdminRequired
	}

	user := models.AdminUser{
		Email:   models.NormalizeEmail(req.Email),
		Role:    req.Role,
		AddedBy: models.NormalizeEmail(actor.Email),
		AddedAt: s.now().UTC(),
	}
	if err := s.repo.Add(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return models.AdminUser{}, ErrAdminUserExists
		}
		return models.AdminUser{}, err
	}

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Action:          models.AuditUserAdded,
		ActingAdmin:     actor.Email,
		TargetPrincipal: user.Email,
		Details:         fmt.Sprintf("Added %s as %s", user.Email, user.Role),
		Metadata:        map[string]interface{}{"role": user.Role},
	})
	s.logger.Info().Str("target", maskEmailAddress(user.Email)).Str("role", user.Role).Msg("admin user added")
	return user, nil
}

func (s *adminUserService) Update(ctx context.Context, actor Principal, email string, req dto.AdminUserUpdateRequest) (dto.AdminUserUpdateResponse, error) {
	if req.Role == nil {
		return dto.AdminUserUpdateResponse{}, ErrEmptyPatch
	}
	if !models.IsValidAdminRole(*req.Role) {
		return dto.AdminUserUpdateResponse{}, ErrInvalidAdminRole
	}
	if err := s.validator.Struct(req); err != nil {
		return dto.AdminUserUpdateResponse{}, err
	}

	newRole := *req.Role
	if newRole == models.RoleSuperAdmin && !actor.IsSuperAdmin() {
		return dto.AdminUserUpdateResponse{}, ErrSuperAdminRequired
	}

	var previousRole string
	updated, err := s.repo.Update(ctx, email, func(user *models.AdminUser) error {
		if user.Role == models.RoleSuperAdmin && !actor.IsSuperAdmin() {
			return ErrSuperAdminRequired
		}
		previousRole = user.Role
		now := s.now().UTC()
		user.Role = newRole
		user.UpdatedBy = models.NormalizeEmail(actor.Email)
		user.UpdatedAt = &now
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return dto.AdminUserUpdateResponse{}, ErrAdminUserNotFound
		}
		return dto.AdminUserUpdateResponse{}, err
	}

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Action:          models.AuditUserUpdated,
		ActingAdmin:     actor.Email,
		TargetPrincipal: updated.Email,
		Details:         fmt.Sprintf("Changed role of %s from %s to %s", updated.Email, previousRole, newRole),
		Metadata:        map[string]interface{}{"previousRole": previousRole, "newRole": newRole},
	})

	return dto.AdminUserUpdateResponse{User: updated, PreviousRole: previousRole, NewRole: newRole}, nil
}

func (s *adminUserService) Remove(ctx context.Context, actor Principal, email string) (models.AdminUser, error) {
	target := models.NormalizeEmail(email)
	if target != "" && target == models.NormalizeEmail(actor.Email) {
		return models.AdminUser{}, ErrSelfRemoval
	}

	current, err := s.repo.Get(ctx, target)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.AdminUser{}, ErrAdminUserNotFound
		}
		return models.AdminUser{}, err
	}
	if current.Role == models.RoleSuperAdmin && !actor.IsSuperAdmin() {
		return models.AdminUser{}, ErrSuperAdminRequired
	}

	removed, err := s.repo.Remove(ctx, target)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.AdminUser{}, ErrAdminUserNotFound
		}
		return models.AdminUser{}, err
	}

	recordAudit(ctx, s.audit, s.logger, AuditEntry{
		Action:          models.AuditUserRemoved,
		ActingAdmin:     actor.Email,
		TargetPrincipal: removed.Email,
		Details:         fmt.Sprintf("Removed %s (%s)", removed.Email, removed.Role),
		Metadata:        map[string]interface{}{"role": removed.Role},
	})
	s.logger.Info().Str("target", maskEmailAddress(removed.Email)).Msg("admin user removed")
	return removed, nil
}
