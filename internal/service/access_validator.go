package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-site-api/internal/apperror"
	"github.com/noah-isme/gema-site-api/internal/models"
	"github.com/noah-isme/gema-site-api/internal/repository"
)

// AccessResult is the admit/deny decision for one request.
type AccessResult struct {
	IsValid bool
	Session *Session
	Role    string
	Error   string
	Kind    apperror.Kind
}

// AccessValidator decides whether a session belongs to an allowlisted admin.
type AccessValidator interface {
	Validate(ctx context.Context, session *Session) AccessResult
}

type accessValidator struct {
	repo      repository.AdminUserRepository
	bootstrap map[string]struct{}
	logger    zerolog.Logger
}

// NewAccessValidator constructs the validator. Bootstrap principals are treated as
// super admins when they are absent from the persisted allowlist.
func NewAccessValidator(repo repository.AdminUserRepository, bootstrap []string, logger zerolog.Logger) AccessValidator {
	set := make(map[string]struct{}, len(bootstrap))
	for _, email := range bootstrap {
		if normalized := models.NormalizeEmail(email); normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return &accessValidator{
		repo:      repo,
		bootstrap: set,
		logger:    logger.With().Str("component", "access_validator").Logger(),
	}
}

func (v *accessValidator) Validate(ctx context.Context, session *Session) AccessResult {
	if session == nil || models.NormalizeEmail(session.Email) == "" {
		return AccessResult{Error: "authentication required", Kind: apperror.KindUnauthorized}
	}

	email := models.NormalizeEmail(session.Email)
	user, err := v.repo.Get(ctx, email)
	switch {
	case err == nil:
		return AccessResult{IsValid: true, Session: session, Role: user.Role}
	case errors.Is(err, repository.ErrNotFound):
		if _, ok := v.bootstrap[email]; ok {
			return AccessResult{IsValid: true, Session: session, Role: models.RoleSuperAdmin}
		}
		return AccessResult{Session: session, Error: "account is not authorised for admin access", Kind: apperror.KindForbidden}
	default:
		v.logger.Error().Err(err).Str("email", maskEmailAddress(email)).Msg("failed to read allowlist")
		return AccessResult{Session: session, Error: "unable to verify admin access", Kind: apperror.KindInternal}
	}
}
