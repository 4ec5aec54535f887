package service

import "github.com/noah-isme/gema-site-api/internal/apperror"

var (
	// ErrAdminUserNotFound indicates the principal is not on the allowlist.
	ErrAdminUserNotFound = apperror.New(apperror.KindNotFound, "admin_user_not_found", "admin user not found")
	// ErrAdminUserExists indicates the principal is already on the allowlist.
	ErrAdminUserExists = apperror.New(apperror.KindConflict, "admin_user_exists", "admin user already exists")
	// ErrSelfRemoval is returned when a principal tries to remove itself.
	ErrSelfRemoval = apperror.New(apperror.KindForbidden, "self_removal", "Operation Not Allowed")
	// ErrSuperAdminRequired guards grants and changes involving super_admin principals.
	ErrSuperAdminRequired = apperror.New(apperror.KindForbidden, "super_admin_required", "super_admin role required")
	// ErrEmptyPatch is returned for updates that change nothing.
	ErrEmptyPatch = apperror.New(apperror.KindValidation, "empty_patch", "no changes supplied")
	// ErrInvalidAdminRole is returned when a role is outside the admin role set.
	ErrInvalidAdminRole = apperror.New(apperror.KindValidation, "invalid_role", "role must be admin or super_admin")

	// ErrContributorNotFound indicates the contributor id is unknown.
	ErrContributorNotFound = apperror.New(apperror.KindNotFound, "contributor_not_found", "contributor not found")
	// ErrContributorExists indicates the contributor id is already taken.
	ErrContributorExists = apperror.New(apperror.KindConflict, "contributor_exists", "contributor already exists")
	// ErrInvalidContributorRole is returned for roles outside the contributor role set.
	ErrInvalidContributorRole = apperror.New(apperror.KindValidation, "invalid_contributor_role", "role must be maintainer, contributor or community")
	// ErrRemoteNotConfigured is returned when the remote repository has no credentials.
	ErrRemoteNotConfigured = apperror.New(apperror.KindExternalService, "remote_not_configured", "remote repository is not configured")

	// ErrSubscriberNotFound indicates an unknown subscriber token.
	ErrSubscriberNotFound = apperror.New(apperror.KindNotFound, "subscriber_not_found", "subscriber not found")
	// ErrAlreadySubscribed is returned when a confirmed subscriber signs up again.
	ErrAlreadySubscribed = apperror.New(apperror.KindConflict, "already_subscribed", "email is already subscribed")

	// ErrInvalidSession is returned for missing, expired or tampered session tokens.
	ErrInvalidSession = apperror.New(apperror.KindUnauthorized, "invalid_session", "invalid session")
	// ErrNotAllowlisted is returned when an authenticated identity is not an admin.
	ErrNotAllowlisted = apperror.New(apperror.KindForbidden, "not_allowlisted", "account is not authorised for admin access")
)

// ErrRemoteUnavailable wraps failures talking to the remote repository.
var ErrRemoteUnavailable = apperror.New(apperror.KindExternalService, "remote_unavailable", "remote repository request failed")
