package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-site-api/internal/dto"
	"github.com/noah-isme/gema-site-api/internal/handler"
	"github.com/noah-isme/gema-site-api/internal/service"
)

func registerAdminUsers(h *adminHarness) {
	svc := service.NewAdminUserService(h.users, h.audit, h.validate, h.logger)
	handler.NewAdminUserHandler(svc, h.logger).Register(h.admin.Group("/users"))
}

func TestAdminUserHandler_AddAndList(t *testing.T) {
	h := newAdminHarness(t)
	registerAdminUsers(h)
	token := h.token(t, ownerEmail)

	resp, env := h.do(t, http.MethodPost, "/api/admin/users", token, dto.AdminUserCreateRequest{Email: "Editor@Example.com", Role: "admin"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.True(t, env.Success)

	var created dto.AdminUserResponse
	decodeData(t, env, &created)
	require.Equal(t, "editor@example.com", created.User.Email)
	require.Equal(t, ownerEmail, created.User.AddedBy)

	resp, env = h.do(t, http.MethodGet, "/api/admin/users", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list dto.AdminUserListResponse
	decodeData(t, env, &list)
	require.Len(t, list.Users, 1)
	require.Equal(t, 1, list.Total)
}

func TestAdminUserHandler_DuplicateConflicts(t *testing.T) {
	h := newAdminHarness(t)
	registerAdminUsers(h)
	token := h.token(t, ownerEmail)

	payload := dto.AdminUserCreateRequest{Email: "editor@example.com", Role: "admin"}
	resp, _ := h.do(t, http.MethodPost, "/api/admin/users", token, payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, env := h.do(t, http.MethodPost, "/api/admin/users", token, payload)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	require.False(t, env.Success)
}

func TestAdminUserHandler_InvalidPayloadReturnsDetails(t *testing.T) {
	h := newAdminHarness(t)
	registerAdminUsers(h)

	resp, env := h.do(t, http.MethodPost, "/api/admin/users", h.token(t, ownerEmail), dto.AdminUserCreateRequest{Email: "nope", Role: "root"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Contains(t, string(env.Details), "Email")
	require.Contains(t, string(env.Details), "Role")
}

func TestAdminUserHandler_SelfRemovalForbidden(t *testing.T) {
	h := newAdminHarness(t)
	registerAdminUsers(h)

	resp, env := h.do(t, http.MethodDelete, "/api/admin/users/owner%40example.com", h.token(t, ownerEmail), nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	require.False(t, env.Success)
	require.Equal(t, "Operation Not Allowed", env.Error)
}

func TestAdminUserHandler_PlainAdminCannotGrantSuperAdmin(t *testing.T) {
	h := newAdminHarness(t)
	registerAdminUsers(h)
	owner := h.token(t, ownerEmail)

	resp, _ := h.do(t, http.MethodPost, "/api/admin/users", owner, dto.AdminUserCreateRequest{Email: "editor@example.com", Role: "admin"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = h.do(t, http.MethodPost, "/api/admin/users", h.token(t, "editor@example.com"), dto.AdminUserCreateRequest{Email: "boss@example.com", Role: "super_admin"})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminUserHandler_UpdateReportsTransition(t *testing.T) {
	h := newAdminHarness(t)
	registerAdminUsers(h)
	token := h.token(t, ownerEmail)

	resp, _ := h.do(t, http.MethodPost, "/api/admin/users", token, dto.AdminUserCreateRequest{Email: "editor@example.com", Role: "admin"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	role := "super_admin"
	resp, env := h.do(t, http.MethodPatch, "/api/admin/users/editor@example.com", token, dto.AdminUserUpdateRequest{Role: &role})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var updated dto.AdminUserUpdateResponse
	decodeData(t, env, &updated)
	require.Equal(t, "admin", updated.PreviousRole)
	require.Equal(t, "super_admin", updated.NewRole)
}

func TestAdminUserHandler_RejectsUnknownPrincipal(t *testing.T) {
	h := newAdminHarness(t)
	registerAdminUsers(h)

	resp, _ := h.do(t, http.MethodGet, "/api/admin/users", h.token(t, "stranger@example.com"), nil)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = h.do(t, http.MethodGet, "/api/admin/users", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
