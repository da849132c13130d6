package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/fieldops/pkg/portalapi"
)

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(body, &v))
	return v
}

func TestAPI_RequiresSession(t *testing.T) {
	p := newTestPortal(t)

	for _, target := range []string{"/v1/me", "/v1/roles", "/v1/invitations", "/v1/profiles"} {
		rec := p.do(http.MethodGet, target, "", "")
		require.Equal(t, http.StatusUnauthorized, rec.Code, target)

		apiErr := decode[portalapi.APIError](t, rec.Body.Bytes())
		require.Equal(t, portalapi.ErrorCodeUnauthenticated, apiErr.Code)
	}

	rec := p.do(http.MethodGet, "/v1/me", "made-up-token", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPI_DeactivatedProfileIsRejected(t *testing.T) {
	p := newTestPortal(t)
	token := p.member("u1", "a@x.com", "admin")
	require.NoError(t, p.store.Profiles().SetProfileActive(t.Context(), "u1", false))

	rec := p.do(http.MethodGet, "/v1/me", token, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, portalapi.ErrorCodeDeactivated, decode[portalapi.APIError](t, rec.Body.Bytes()).Code)
}

func TestAPI_PermissionGates(t *testing.T) {
	p := newTestPortal(t)
	tech := p.member("u-tech", "tech@x.com", "technician")
	office := p.member("u-office", "office@x.com", "office_staff")
	admin := p.member("u-admin", "admin@x.com", "admin")
	roleless := p.member("u-none", "none@x.com", "")

	cases := []struct {
		name   string
		token  string
		method string
		target string
		want   int
	}{
		{"technician cannot list roles", tech, http.MethodGet, "/v1/roles", http.StatusForbidden},
		{"technician cannot list invitations", tech, http.MethodGet, "/v1/invitations", http.StatusForbidden},
		{"office staff reads invitations", office, http.MethodGet, "/v1/invitations", http.StatusOK},
		{"office staff reads profiles", office, http.MethodGet, "/v1/profiles", http.StatusOK},
		{"office staff cannot delete invitations", office, http.MethodDelete, "/v1/invitations/x", http.StatusForbidden},
		{"admin manage covers read", admin, http.MethodGet, "/v1/roles", http.StatusOK},
		{"role-less user has no access", roleless, http.MethodGet, "/v1/profiles", http.StatusForbidden},
		{"role-less user still sees themselves", roleless, http.MethodGet, "/v1/me", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := p.do(tc.method, tc.target, tc.token, "")
			require.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}
}

func TestAPI_RoleAdministration(t *testing.T) {
	p := newTestPortal(t)
	admin := p.member("u-admin", "admin@x.com", "admin")

	rec := p.do(http.MethodPost, "/v1/roles", admin, `{"name":"dispatcher","display_name":"Dispatcher"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	role := decode[portalapi.RoleInfo](t, rec.Body.Bytes())
	require.False(t, role.IsSystem)

	rec = p.do(http.MethodPost, "/v1/roles", admin, `{"name":"dispatcher"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = p.do(http.MethodPost, "/v1/roles", admin, `{"name":"Bad Name"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = p.do(http.MethodPost, "/v1/roles", admin, `{"name":"x","unknown":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = p.do(http.MethodPost, "/v1/roles/"+role.ID+"/permissions", admin, `{"permission":"work_orders:read"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, []string{"work_orders:read"}, decode[portalapi.RoleInfo](t, rec.Body.Bytes()).Permissions)

	rec = p.do(http.MethodPost, "/v1/roles/"+role.ID+"/permissions", admin, `{"permission":"nonsense"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = p.do(http.MethodPatch, "/v1/roles/"+role.ID, admin, `{"display_name":"Dispatch"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Dispatch", decode[portalapi.RoleInfo](t, rec.Body.Bytes()).DisplayName)

	rec = p.do(http.MethodDelete, "/v1/roles/"+p.roles["admin"], admin, "")
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, portalapi.ErrorCodeSystemRole, decode[portalapi.APIError](t, rec.Body.Bytes()).Code)

	rec = p.do(http.MethodDelete, "/v1/roles/"+role.ID, admin, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = p.do(http.MethodGet, "/v1/roles/"+role.ID, admin, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_Invitations(t *testing.T) {
	p := newTestPortal(t)
	admin := p.member("u-admin", "admin@x.com", "admin")

	rec := p.do(http.MethodPost, "/v1/invitations", admin, `{"email":"New@X.com","role":"technician","is_technician":true}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	inv := decode[portalapi.InvitationInfo](t, rec.Body.Bytes())
	require.Equal(t, "new@x.com", inv.Email)
	require.Equal(t, "u-admin", inv.CreatedBy)

	rec = p.do(http.MethodPost, "/v1/invitations", admin, `{"email":"new@x.com"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = p.do(http.MethodPost, "/v1/invitations", admin, `{"email":"admin@x.com"}`)
	require.Equal(t, http.StatusConflict, rec.Code, "already a member")

	rec = p.do(http.MethodPost, "/v1/invitations", admin, `{"email":"nope"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = p.do(http.MethodGet, "/v1/invitations", admin, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[portalapi.ListInvitationsResponse](t, rec.Body.Bytes()).Invitations, 1)

	rec = p.do(http.MethodDelete, "/v1/invitations/"+inv.ID, admin, "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = p.do(http.MethodDelete, "/v1/invitations/"+inv.ID, admin, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_ProfileRoleChangeAndRefresh(t *testing.T) {
	p := newTestPortal(t)
	admin := p.member("u-admin", "admin@x.com", "admin")
	tech := p.member("u-tech", "tech@x.com", "technician")

	// Prime the technician's cached permission set
	rec := p.do(http.MethodGet, "/v1/invitations", tech, "")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = p.do(http.MethodPatch, "/v1/profiles/u-tech", admin, `{"role":"office_staff"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, p.roles["office_staff"], *decode[portalapi.ProfileInfo](t, rec.Body.Bytes()).RoleID)

	// Still served from the cache
	rec = p.do(http.MethodGet, "/v1/invitations", tech, "")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = p.do(http.MethodPost, "/v1/me/permissions/refresh", tech, "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, decode[portalapi.MeResponse](t, rec.Body.Bytes()).Permissions, "invitations:read")

	rec = p.do(http.MethodGet, "/v1/invitations", tech, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = p.do(http.MethodPatch, "/v1/profiles/u-tech", admin, `{"role":"x","clear_role":true}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = p.do(http.MethodPatch, "/v1/profiles/u-tech", admin, `{"is_active":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, decode[portalapi.ProfileInfo](t, rec.Body.Bytes()).IsActive)

	rec = p.do(http.MethodGet, "/v1/me", tech, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = p.do(http.MethodPatch, "/v1/profiles/missing", admin, `{"is_active":true}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_CompleteOnboarding(t *testing.T) {
	p := newTestPortal(t)
	token := p.member("u1", "a@x.com", "")
	require.NoError(t, p.store.Profiles().SetOnboardingCompleted(t.Context(), "u1", false))

	rec := p.do(http.MethodPost, "/v1/me/onboarding", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	me := decode[portalapi.MeResponse](t, rec.Body.Bytes())
	require.True(t, me.Profile.OnboardingCompleted)
	require.Empty(t, me.Permissions)
	require.Nil(t, me.Role)
}

func TestSystemEndpoints(t *testing.T) {
	p := newTestPortal(t)

	rec := p.do(http.MethodGet, "/livez", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "test", decode[portalapi.HealthResponse](t, rec.Body.Bytes()).Version)

	rec = p.do(http.MethodGet, "/readyz", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode[portalapi.HealthResponse](t, rec.Body.Bytes()).Checks.Database)

	rec = p.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "portal_http_requests_total")

	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
