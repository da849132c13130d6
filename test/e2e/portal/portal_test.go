package portal_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/fieldops/internal/portal/service"
	"github.com/aussiebroadwan/fieldops/pkg/portalapi"
)

// TestGuestListLifecycle walks the whole guest list: an administrator invited
// out of band claims their profile, invites a technician through the API, the
// technician claims theirs and is later deactivated.
func TestGuestListLifecycle(t *testing.T) {
	p := setupPortal(t)
	ctx := t.Context()

	health, err := p.client("").Livez(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)

	// 1. Bootstrap administrator
	p.invite(service.InviteRequest{Email: "admin@example.com", Role: "admin", OnboardingCompleted: true})

	location, adminToken := p.signIn("admin-1", "Admin@Example.com", "/admin/roles")
	require.Equal(t, p.url+"/admin/roles", location)
	require.NotEmpty(t, adminToken)

	admin := p.client(adminToken)
	me, err := admin.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "admin-1", me.Profile.ID)
	require.Equal(t, "admin@example.com", me.Profile.Email)
	require.NotNil(t, me.Role)
	require.Equal(t, "admin", me.Role.Name)
	require.Contains(t, me.Permissions, "invitations:manage")

	// 2. Invite a technician through the API
	inv, err := admin.CreateInvitation(ctx, portalapi.CreateInvitationRequest{
		Email:        "Tech@Example.com",
		Role:         "technician",
		IsTechnician: true,
	})
	require.NoError(t, err)
	require.Equal(t, "tech@example.com", inv.Email)

	_, err = admin.CreateInvitation(ctx, portalapi.CreateInvitationRequest{Email: "tech@example.com"})
	requireAPIStatus(t, err, http.StatusConflict)

	list, err := admin.ListInvitations(ctx)
	require.NoError(t, err)
	require.Len(t, list.Invitations, 1)

	// 3. Technician claims the invitation and lands on onboarding
	location, techToken := p.signIn("tech-1", "tech@example.com", "/work-orders")
	require.Equal(t, p.url+"/onboarding", location)
	require.NotEmpty(t, techToken)

	list, err = admin.ListInvitations(ctx)
	require.NoError(t, err)
	require.Empty(t, list.Invitations, "claimed invitation is consumed")

	tech := p.client(techToken)
	me, err = tech.Me(ctx)
	require.NoError(t, err)
	require.True(t, me.Profile.IsTechnician)
	require.Contains(t, me.Permissions, "work_orders:update")
	require.NotContains(t, me.Permissions, "roles:manage")

	_, err = tech.ListRoles(ctx)
	requireAPIStatus(t, err, http.StatusForbidden)

	// 4. Deactivation locks the technician out on the next request
	inactive := false
	_, err = admin.UpdateProfile(ctx, "tech-1", portalapi.UpdateProfileRequest{IsActive: &inactive})
	require.NoError(t, err)

	_, err = tech.Me(ctx)
	requireAPIStatus(t, err, http.StatusUnauthorized)

	location, token := p.signIn("tech-1", "tech@example.com", "")
	require.Empty(t, token)
	require.Equal(t, p.url+"/unauthorized?email=tech%40example.com", location)
}

func TestStrangerIsTurnedAway(t *testing.T) {
	p := setupPortal(t)

	location, token := p.signIn("stranger", "someone@elsewhere.com", "/dashboard")
	require.Equal(t, p.url+"/unauthorized?email=someone%40elsewhere.com", location)
	require.Empty(t, token)

	_, err := p.client("").Me(t.Context())
	requireAPIStatus(t, err, http.StatusUnauthorized)
}

func requireAPIStatus(t *testing.T, err error, status int) {
	t.Helper()

	var apiErr *portalapi.APIError
	require.True(t, errors.As(err, &apiErr), "expected *portalapi.APIError, got %v", err)
	require.Equal(t, status, apiErr.StatusCode)
}
