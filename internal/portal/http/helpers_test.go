package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/fieldops/internal/portal/domain"
	"github.com/aussiebroadwan/fieldops/internal/portal/identity"
	"github.com/aussiebroadwan/fieldops/internal/portal/service"
	"github.com/aussiebroadwan/fieldops/internal/portal/store"
	"github.com/aussiebroadwan/fieldops/internal/portal/store/drivers/sqlite"
	"github.com/aussiebroadwan/fieldops/internal/portal/telemetry"
	"github.com/aussiebroadwan/fieldops/pkg/jwtx"
	"github.com/aussiebroadwan/fieldops/pkg/portalapi"
	"github.com/aussiebroadwan/fieldops/pkg/slogx"
)

type fakeProvider struct {
	identities map[string]domain.Identity
}

func (p *fakeProvider) AuthCodeURL(state string) string {
	return "https://idp.test/authorize?state=" + url.QueryEscape(state)
}

func (p *fakeProvider) Exchange(_ context.Context, code string) (domain.Identity, error) {
	ident, ok := p.identities[code]
	if !ok {
		return domain.Identity{}, identity.ErrExchange
	}
	return ident, nil
}

type testPortal struct {
	t        *testing.T
	store    store.Store
	router   *Router
	provider *fakeProvider
	sessions *service.SessionService
	roles    map[string]string
}

func newTestPortal(t *testing.T) *testPortal {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	catalog, err := service.DefaultCatalog()
	require.NoError(t, err)
	_, err = (&service.SeedService{Store: st}).Seed(ctx, catalog)
	require.NoError(t, err)

	roles, err := st.Roles().ListRoles(ctx)
	require.NoError(t, err)
	roleIDs := map[string]string{}
	for _, r := range roles {
		roleIDs[r.Name] = r.ID
	}

	resolver, err := service.NewRedirectResolver("https://portal.test", nil, false)
	require.NoError(t, err)

	state, err := jwtx.NewStateSigner([]byte(strings.Repeat("k", 32)), "https://portal.test", 0)
	require.NoError(t, err)

	metrics := telemetry.NewMetrics()
	provider := &fakeProvider{identities: map[string]domain.Identity{}}
	sessions := &service.SessionService{Store: st, TTL: time.Hour}

	r := NewRouter("test", st, metrics, slogx.Discard())
	r.StateCodec = state
	r.SessionService = sessions
	r.AccessService = service.NewAccessService(st, 0, 0, metrics)
	r.RolesService = &service.RolesService{Store: st}
	r.InviteService = &service.InviteService{Store: st}
	r.ProfileService = &service.ProfileService{Store: st}
	r.ClaimService = &service.ClaimService{
		Store:     st,
		Provider:  provider,
		Sessions:  sessions,
		Redirects: resolver,
		Metrics:   metrics,
	}
	r.ApplyRoutes()

	return &testPortal{t: t, store: st, router: r, provider: provider, sessions: sessions, roles: roleIDs}
}

// member creates an active, onboarded profile with a live session and
// returns the session token.
func (p *testPortal) member(subject, email, role string) string {
	p.t.Helper()
	ctx := context.Background()

	var roleID *string
	if role != "" {
		id := p.roles[role]
		roleID = &id
	}

	now := time.Now().UTC()
	require.NoError(p.t, p.store.Profiles().UpsertProfile(ctx, domain.Profile{
		ID:                  subject,
		Email:               email,
		DisplayName:         email,
		RoleID:              roleID,
		IsActive:            true,
		OnboardingCompleted: true,
		CreatedAt:           now,
		UpdatedAt:           now,
	}))

	_, token, err := p.sessions.Establish(ctx, domain.Identity{SubjectID: subject, Email: email})
	require.NoError(p.t, err)
	return token
}

func (p *testPortal) do(method, target, token string, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	p.t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.AddCookie(&http.Cookie{Name: portalapi.SessionCookieName, Value: token})
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	p.router.ServeHTTP(rec, req)
	return rec
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
