package portal_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/fieldops/internal/portal/app"
	portalhttp "github.com/aussiebroadwan/fieldops/internal/portal/http"
	"github.com/aussiebroadwan/fieldops/internal/portal/identity"
	"github.com/aussiebroadwan/fieldops/internal/portal/identity/identitytest"
	"github.com/aussiebroadwan/fieldops/internal/portal/service"
	"github.com/aussiebroadwan/fieldops/pkg/portalapi"
)

/*
 * End-to-end helpers: the full application (real OIDC provider, sqlite file
 * store, router and services built by app.New) served from httptest against
 * an in-process identity provider.
 */

const testSecret = "e2e-portal-secret-that-is-long-enough"

type portal struct {
	t      *testing.T
	url    string
	issuer *identitytest.Issuer
	dsn    string
	http   *http.Client
}

func setupPortal(t *testing.T) *portal {
	t.Helper()
	ctx := context.Background()

	issuer := identitytest.New(t)

	// The base URL must be known before the app is built, so the server
	// starts first and is pointed at the handler afterwards.
	var (
		mu      sync.RWMutex
		handler http.Handler = http.NotFoundHandler()
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.RLock()
		h := handler
		mu.RUnlock()
		h.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	dsn := filepath.Join(t.TempDir(), "portal.db")
	cfg := app.Config{
		BaseURL:        srv.URL,
		Secret:         testSecret,
		DatabaseDriver: app.DriverSQLite,
		DatabaseDSN:    dsn,
		OIDC:           oidcConfig(issuer, srv.URL),

		SessionTTL:           time.Hour,
		PermissionCacheTTL:   time.Minute,
		PermissionCacheSize:  64,
		Env:                  "test",
		LogLevel:             "error",
		LogFormat:            "text",
		ShutdownGracePeriod:  time.Second,
		HousekeepingInterval: time.Hour,
	}

	application, err := app.New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Close() })

	mu.Lock()
	handler = application.Handler()
	mu.Unlock()

	return &portal{
		t:      t,
		url:    srv.URL,
		issuer: issuer,
		dsn:    dsn,
		http: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// invite puts email on the guest list the way `portal invite create` does,
// through a second connection to the same database file.
func (p *portal) invite(req service.InviteRequest) {
	p.t.Helper()

	st, err := app.OpenStore(app.Config{DatabaseDriver: app.DriverSQLite, DatabaseDSN: p.dsn})
	require.NoError(p.t, err)
	defer st.Close()

	_, err = (&service.InviteService{Store: st}).Create(context.Background(), req, "e2e")
	require.NoError(p.t, err)
}

// signIn runs the browser side of the login: /auth/login, the identity
// provider round trip and /auth/callback. It returns the callback redirect and
// the session token (empty when no session was granted).
func (p *portal) signIn(subject, email, next string) (string, string) {
	p.t.Helper()

	// 1. Start the login
	resp, err := p.http.Get(p.url + "/auth/login?next=" + url.QueryEscape(next))
	require.NoError(p.t, err)
	_ = resp.Body.Close()
	require.Equal(p.t, http.StatusFound, resp.StatusCode)

	authorize, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(p.t, err)
	require.True(p.t, strings.HasPrefix(authorize.String(), p.issuer.URL()+"/authorize"))
	state := authorize.Query().Get("state")
	require.NotEmpty(p.t, state)

	stateCookie := cookie(resp, portalhttp.LoginStateCookieName)
	require.NotNil(p.t, stateCookie)

	// 2. The identity provider authenticates the user and issues a code
	code := "code-" + subject
	p.issuer.Issue(code, jwt.MapClaims{"sub": subject, "email": email, "email_verified": true})

	// 3. Come back through the callback
	req, err := http.NewRequest(http.MethodGet,
		p.url+"/auth/callback?code="+url.QueryEscape(code)+"&state="+url.QueryEscape(state), nil)
	require.NoError(p.t, err)
	req.AddCookie(stateCookie)

	resp, err = p.http.Do(req)
	require.NoError(p.t, err)
	_ = resp.Body.Close()
	require.Equal(p.t, http.StatusFound, resp.StatusCode)

	token := ""
	if c := cookie(resp, portalapi.SessionCookieName); c != nil && c.MaxAge > 0 {
		token = c.Value
	}
	return resp.Header.Get("Location"), token
}

func (p *portal) client(token string) *portalapi.Client {
	return portalapi.NewClient(p.url, token)
}

func cookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func oidcConfig(issuer *identitytest.Issuer, baseURL string) identity.Config {
	return identity.Config{
		IssuerURL:    issuer.URL(),
		ClientID:     identitytest.ClientID,
		ClientSecret: "e2e-secret",
		RedirectURL:  baseURL + "/auth/callback",
	}
}
