package identity

import (
	"context"
	"net/url"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/fieldops/internal/portal/identity/identitytest"
)

func newProvider(t *testing.T, issuer *identitytest.Issuer) *OIDCProvider {
	t.Helper()
	p, err := NewOIDCProvider(context.Background(), Config{
		IssuerURL:    issuer.URL(),
		ClientID:     identitytest.ClientID,
		ClientSecret: "secret",
		RedirectURL:  "https://portal.test/auth/callback",
	})
	require.NoError(t, err)
	return p
}

func TestOIDCProvider_Exchange(t *testing.T) {
	ctx := context.Background()
	issuer := identitytest.New(t)
	p := newProvider(t, issuer)

	issuer.Issue("good", jwt.MapClaims{"sub": "u1", "email": "A@X.com", "email_verified": true})

	ident, err := p.Exchange(ctx, "good")
	require.NoError(t, err)
	require.Equal(t, "u1", ident.SubjectID)
	require.Equal(t, "A@X.com", ident.Email)
}

func TestOIDCProvider_ExchangeFailures(t *testing.T) {
	ctx := context.Background()
	issuer := identitytest.New(t)
	p := newProvider(t, issuer)

	issuer.Issue("unverified", jwt.MapClaims{"sub": "u1", "email": "a@x.com", "email_verified": false})
	issuer.Issue("wrong-aud", jwt.MapClaims{"sub": "u1", "email": "a@x.com", "aud": "someone-else"})
	issuer.Issue("no-email", jwt.MapClaims{"sub": "u1"})

	for _, code := range []string{"", "unknown", "unverified", "wrong-aud", "no-email"} {
		_, err := p.Exchange(ctx, code)
		require.ErrorIs(t, err, ErrExchange, code)
	}
}

func TestOIDCProvider_FallsBackToUserinfo(t *testing.T) {
	ctx := context.Background()
	issuer := identitytest.New(t)
	p := newProvider(t, issuer)

	issuer.Issue("code", jwt.MapClaims{"sub": "u1"})
	issuer.SetUserinfo(map[string]any{"sub": "u1", "email": "a@x.com", "email_verified": true})

	ident, err := p.Exchange(ctx, "code")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", ident.Email)
}

func TestOIDCProvider_AuthCodeURL(t *testing.T) {
	issuer := identitytest.New(t)
	p := newProvider(t, issuer)

	u, err := url.Parse(p.AuthCodeURL("state-123"))
	require.NoError(t, err)
	require.Equal(t, "/authorize", u.Path)

	q := u.Query()
	require.Equal(t, "state-123", q.Get("state"))
	require.Equal(t, identitytest.ClientID, q.Get("client_id"))
	require.Equal(t, "code", q.Get("response_type"))
	require.Equal(t, "https://portal.test/auth/callback", q.Get("redirect_uri"))
	require.Equal(t, "openid email", q.Get("scope"))
}
