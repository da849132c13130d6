// Package identitytest runs a minimal OpenID Connect issuer for tests:
// discovery, JWKS, a token endpoint that hands out a registered ID token per
// authorization code, and userinfo.
package identitytest

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	ClientID = "portal"
	KeyID    = "test-key"
)

type Issuer struct {
	srv *httptest.Server
	key *rsa.PrivateKey

	mu       sync.Mutex
	claims   map[string]jwt.MapClaims
	userinfo map[string]any
}

// New starts an issuer that is closed when t finishes.
func New(t testing.TB) *Issuer {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("identitytest: generate key: %v", err)
	}

	f := &Issuer{key: key, claims: map[string]jwt.MapClaims{}}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /.well-known/openid-configuration", f.handleDiscovery)
	mux.HandleFunc("GET /jwks", f.handleJWKS)
	mux.HandleFunc("POST /token", f.handleToken)
	mux.HandleFunc("GET /userinfo", f.handleUserinfo)

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *Issuer) URL() string { return f.srv.URL }

// Issue registers an ID token for code with iss, aud, iat and exp filled in.
// Keys in extra override the defaults.
func (f *Issuer) Issue(code string, extra jwt.MapClaims) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": f.srv.URL,
		"aud": ClientID,
		"iat": now.Unix(),
		"exp": now.Add(5 * time.Minute).Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}

	f.mu.Lock()
	f.claims[code] = claims
	f.mu.Unlock()
}

// SetUserinfo sets the userinfo response. nil makes the endpoint 404.
func (f *Issuer) SetUserinfo(info map[string]any) {
	f.mu.Lock()
	f.userinfo = info
	f.mu.Unlock()
}

func (f *Issuer) sign(claims jwt.MapClaims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = KeyID
	return tok.SignedString(f.key)
}

func (f *Issuer) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"issuer":                                f.srv.URL,
		"authorization_endpoint":                f.srv.URL + "/authorize",
		"token_endpoint":                        f.srv.URL + "/token",
		"jwks_uri":                              f.srv.URL + "/jwks",
		"userinfo_endpoint":                     f.srv.URL + "/userinfo",
		"id_token_signing_alg_values_supported": []string{"RS256"},
	})
}

func (f *Issuer) handleJWKS(w http.ResponseWriter, r *http.Request) {
	pub := f.key.PublicKey
	writeJSON(w, map[string]any{"keys": []map[string]string{{
		"kty": "RSA",
		"kid": KeyID,
		"alg": "RS256",
		"use": "sig",
		"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
		"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
	}}})
}

func (f *Issuer) handleToken(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()

	f.mu.Lock()
	claims, ok := f.claims[r.PostForm.Get("code")]
	f.mu.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_grant"}`))
		return
	}

	idToken, err := f.sign(claims)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"access_token": "access-token",
		"token_type":   "Bearer",
		"expires_in":   3600,
		"id_token":     idToken,
	})
}

func (f *Issuer) handleUserinfo(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	info := f.userinfo
	f.mu.Unlock()

	if info == nil {
		http.Error(w, "no userinfo", http.StatusNotFound)
		return
	}
	writeJSON(w, info)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
