package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/fieldops/pkg/httpx"
)

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.ChainFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}, mw("a"), mw("b"))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, []string{"a", "b", "handler"}, order)
}

func TestCookieConfig(t *testing.T) {
	cfg := httpx.CookieConfig{Secure: true}

	rec := httptest.NewRecorder()
	cfg.SetCookie(rec, "portal_session", "tok", time.Hour)
	set := rec.Header().Get("Set-Cookie")
	require.True(t, strings.HasPrefix(set, "portal_session=tok"))
	require.Contains(t, set, "HttpOnly")
	require.Contains(t, set, "Secure")
	require.Contains(t, set, "SameSite=Lax")
	require.Contains(t, set, "Path=/")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "portal_session", Value: "tok"})
	require.Equal(t, "tok", httpx.CookieValue(req, "portal_session"))
	require.Empty(t, httpx.CookieValue(req, "other"))

	rec = httptest.NewRecorder()
	cfg.ClearCookie(rec, "portal_session")
	require.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestForwardedHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.Empty(t, httpx.ForwardedHost(req))

	req.Header.Set("X-Forwarded-Host", "portal.example.com, internal:8080")
	req.Header.Set("X-Forwarded-Proto", "HTTPS")
	require.Equal(t, "portal.example.com", httpx.ForwardedHost(req))
	require.Equal(t, "https", httpx.ForwardedProto(req))
}

func TestRedirect(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.Redirect(rec, "https://portal.example.com/dashboard")
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "https://portal.example.com/dashboard", rec.Header().Get("Location"))
	require.Empty(t, rec.Body.String())
}
