package httpx_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/fieldops/pkg/httpx"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func requestFrom(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ip + ":12345"
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIPKeyExtractor(t *testing.T) {
	t.Run("uses RemoteAddr", func(t *testing.T) {
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(requestFrom("192.168.1.1")))
	})

	t.Run("ignores forwarding headers", func(t *testing.T) {
		req := requestFrom("192.168.1.1")
		req.Header.Set("X-Forwarded-For", "203.0.113.1")
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})
}

func TestForwardedIPKeyExtractor(t *testing.T) {
	t.Run("prefers X-Forwarded-For", func(t *testing.T) {
		req := requestFrom("192.168.1.1")
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 192.168.1.1")
		require.Equal(t, "203.0.113.1", httpx.ForwardedIPKeyExtractor(req))
	})

	t.Run("falls back to X-Real-IP", func(t *testing.T) {
		req := requestFrom("192.168.1.1")
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "203.0.113.2", httpx.ForwardedIPKeyExtractor(req))
	})

	t.Run("falls back to RemoteAddr", func(t *testing.T) {
		require.Equal(t, "192.168.1.1", httpx.ForwardedIPKeyExtractor(requestFrom("192.168.1.1")))
	})
}

func TestSessionKeyExtractor(t *testing.T) {
	req := requestFrom("192.168.1.1")
	require.Empty(t, httpx.SessionKeyExtractor(req))

	req = req.WithContext(httpx.WithSession(req.Context(), "sess-1", "sub-1"))
	require.Equal(t, "sess-1", httpx.SessionKeyExtractor(req))
}

func TestCompositeKeyExtractor(t *testing.T) {
	req := requestFrom("192.168.1.1")
	extractor := httpx.CompositeKeyExtractor(":", httpx.IPKeyExtractor, httpx.SessionKeyExtractor)
	require.Equal(t, "192.168.1.1", extractor(req))

	req = req.WithContext(httpx.WithSession(req.Context(), "sess-1", "sub-1"))
	require.Equal(t, "192.168.1.1:sess-1", extractor(req))
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("allows requests under limit", func(t *testing.T) {
		h := httpx.RateLimitMiddleware(httpx.RateLimitConfig{
			RequestsPerWindow: 5,
			Window:            time.Second,
			Burst:             5,
		}, httpx.IPKeyExtractor)(okHandler)

		for i := range 5 {
			require.Equal(t, http.StatusOK, serve(h, requestFrom("192.168.1.1")).Code, "request %d should succeed", i+1)
		}
	})

	t.Run("blocks requests over limit", func(t *testing.T) {
		h := httpx.RateLimitMiddleware(httpx.RateLimitConfig{
			RequestsPerWindow: 3,
			Window:            time.Minute,
			Burst:             3,
		}, httpx.IPKeyExtractor)(okHandler)

		for range 3 {
			require.Equal(t, http.StatusOK, serve(h, requestFrom("192.168.1.1")).Code)
		}

		rec := serve(h, requestFrom("192.168.1.1"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
	})

	t.Run("different keys are tracked separately", func(t *testing.T) {
		h := httpx.RateLimitMiddleware(httpx.RateLimitConfig{
			RequestsPerWindow: 2,
			Window:            time.Minute,
			Burst:             2,
		}, httpx.IPKeyExtractor)(okHandler)

		for range 2 {
			require.Equal(t, http.StatusOK, serve(h, requestFrom("192.168.1.1")).Code)
		}
		require.Equal(t, http.StatusTooManyRequests, serve(h, requestFrom("192.168.1.1")).Code)
		require.Equal(t, http.StatusOK, serve(h, requestFrom("192.168.1.2")).Code)
	})

	t.Run("empty key is not limited", func(t *testing.T) {
		h := httpx.RateLimitMiddleware(httpx.RateLimitConfig{
			RequestsPerWindow: 1,
			Window:            time.Minute,
			Burst:             1,
		}, func(*http.Request) string { return "" })(okHandler)

		for range 3 {
			require.Equal(t, http.StatusOK, serve(h, requestFrom("192.168.1.1")).Code)
		}
	})
}

func TestRateLimitBySession(t *testing.T) {
	h := httpx.RateLimitBySession(httpx.RateLimitConfig{
		RequestsPerWindow: 1,
		Window:            time.Minute,
		Burst:             1,
	})(okHandler)

	withSession := func(id string) *http.Request {
		req := requestFrom("192.168.1.1")
		return req.WithContext(httpx.WithSession(req.Context(), id, "sub"))
	}

	require.Equal(t, http.StatusOK, serve(h, withSession("sess-1")).Code)
	require.Equal(t, http.StatusTooManyRequests, serve(h, withSession("sess-1")).Code)

	// Same IP, different session
	require.Equal(t, http.StatusOK, serve(h, withSession("sess-2")).Code)

	// Anonymous falls back to IP
	require.Equal(t, http.StatusOK, serve(h, requestFrom("192.168.1.1")).Code)
	require.Equal(t, http.StatusTooManyRequests, serve(h, requestFrom("192.168.1.1")).Code)
}

func TestRateLimitProfiles(t *testing.T) {
	for name, config := range map[string]httpx.RateLimitConfig{
		"auth":  httpx.AuthLimit,
		"admin": httpx.AdminLimit,
		"api":   httpx.APILimit,
	} {
		t.Run(name, func(t *testing.T) {
			require.Greater(t, config.RequestsPerWindow, 0)
			require.Greater(t, config.Window, time.Duration(0))
			require.Greater(t, config.Burst, 0)
		})
	}

	require.Less(t, httpx.AuthLimit.RequestsPerWindow, httpx.AdminLimit.RequestsPerWindow)
	require.Less(t, httpx.AdminLimit.RequestsPerWindow, httpx.APILimit.RequestsPerWindow)
}

func TestRateLimitHeaders(t *testing.T) {
	h := httpx.RateLimitMiddleware(httpx.RateLimitConfig{
		RequestsPerWindow: 1,
		Window:            time.Minute,
		Burst:             1,
	}, httpx.IPKeyExtractor)(okHandler)

	require.Equal(t, http.StatusOK, serve(h, requestFrom("192.168.1.1")).Code)

	rec := serve(h, requestFrom("192.168.1.1"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
	require.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Contains(t, rec.Body.String(), "rate_limit_exceeded")
	require.Contains(t, rec.Body.String(), "error_description")
}

func TestParseRateLimitFromEnv(t *testing.T) {
	defaultConfig := httpx.RateLimitConfig{
		RequestsPerWindow: 10,
		Window:            time.Minute,
		Burst:             10,
	}

	t.Run("no env keeps defaults", func(t *testing.T) {
		require.Equal(t, defaultConfig, httpx.ParseRateLimitFromEnv("TEST", defaultConfig))
	})

	t.Run("overrides all parameters", func(t *testing.T) {
		t.Setenv("RATELIMIT_TEST_REQUESTS", "200")
		t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "30")
		t.Setenv("RATELIMIT_TEST_BURST", "250")

		config := httpx.ParseRateLimitFromEnv("TEST", defaultConfig)
		require.Equal(t, 200, config.RequestsPerWindow)
		require.Equal(t, 30*time.Second, config.Window)
		require.Equal(t, 250, config.Burst)
	})

	t.Run("invalid and zero values keep defaults", func(t *testing.T) {
		t.Setenv("RATELIMIT_TEST_REQUESTS", "invalid")
		t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "-10")
		t.Setenv("RATELIMIT_TEST_BURST", "0")

		require.Equal(t, defaultConfig, httpx.ParseRateLimitFromEnv("TEST", defaultConfig))
	})
}

func BenchmarkRateLimitManyIPs(b *testing.B) {
	h := httpx.RateLimitMiddleware(httpx.RateLimitConfig{
		RequestsPerWindow: 1000000,
		Window:            time.Minute,
		Burst:             1000,
	}, httpx.IPKeyExtractor)(okHandler)

	for i := 0; b.Loop(); i++ {
		req := requestFrom(fmt.Sprintf("192.168.%d.%d", i%255, (i/255)%255))
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
}
