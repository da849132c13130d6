package service

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/aussiebroadwan/fieldops/internal/portal/domain"
)

// Paths the sign-in callback can redirect to.
const (
	PathOnboarding   = "/onboarding"
	PathDashboard    = "/dashboard"
	PathUnauthorized = "/unauthorized"
	PathAuthError    = "/auth/auth-code-error"
	PathLogin        = "/login"
)

// DecideRedirect picks where a signed-in profile lands. Onboarding always
// wins over the requested path.
func DecideRedirect(p domain.Profile, requestedNext string) string {
	if !p.OnboardingCompleted {
		return PathOnboarding
	}
	if requestedNext == "" {
		return PathDashboard
	}
	return requestedNext
}

// SanitizeNext keeps next only when it is a same-origin absolute path.
// Anything that could leave the portal ("//host", "https://", "/\host") is
// dropped.
func SanitizeNext(next string) string {
	if next == "" || next[0] != '/' {
		return ""
	}
	if strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n\t") {
		return ""
	}

	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Opaque != "" {
		return ""
	}
	return next
}

// UnauthorizedPath is the rejection page carrying the email for display.
func UnauthorizedPath(email string) string {
	return PathUnauthorized + "?email=" + url.QueryEscape(email)
}

// ForwardedRequest is the slice of the inbound request used to rebuild the
// externally reachable address.
type ForwardedRequest struct {
	ForwardedHost  string
	ForwardedProto string
}

// RedirectResolver composes absolute redirect URLs. A forwarded host is only
// trusted outside local mode and only when it is on the allow-list.
type RedirectResolver struct {
	BaseURL      *url.URL
	AllowedHosts []string
	Local        bool
}

var ErrInvalidBaseURL = errors.New("invalid base url")

func NewRedirectResolver(baseURL string, allowedHosts []string, local bool) (*RedirectResolver, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	hosts := make([]string, 0, len(allowedHosts))
	for _, h := range allowedHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			hosts = append(hosts, h)
		}
	}

	return &RedirectResolver{BaseURL: u, AllowedHosts: hosts, Local: local}, nil
}

// Resolve returns scheme://host[base path]path for the given path, which may
// carry a query string.
func (r *RedirectResolver) Resolve(req ForwardedRequest, path string) string {
	scheme, host := r.BaseURL.Scheme, r.BaseURL.Host

	if !r.Local && req.ForwardedHost != "" && r.allowed(req.ForwardedHost) {
		host = req.ForwardedHost
		if req.ForwardedProto == "http" || req.ForwardedProto == "https" {
			scheme = req.ForwardedProto
		}
	}

	prefix := strings.TrimRight(r.BaseURL.Path, "/")
	return scheme + "://" + host + prefix + path
}

func (r *RedirectResolver) allowed(host string) bool {
	return slices.Contains(r.AllowedHosts, strings.ToLower(host))
}
