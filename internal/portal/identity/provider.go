// Package identity is the boundary to the external identity provider. The
// portal only ever asks it to turn a one-time code into a subject and email.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"slices"

	"github.com/aussiebroadwan/fieldops/internal/portal/domain"
)

// ErrExchange wraps every failure of a code exchange. Callers must not show
// the wrapped detail to the user.
var ErrExchange = errors.New("identity: code exchange failed")

// Provider is what the claiming process consumes.
type Provider interface {
	// AuthCodeURL is where the browser is sent to sign in.
	AuthCodeURL(state string) string

	// Exchange trades a one-time authorization code for the authenticated
	// identity. Any failure is ErrExchange.
	Exchange(ctx context.Context, code string) (domain.Identity, error)
}

var requiredScopes = []string{"openid", "email"}

type Config struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// ValidateConfig checks the configuration before any network call is made.
func ValidateConfig(cfg Config) error {
	if cfg.ClientID == "" {
		return errors.New("identity: client id is required")
	}
	if err := validateAbsoluteURL("issuer url", cfg.IssuerURL); err != nil {
		return err
	}
	if err := validateAbsoluteURL("redirect url", cfg.RedirectURL); err != nil {
		return err
	}
	return nil
}

func validateAbsoluteURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("identity: invalid %s: %w", name, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("identity: %s must be http(s), got %q", name, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("identity: %s has no host", name)
	}
	return nil
}

// scopesWithRequired adds openid and email when missing.
func scopesWithRequired(scopes []string) []string {
	out := slices.Clone(scopes)
	for _, s := range requiredScopes {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
