package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/aussiebroadwan/fieldops/internal/portal/domain"
	"github.com/aussiebroadwan/fieldops/pkg/slogx"
)

// OIDCProvider exchanges codes against an OpenID Connect issuer and verifies
// the returned ID token.
type OIDCProvider struct {
	provider     *oidc.Provider
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config
}

type idTokenClaims struct {
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified"`
}

// NewOIDCProvider runs discovery against cfg.IssuerURL.
func NewOIDCProvider(ctx context.Context, cfg Config) (*OIDCProvider, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("identity: discover issuer: %w", err)
	}

	return &OIDCProvider{
		provider: provider,
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     provider.Endpoint(),
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopesWithRequired(cfg.Scopes),
		},
	}, nil
}

func (p *OIDCProvider) AuthCodeURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state)
}

func (p *OIDCProvider) Exchange(ctx context.Context, code string) (domain.Identity, error) {
	log := slogx.FromContext(ctx)

	if code == "" {
		return domain.Identity{}, fmt.Errorf("%w: missing code", ErrExchange)
	}

	// 1. Exchange code for tokens
	token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		log.Warn("oidc code exchange failed", slog.Any("error", err))
		return domain.Identity{}, fmt.Errorf("%w: %w", ErrExchange, err)
	}

	// 2. Verify the ID token
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return domain.Identity{}, fmt.Errorf("%w: missing id_token", ErrExchange)
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		log.Warn("oidc id token rejected", slog.Any("error", err))
		return domain.Identity{}, fmt.Errorf("%w: %w", ErrExchange, err)
	}

	var claims idTokenClaims
	if err := idToken.Claims(&claims); err != nil {
		return domain.Identity{}, fmt.Errorf("%w: %w", ErrExchange, err)
	}

	// 3. Some issuers only release email through userinfo
	if claims.Email == "" {
		info, err := p.provider.UserInfo(ctx, oauth2.StaticTokenSource(token))
		if err != nil {
			log.Warn("oidc userinfo failed", slog.Any("error", err))
			return domain.Identity{}, fmt.Errorf("%w: %w", ErrExchange, err)
		}
		claims.Email = info.Email
		claims.EmailVerified = &info.EmailVerified
	}

	if idToken.Subject == "" {
		return domain.Identity{}, fmt.Errorf("%w: missing subject", ErrExchange)
	}
	if claims.Email == "" {
		return domain.Identity{}, fmt.Errorf("%w: missing email", ErrExchange)
	}
	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return domain.Identity{}, fmt.Errorf("%w: %w", ErrExchange, errUnverifiedEmail)
	}

	return domain.Identity{SubjectID: idToken.Subject, Email: claims.Email}, nil
}

var errUnverifiedEmail = errors.New("email not verified")
