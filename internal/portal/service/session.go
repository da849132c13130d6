package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/fieldops/internal/portal/domain"
	"github.com/aussiebroadwan/fieldops/internal/portal/store"
	"github.com/aussiebroadwan/fieldops/pkg/cryptox"
	"github.com/aussiebroadwan/fieldops/pkg/idx"
	"github.com/aussiebroadwan/fieldops/pkg/slogx"
)

const DefaultSessionTTL = 12 * time.Hour

var ErrSessionInvalid = errors.New("session invalid or expired")

// Sessions is the part of session handling the claiming process needs. The
// session is passed around as an explicit value, never read from ambient
// request state.
type Sessions interface {
	Establish(ctx context.Context, identity domain.Identity) (domain.Session, string, error)
	Revoke(ctx context.Context, sessionID string) error
}

type SessionService struct {
	Store store.Store
	TTL   time.Duration

	// Now is overridable in tests.
	Now func() time.Time
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *SessionService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultSessionTTL
	}
	return s.TTL
}

// Establish creates a session for an authenticated identity and returns the
// opaque token for the cookie. Only the token's fingerprint is stored.
func (s *SessionService) Establish(ctx context.Context, identity domain.Identity) (domain.Session, string, error) {
	log := slogx.FromContext(ctx)

	// 1. Generate the opaque token
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate session token", slog.Any("error", err))
		return domain.Session{}, "", err
	}

	// 2. Persist the fingerprint
	now := s.now()
	sess := domain.Session{
		ID:        idx.NewAt(now).String(),
		TokenHash: cryptox.FingerprintToken(token),
		SubjectID: identity.SubjectID,
		Email:     identity.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl()),
	}
	if err := s.Store.Sessions().CreateSession(ctx, sess); err != nil {
		log.Error("failed to create session",
			slog.String("subject_id", identity.SubjectID),
			slog.Any("error", err),
		)
		return domain.Session{}, "", err
	}

	log.Debug("session established",
		slog.String("session_id", sess.ID),
		slog.String("subject_id", sess.SubjectID),
	)
	return sess, token, nil
}

// Revoke signs the session out. Revoking an unknown session is not an error.
func (s *SessionService) Revoke(ctx context.Context, sessionID string) error {
	err := s.Store.Sessions().RevokeSession(ctx, sessionID, s.now())
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		slogx.FromContext(ctx).Error("failed to revoke session",
			slog.String("session_id", sessionID),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

// Resolve maps a cookie token to its live session.
func (s *SessionService) Resolve(ctx context.Context, token string) (domain.Session, error) {
	if token == "" {
		return domain.Session{}, ErrSessionInvalid
	}

	sess, err := s.Store.Sessions().GetSessionByTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, ErrSessionInvalid
		}
		return domain.Session{}, err
	}

	if !sess.IsLive(s.now()) {
		return domain.Session{}, ErrSessionInvalid
	}
	return sess, nil
}
