package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/fieldops/internal/portal/domain"
	"github.com/aussiebroadwan/fieldops/internal/portal/service"
	"github.com/aussiebroadwan/fieldops/internal/portal/store"
	"github.com/aussiebroadwan/fieldops/pkg/httpx"
	"github.com/aussiebroadwan/fieldops/pkg/portalapi"
	"github.com/aussiebroadwan/fieldops/pkg/rbac"
	"github.com/aussiebroadwan/fieldops/pkg/slogx"
)

type ctxKey string

const ctxKeyProfile ctxKey = "profile"

func withProfile(ctx context.Context, p domain.Profile) context.Context {
	return context.WithValue(ctx, ctxKeyProfile, p)
}

// ProfileFromContext returns the profile resolved by Authenticate.
func ProfileFromContext(ctx context.Context) (domain.Profile, bool) {
	p, ok := ctx.Value(ctxKeyProfile).(domain.Profile)
	return p, ok
}

// Authenticate resolves the session cookie to a live session and an active
// profile. Anything else is a 401.
func Authenticate(sessions *service.SessionService, st store.Store) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			// 1. Session
			sess, err := sessions.Resolve(ctx, httpx.CookieValue(r, portalapi.SessionCookieName))
			if err != nil {
				if !errors.Is(err, service.ErrSessionInvalid) {
					log.Error("failed to resolve session", slog.Any("error", err))
					portalapi.ErrServerError.WriteError(w)
					return
				}
				portalapi.ErrUnauthenticated.WriteError(w)
				return
			}

			// 2. Profile; a session alone does not grant anything
			profile, err := st.Profiles().GetProfileByID(ctx, sess.SubjectID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					log.Warn("session without profile", slog.String("subject_id", sess.SubjectID))
					portalapi.ErrUnauthenticated.WriteError(w)
					return
				}
				log.Error("failed to load profile", slog.Any("error", err))
				portalapi.ErrServerError.WriteError(w)
				return
			}
			if !profile.IsActive {
				portalapi.ErrDeactivated.WriteError(w)
				return
			}

			ctx = httpx.WithSession(ctx, sess.ID, sess.SubjectID)
			ctx = withProfile(ctx, profile)
			ctx = slogx.With(ctx, slog.String("session_id", sess.ID), slog.String("subject_id", sess.SubjectID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequirePermission lets the request through when the session holds any of
// perms. Must run after Authenticate.
func RequirePermission(access *service.AccessService, perms ...rbac.Permission) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			sessionID, ok := httpx.SessionIDFromContext(ctx)
			profile, hasProfile := ProfileFromContext(ctx)
			if !ok || !hasProfile {
				portalapi.ErrUnauthenticated.WriteError(w)
				return
			}

			allowed, err := access.CanAny(ctx, sessionID, profile, perms...)
			if err != nil {
				log.Error("permission check failed", slog.Any("error", err))
				portalapi.ErrServerError.WriteError(w)
				return
			}
			if !allowed {
				log.Warn("permission denied", slog.Any("required", perms))
				portalapi.ErrForbidden.WriteError(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
