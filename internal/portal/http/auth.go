package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/fieldops/internal/portal/identity"
	"github.com/aussiebroadwan/fieldops/internal/portal/service"
	"github.com/aussiebroadwan/fieldops/pkg/httpx"
	"github.com/aussiebroadwan/fieldops/pkg/jwtx"
	"github.com/aussiebroadwan/fieldops/pkg/portalapi"
	"github.com/aussiebroadwan/fieldops/pkg/slogx"
)

// LoginStateCookieName holds the signed login state between /auth/login and
// the identity provider's callback.
const LoginStateCookieName = "portal_login_state"

type AuthHandler struct {
	Provider   identity.Provider
	Claims     *service.ClaimService
	Sessions   *service.SessionService
	Access     *service.AccessService
	Redirects  *service.RedirectResolver
	StateCodec *jwtx.StateSigner
	Cookies    httpx.CookieConfig
}

// HandleLogin starts sign-in
//
//	@Summary		Start sign-in
//	@Description	Stores a signed login state cookie and redirects to the identity provider. next is kept for after sign-in when it is a same-origin path.
//	@Tags			Auth
//	@Param			next	query	string	false	"Path to return to after sign-in"
//	@Success		302		"Redirect to the identity provider"
//	@Router			/auth/login [get].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	log := slogx.FromContext(r.Context())
	fwd := forwarded(r)

	next := service.SanitizeNext(r.URL.Query().Get("next"))

	token, nonce, err := h.StateCodec.Issue(next)
	if err != nil {
		log.Error("failed to issue login state", slog.Any("error", err))
		httpx.Redirect(w, h.Redirects.Resolve(fwd, service.PathAuthError))
		return
	}

	h.Cookies.SetCookie(w, LoginStateCookieName, token, jwtx.DefaultStateTTL)
	httpx.Redirect(w, h.Provider.AuthCodeURL(nonce))
}

// HandleCallback completes sign-in
//
//	@Summary		Sign-in callback
//	@Description	Exchanges the one-time code, claims an invitation on first sign-in and redirects. The response never has a body; every outcome is a redirect.
//	@Tags			Auth
//	@Param			code	query	string	true	"One-time authorization code"
//	@Param			state	query	string	true	"State echoed by the identity provider"
//	@Param			next	query	string	false	"Path to return to after sign-in"
//	@Success		302		"Redirect to onboarding, the dashboard, next, the unauthorized page or the sign-in error page"
//	@Router			/auth/callback [get].
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	fwd := forwarded(r)
	q := r.URL.Query()

	// 1. The login state must come back to the browser that started it
	stateCookie := httpx.CookieValue(r, LoginStateCookieName)
	h.Cookies.ClearCookie(w, LoginStateCookieName)

	state, err := h.StateCodec.VerifyCallback(stateCookie, q.Get("state"))
	if err != nil {
		log.Warn("sign-in callback rejected, bad login state", slog.Any("error", err))
		httpx.Redirect(w, h.Redirects.Resolve(fwd, service.PathAuthError))
		return
	}

	// 2. Provider reported an error (user cancelled, consent denied...)
	if e := q.Get("error"); e != "" {
		log.Warn("identity provider returned an error",
			slog.String("error", e),
			slog.String("error_description", q.Get("error_description")),
		)
		httpx.Redirect(w, h.Redirects.Resolve(fwd, service.PathAuthError))
		return
	}

	next := state.Next
	if next == "" {
		next = q.Get("next")
	}

	// 3. Claim; a failed claim still produces a redirect
	result, err := h.Claims.Claim(ctx, service.CallbackRequest{
		Code:      q.Get("code"),
		Next:      next,
		Forwarded: fwd,
	})
	if err != nil {
		log.Warn("sign-in callback failed",
			slog.String("outcome", string(result.Outcome)),
			slog.Any("error", err),
		)
	}

	// 4. Set or clear the session cookie to match the result
	if result.SignedIn() {
		ttl := time.Until(result.Session.ExpiresAt)
		h.Cookies.SetCookie(w, portalapi.SessionCookieName, result.SessionToken, ttl)
	} else {
		h.Cookies.ClearCookie(w, portalapi.SessionCookieName)
	}

	httpx.Redirect(w, result.RedirectURL)
}

// HandleSignout ends the session
//
//	@Summary		Sign out
//	@Description	Revokes the current session, clears the cookie and redirects to the login page. Signing out without a session is not an error.
//	@Tags			Auth
//	@Success		302	"Redirect to the login page"
//	@Router			/auth/signout [post].
func (h *AuthHandler) HandleSignout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := httpx.CookieValue(r, portalapi.SessionCookieName)
	sess, err := h.Sessions.Resolve(ctx, token)
	switch {
	case err == nil:
		if err := h.Sessions.Revoke(ctx, sess.ID); err != nil {
			log.Error("failed to revoke session on sign-out", slog.Any("error", err))
		}
		h.Access.Refresh(sess.ID)
		log.Info("signed out", slog.String("session_id", sess.ID))
	case !errors.Is(err, service.ErrSessionInvalid):
		log.Error("failed to resolve session on sign-out", slog.Any("error", err))
	}

	h.Cookies.ClearCookie(w, portalapi.SessionCookieName)
	httpx.Redirect(w, h.Redirects.Resolve(forwarded(r), service.PathLogin))
}

func forwarded(r *http.Request) service.ForwardedRequest {
	return service.ForwardedRequest{
		ForwardedHost:  httpx.ForwardedHost(r),
		ForwardedProto: httpx.ForwardedProto(r),
	}
}
