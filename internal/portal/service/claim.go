package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/fieldops/internal/portal/domain"
	"github.com/aussiebroadwan/fieldops/internal/portal/identity"
	"github.com/aussiebroadwan/fieldops/internal/portal/store"
	"github.com/aussiebroadwan/fieldops/internal/portal/telemetry"
	"github.com/aussiebroadwan/fieldops/pkg/slogx"
)

// Outcome is how a sign-in callback ended. It is also the metrics label.
type Outcome string

const (
	OutcomeReturning          Outcome = "returning"
	OutcomeClaimed            Outcome = "claimed"
	OutcomeNotInvited         Outcome = "not_invited"
	OutcomeDeactivated        Outcome = "deactivated"
	OutcomeCodeExchangeFailed Outcome = "code_exchange_failed"
	OutcomeProfileWriteFailed Outcome = "profile_write_failed"
	OutcomeInternalError      Outcome = "internal_error"
)

var (
	ErrCodeExchangeFailed = errors.New("code exchange failed")
	ErrProfileWriteFailed = errors.New("profile write failed")
	ErrClaimInternal      = errors.New("claim failed")
)

type CallbackRequest struct {
	Code      string
	Next      string
	Forwarded ForwardedRequest
}

// ClaimResult always carries exactly one redirect. Session and SessionToken
// are only set when the caller should end up signed in.
type ClaimResult struct {
	Outcome       Outcome
	RedirectURL   string
	Session       domain.Session
	SessionToken  string
	Profile       domain.Profile
	CleanupFailed bool
}

// SignedIn reports whether the result leaves a live session.
func (r ClaimResult) SignedIn() bool { return r.SessionToken != "" }

// ClaimService turns an identity provider callback into a routed session,
// admitting only emails on the guest list.
type ClaimService struct {
	Store     store.Store
	Provider  identity.Provider
	Sessions  Sessions
	Redirects *RedirectResolver
	Metrics   *telemetry.Metrics
}

// Claim runs the callback. A non-nil error is returned for the terminal
// failures (exchange, profile write, store errors); rejection of a
// non-invited email is a normal result. In every case the result holds the
// redirect to send.
func (s *ClaimService) Claim(ctx context.Context, req CallbackRequest) (ClaimResult, error) {
	log := slogx.FromContext(ctx)

	// 1. Exchange the one-time code. The user retries sign-in; we never do.
	ident, err := s.Provider.Exchange(ctx, req.Code)
	if err != nil {
		log.Warn("sign-in code exchange failed", slog.Any("error", err))
		return s.fail(req, OutcomeCodeExchangeFailed), fmt.Errorf("%w: %w", ErrCodeExchangeFailed, err)
	}
	log = log.With(slog.String("subject_id", ident.SubjectID))
	ctx = slogx.WithContext(ctx, log)

	// 2. The provider vouched for the subject, so a session exists from here
	// on. Every rejection below must tear it down.
	sess, token, err := s.Sessions.Establish(ctx, ident)
	if err != nil {
		return s.fail(req, OutcomeInternalError), fmt.Errorf("%w: establish session: %w", ErrClaimInternal, err)
	}

	// 3. Returning user?
	profile, err := s.Store.Profiles().GetProfileByID(ctx, ident.SubjectID)
	switch {
	case err == nil:
		if !profile.IsActive {
			log.Warn("deactivated profile signed in")
			s.teardown(ctx, sess)
			return s.reject(req, OutcomeDeactivated, ident.Email), nil
		}
		return s.land(req, OutcomeReturning, profile, sess, token, false), nil
	case !errors.Is(err, store.ErrNotFound):
		log.Error("failed to look up profile", slog.Any("error", err))
		s.teardown(ctx, sess)
		return s.fail(req, OutcomeInternalError), fmt.Errorf("%w: profile lookup: %w", ErrClaimInternal, err)
	}

	// 4. Guest list
	inv, err := s.Store.Invitations().FindInvitationByEmail(ctx, ident.Email)
	if err != nil {
		s.teardown(ctx, sess)
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("sign-in rejected, email not invited", slog.String("email", ident.Email))
			return s.reject(req, OutcomeNotInvited, ident.Email), nil
		}
		log.Error("failed to look up invitation", slog.Any("error", err))
		return s.fail(req, OutcomeInternalError), fmt.Errorf("%w: invitation lookup: %w", ErrClaimInternal, err)
	}

	// 5. Claim the invitation
	profile = profileFromInvitation(ident, inv, time.Now().UTC())

	result, err := s.claim(ctx, req, ident, inv, profile, sess, token)
	if err != nil || !result.SignedIn() {
		s.teardown(ctx, sess)
	}
	return result, err
}

// claim writes the profile and consumes the invitation in one transaction.
// A delete that fails for any reason other than "already gone" falls back to
// writing the profile alone; the stale invitation is left for housekeeping.
func (s *ClaimService) claim(
	ctx context.Context,
	req CallbackRequest,
	ident domain.Identity,
	inv domain.Invitation,
	profile domain.Profile,
	sess domain.Session,
	token string,
) (ClaimResult, error) {
	log := slogx.FromContext(ctx).With(slog.String("invitation_id", inv.ID))

	var deleteErr error
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Profiles().UpsertProfile(ctx, profile); err != nil {
			return fmt.Errorf("%w: %w", ErrProfileWriteFailed, err)
		}
		// Keyed on the id captured at lookup, never on email alone
		if err := tx.Invitations().DeleteInvitation(ctx, inv.ID, inv.Email); err != nil {
			deleteErr = err
			return err
		}
		return nil
	})

	switch {
	case err == nil:
		log.Info("invitation claimed", slog.String("email", profile.Email))
		return s.land(req, OutcomeClaimed, profile, sess, token, false), nil

	case deleteErr != nil && errors.Is(deleteErr, store.ErrNotFound):
		// A concurrent callback consumed the invitation first. If that was
		// the same subject it now has a profile; anyone else is rejected.
		existing, lookupErr := s.Store.Profiles().GetProfileByID(ctx, ident.SubjectID)
		if lookupErr == nil && existing.IsActive {
			log.Info("invitation already claimed by this subject")
			return s.land(req, OutcomeReturning, existing, sess, token, false), nil
		}
		log.Warn("sign-in rejected, invitation consumed concurrently", slog.String("email", ident.Email))
		return s.reject(req, OutcomeNotInvited, ident.Email), nil

	case deleteErr != nil:
		// InvitationCleanupFailed: the claim itself must still succeed
		if upsertErr := s.Store.Profiles().UpsertProfile(ctx, profile); upsertErr != nil {
			log.Error("profile write failed", slog.Any("error", upsertErr))
			return s.fail(req, OutcomeProfileWriteFailed), fmt.Errorf("%w: %w", ErrProfileWriteFailed, upsertErr)
		}
		log.Error("invitation cleanup failed, left for housekeeping", slog.Any("error", deleteErr))
		return s.land(req, OutcomeClaimed, profile, sess, token, true), nil

	default:
		// Upsert or commit failed; the transaction rolled back so the
		// invitation is still claimable on retry.
		log.Error("profile write failed", slog.Any("error", err))
		if !errors.Is(err, ErrProfileWriteFailed) {
			err = fmt.Errorf("%w: %w", ErrProfileWriteFailed, err)
		}
		return s.fail(req, OutcomeProfileWriteFailed), err
	}
}

func profileFromInvitation(ident domain.Identity, inv domain.Invitation, now time.Time) domain.Profile {
	email := strings.ToLower(strings.TrimSpace(ident.Email))

	displayName := inv.DisplayName
	if displayName == "" {
		displayName = email
	}

	return domain.Profile{
		ID:                  ident.SubjectID,
		Email:               email,
		DisplayName:         displayName,
		RoleID:              inv.RoleID,
		IsTechnician:        inv.IsTechnician,
		IsOfficeStaff:       inv.IsOfficeStaff,
		IsActive:            true,
		OnboardingCompleted: inv.OnboardingCompleted,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
}

// teardown revokes a session that must not survive the callback.
func (s *ClaimService) teardown(ctx context.Context, sess domain.Session) {
	if err := s.Sessions.Revoke(ctx, sess.ID); err != nil {
		slogx.FromContext(ctx).Error("failed to revoke rejected session",
			slog.String("session_id", sess.ID),
			slog.Any("error", err),
		)
	}
}

func (s *ClaimService) land(
	req CallbackRequest,
	outcome Outcome,
	profile domain.Profile,
	sess domain.Session,
	token string,
	cleanupFailed bool,
) ClaimResult {
	s.Metrics.ObserveClaim(string(outcome))

	path := DecideRedirect(profile, SanitizeNext(req.Next))
	return ClaimResult{
		Outcome:       outcome,
		RedirectURL:   s.Redirects.Resolve(req.Forwarded, path),
		Session:       sess,
		SessionToken:  token,
		Profile:       profile,
		CleanupFailed: cleanupFailed,
	}
}

func (s *ClaimService) reject(req CallbackRequest, outcome Outcome, email string) ClaimResult {
	s.Metrics.ObserveClaim(string(outcome))
	return ClaimResult{
		Outcome:     outcome,
		RedirectURL: s.Redirects.Resolve(req.Forwarded, UnauthorizedPath(email)),
	}
}

// fail sends the user to the generic sign-in error page. Exchange failures
// and write failures share it so the page never reveals who is invited.
func (s *ClaimService) fail(req CallbackRequest, outcome Outcome) ClaimResult {
	s.Metrics.ObserveClaim(string(outcome))
	return ClaimResult{
		Outcome:     outcome,
		RedirectURL: s.Redirects.Resolve(req.Forwarded, PathAuthError),
	}
}
