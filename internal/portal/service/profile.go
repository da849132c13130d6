package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aussiebroadwan/fieldops/internal/portal/domain"
	"github.com/aussiebroadwan/fieldops/internal/portal/store"
	"github.com/aussiebroadwan/fieldops/pkg/slogx"
)

var ErrProfileNotFound = errors.New("profile not found")

// ProfileService covers the admin and settings edits of a profile. Role
// changes do not reach other sessions' cached permission sets.
type ProfileService struct {
	Store store.Store
}

func (s *ProfileService) Get(ctx context.Context, id string) (domain.Profile, error) {
	p, err := s.Store.Profiles().GetProfileByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Profile{}, ErrProfileNotFound
	}
	return p, err
}

func (s *ProfileService) List(ctx context.Context) ([]domain.Profile, error) {
	return s.Store.Profiles().ListProfiles(ctx)
}

// AssignRole sets the role (by id or name) or clears it when role is nil.
func (s *ProfileService) AssignRole(ctx context.Context, id string, role *string) (domain.Profile, error) {
	log := slogx.FromContext(ctx)

	var out domain.Profile
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var roleID *string
		if role != nil && *role != "" {
			r, err := findRole(ctx, tx, *role)
			if err != nil {
				return err
			}
			roleID = &r.ID
		}

		if err := tx.Profiles().UpdateProfileRole(ctx, id, roleID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrProfileNotFound
			}
			return err
		}

		p, err := tx.Profiles().GetProfileByID(ctx, id)
		out = p
		return err
	})
	if err != nil {
		return domain.Profile{}, err
	}

	roleID := ""
	if out.HasRole() {
		roleID = *out.RoleID
	}
	log.Info("profile role changed", slog.String("profile_id", id), slog.String("role_id", roleID))
	return out, nil
}

// SetActive archives or restores a profile. Profiles are never deleted.
func (s *ProfileService) SetActive(ctx context.Context, id string, active bool) error {
	err := s.Store.Profiles().SetProfileActive(ctx, id, active)
	if errors.Is(err, store.ErrNotFound) {
		return ErrProfileNotFound
	}
	if err == nil {
		slogx.FromContext(ctx).Info("profile activation changed",
			slog.String("profile_id", id),
			slog.Bool("active", active),
		)
	}
	return err
}

func (s *ProfileService) CompleteOnboarding(ctx context.Context, id string) (domain.Profile, error) {
	if err := s.Store.Profiles().SetOnboardingCompleted(ctx, id, true); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Profile{}, ErrProfileNotFound
		}
		return domain.Profile{}, err
	}
	return s.Get(ctx, id)
}
