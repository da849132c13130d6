package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/aussiebroadwan/fieldops/internal/portal/domain"
	"github.com/aussiebroadwan/fieldops/internal/portal/store"
	"github.com/aussiebroadwan/fieldops/pkg/idx"
	"github.com/aussiebroadwan/fieldops/pkg/slogx"
)

var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrInvalidRole        = errors.New("invalid role")
	ErrInvitationExists   = errors.New("an invitation for this email already exists")
	ErrAlreadyClaimed     = errors.New("a profile already exists for this email")
	ErrInvitationNotFound = errors.New("invitation not found")
)

type InviteRequest struct {
	Email               string
	DisplayName         string
	Role                string // Role id or name, optional
	IsTechnician        bool
	IsOfficeStaff       bool
	OnboardingCompleted bool
}

// InviteService manages the guest list.
type InviteService struct {
	Store store.Store
}

// Create puts an email on the guest list.
func (s *InviteService) Create(ctx context.Context, req InviteRequest, createdBy string) (domain.Invitation, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate and normalise the email
	email, err := NormalizeEmail(req.Email)
	if err != nil {
		log.Warn("invitation rejected, invalid email", slog.String("email", req.Email))
		return domain.Invitation{}, err
	}

	inv := domain.Invitation{
		ID:                  idx.New().String(),
		Email:               email,
		DisplayName:         strings.TrimSpace(req.DisplayName),
		IsTechnician:        req.IsTechnician,
		IsOfficeStaff:       req.IsOfficeStaff,
		OnboardingCompleted: req.OnboardingCompleted,
		CreatedBy:           createdBy,
		CreatedAt:           time.Now().UTC(),
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 2. Resolve the intended role
		if req.Role != "" {
			role, err := findRole(ctx, tx, req.Role)
			if err != nil {
				return err
			}
			inv.RoleID = &role.ID
		}

		// 3. An email that already has a profile has nothing left to claim
		if _, err := tx.Profiles().FindProfileByEmail(ctx, email); err == nil {
			return ErrAlreadyClaimed
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		// 4. Store, relying on the unique email index for duplicates
		if err := tx.Invitations().CreateInvitation(ctx, inv); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrInvitationExists
			}
			return err
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrInvalidRole) && !errors.Is(err, ErrAlreadyClaimed) && !errors.Is(err, ErrInvitationExists) {
			log.Error("failed to create invitation", slog.Any("error", err))
		}
		return domain.Invitation{}, err
	}

	log.Info("invitation created",
		slog.String("invitation_id", inv.ID),
		slog.String("email", inv.Email),
		slog.String("created_by", createdBy),
	)
	return inv, nil
}

func (s *InviteService) List(ctx context.Context) ([]domain.Invitation, error) {
	return s.Store.Invitations().ListInvitations(ctx)
}

// Revoke removes an unclaimed invitation.
func (s *InviteService) Revoke(ctx context.Context, id string) error {
	if err := s.Store.Invitations().DeleteInvitationByID(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvitationNotFound
		}
		return err
	}

	slogx.FromContext(ctx).Info("invitation revoked", slog.String("invitation_id", id))
	return nil
}

// NormalizeEmail accepts a bare address ("a@x.com", no display name) and
// returns it lower-cased.
func NormalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}

// findRole resolves a role by name first, then by id.
func findRole(ctx context.Context, st store.Store, ref string) (domain.Role, error) {
	role, err := st.Roles().GetRoleByName(ctx, ref)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Role{}, err
	}

	role, err = st.Roles().GetRoleByID(ctx, ref)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Role{}, ErrInvalidRole
	}
	return role, err
}
