package service

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/aussiebroadwan/fieldops/internal/portal/domain"
	"github.com/aussiebroadwan/fieldops/internal/portal/store"
	"github.com/aussiebroadwan/fieldops/pkg/idx"
	"github.com/aussiebroadwan/fieldops/pkg/rbac"
	"github.com/aussiebroadwan/fieldops/pkg/slogx"
)

var (
	ErrSystemRole      = errors.New("system roles cannot be deleted")
	ErrRoleNotFound    = errors.New("role not found")
	ErrRoleExists      = errors.New("role name already taken")
	ErrInvalidRoleName = errors.New("role name must be lower case letters, digits or underscores")
	ErrInvalidGrant    = errors.New("permission must be resource:action")
	ErrEmptyRoleLabel  = errors.New("role display name is required")
)

var roleNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{1,62}$`)

type RolesService struct {
	Store store.Store
}

func (s *RolesService) List(ctx context.Context) ([]domain.Role, error) {
	return s.Store.Roles().ListRoles(ctx)
}

func (s *RolesService) Get(ctx context.Context, roleID string) (domain.Role, error) {
	role, err := s.Store.Roles().GetRoleByID(ctx, roleID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Role{}, ErrRoleNotFound
	}
	return role, err
}

// Create adds a non-system role.
func (s *RolesService) Create(ctx context.Context, name, displayName string) (domain.Role, error) {
	log := slogx.FromContext(ctx)

	name = strings.TrimSpace(name)
	if !roleNamePattern.MatchString(name) {
		return domain.Role{}, ErrInvalidRoleName
	}
	if displayName = strings.TrimSpace(displayName); displayName == "" {
		displayName = name
	}

	now := time.Now().UTC()
	role := domain.Role{
		ID:          idx.NewAt(now).String(),
		Name:        name,
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.Roles().CreateRole(ctx, role); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Role{}, ErrRoleExists
		}
		log.Error("failed to create role", slog.String("name", name), slog.Any("error", err))
		return domain.Role{}, err
	}

	log.Info("role created", slog.String("role_id", role.ID), slog.String("name", name))
	return role, nil
}

// UpdateDisplayName is allowed on system roles too.
func (s *RolesService) UpdateDisplayName(ctx context.Context, roleID, displayName string) error {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return ErrEmptyRoleLabel
	}
	err := s.Store.Roles().UpdateRoleDisplayName(ctx, roleID, displayName)
	if errors.Is(err, store.ErrNotFound) {
		return ErrRoleNotFound
	}
	return err
}

// Delete removes a non-system role. Profiles that held it become role-less,
// which is a normal state and not an error.
func (s *RolesService) Delete(ctx context.Context, roleID string) error {
	log := slogx.FromContext(ctx)

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 1. Load and check the role
		role, err := tx.Roles().GetRoleByID(ctx, roleID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRoleNotFound
			}
			return err
		}
		if role.IsSystem {
			log.Warn("attempted to delete system role", slog.String("role", role.Name))
			return ErrSystemRole
		}

		// 2. Detach and delete
		if err := tx.Roles().DeleteRole(ctx, roleID); err != nil {
			log.Error("failed to delete role", slog.String("role_id", roleID), slog.Any("error", err))
			return err
		}

		log.Info("role deleted", slog.String("role_id", roleID), slog.String("name", role.Name))
		return nil
	})
}

// Grant adds "resource:action" to the role. Granting twice is a no-op.
func (s *RolesService) Grant(ctx context.Context, roleID, perm string) error {
	p, err := rbac.Parse(perm)
	if err != nil {
		return ErrInvalidGrant
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Roles().GetRoleByID(ctx, roleID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRoleNotFound
			}
			return err
		}

		stored, err := tx.Permissions().EnsurePermission(ctx, p.Resource, string(p.Action))
		if err != nil {
			return err
		}
		return tx.Permissions().Grant(ctx, roleID, stored.ID)
	})
}

// Revoke removes "resource:action" from the role. Revoking something the
// role does not hold is a no-op.
func (s *RolesService) Revoke(ctx context.Context, roleID, perm string) error {
	p, err := rbac.Parse(perm)
	if err != nil {
		return ErrInvalidGrant
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Roles().GetRoleByID(ctx, roleID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRoleNotFound
			}
			return err
		}

		granted, err := tx.Permissions().ListRolePermissions(ctx, roleID)
		if err != nil {
			return err
		}
		for _, g := range granted {
			if g.Resource == p.Resource && g.Action == string(p.Action) {
				return tx.Permissions().Revoke(ctx, roleID, g.ID)
			}
		}
		return nil
	})
}

// Permissions lists the role's grants as sorted "resource:action" strings.
func (s *RolesService) Permissions(ctx context.Context, roleID string) ([]string, error) {
	if _, err := s.Get(ctx, roleID); err != nil {
		return nil, err
	}

	perms, err := s.Store.Permissions().ListRolePermissions(ctx, roleID)
	if err != nil {
		return nil, err
	}

	out := make([]rbac.Permission, 0, len(perms))
	for _, p := range perms {
		out = append(out, rbac.New(p.Resource, rbac.Action(p.Action)))
	}
	return rbac.NewSet(out...).Strings(), nil
}
