package service

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aussiebroadwan/fieldops/internal/portal/domain"
	"github.com/aussiebroadwan/fieldops/internal/portal/store"
	"github.com/aussiebroadwan/fieldops/pkg/idx"
	"github.com/aussiebroadwan/fieldops/pkg/rbac"
	"github.com/aussiebroadwan/fieldops/pkg/slogx"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var ErrInvalidCatalog = errors.New("invalid role catalog")

type Catalog struct {
	Roles []CatalogRole `yaml:"roles"`
}

type CatalogRole struct {
	Name        string   `yaml:"name"`
	DisplayName string   `yaml:"display_name"`
	System      bool     `yaml:"system"`
	Permissions []string `yaml:"permissions"`
}

// DefaultCatalog returns the built-in admin/office_staff/technician roles.
func DefaultCatalog() (Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// LoadCatalog reads a catalog file, or the built-in one when path is "".
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read role catalog: %w", err)
	}
	return ParseCatalog(raw)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(raw []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Catalog{}, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	seen := make(map[string]struct{}, len(c.Roles))
	for _, r := range c.Roles {
		if !roleNamePattern.MatchString(r.Name) {
			return Catalog{}, fmt.Errorf("%w: bad role name %q", ErrInvalidCatalog, r.Name)
		}
		if _, dup := seen[r.Name]; dup {
			return Catalog{}, fmt.Errorf("%w: duplicate role %q", ErrInvalidCatalog, r.Name)
		}
		seen[r.Name] = struct{}{}

		if _, err := rbac.ParseSet(r.Permissions); err != nil {
			return Catalog{}, fmt.Errorf("%w: role %q: %w", ErrInvalidCatalog, r.Name, err)
		}
	}
	return c, nil
}

type SeedService struct {
	Store store.Store
}

// Seed creates missing catalog roles and grants their permissions. Existing
// roles keep their display name and extra grants; running it again changes
// nothing.
func (s *SeedService) Seed(ctx context.Context, catalog Catalog) (created int, err error) {
	log := slogx.FromContext(ctx)

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		for _, cr := range catalog.Roles {
			// 1. Get or create the role
			role, err := tx.Roles().GetRoleByName(ctx, cr.Name)
			if errors.Is(err, store.ErrNotFound) {
				now := time.Now().UTC()
				role = domain.Role{
					ID:          idx.NewAt(now).String(),
					Name:        cr.Name,
					DisplayName: cr.DisplayName,
					IsSystem:    cr.System,
					CreatedAt:   now,
					UpdatedAt:   now,
				}
				if role.DisplayName == "" {
					role.DisplayName = cr.Name
				}
				if err := tx.Roles().CreateRole(ctx, role); err != nil {
					return fmt.Errorf("create role %s: %w", cr.Name, err)
				}
				created++
			} else if err != nil {
				return err
			}

			// 2. Grant the listed permissions
			set, err := rbac.ParseSet(cr.Permissions)
			if err != nil {
				return err
			}
			for _, p := range set.Permissions() {
				stored, err := tx.Permissions().EnsurePermission(ctx, p.Resource, string(p.Action))
				if err != nil {
					return err
				}
				if err := tx.Permissions().Grant(ctx, role.ID, stored.ID); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		log.Error("role seed failed", slog.Any("error", err))
		return 0, err
	}

	log.Info("role catalog seeded",
		slog.Int("roles", len(catalog.Roles)),
		slog.Int("created", created),
	)
	return created, nil
}
