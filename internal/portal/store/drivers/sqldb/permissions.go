package sqldb

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/fieldops/internal/portal/domain"
	"github.com/aussiebroadwan/fieldops/internal/portal/store"
	"github.com/aussiebroadwan/fieldops/pkg/idx"
)

type permissionsRepo struct {
	c conn
}

func (r *permissionsRepo) EnsurePermission(ctx context.Context, resource, action string) (domain.Permission, error) {
	// 1. Fast path: already stored
	p, err := r.find(ctx, resource, action)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Permission{}, err
	}

	// 2. Insert, tolerating a concurrent insert of the same pair
	_, err = r.c.exec(ctx, `INSERT INTO permissions (id, resource, action) VALUES (?, ?, ?)
		ON CONFLICT (resource, action) DO NOTHING`,
		idx.New().String(), resource, action)
	if err != nil {
		return domain.Permission{}, err
	}

	return r.find(ctx, resource, action)
}

func (r *permissionsRepo) find(ctx context.Context, resource, action string) (domain.Permission, error) {
	var p domain.Permission
	err := r.c.queryRow(ctx, `SELECT id, resource, action FROM permissions
		WHERE resource = ? AND action = ?`, resource, action).Scan(&p.ID, &p.Resource, &p.Action)
	return p, r.c.mapErr(err)
}

func (r *permissionsRepo) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	return r.list(ctx, `SELECT id, resource, action FROM permissions ORDER BY resource, action`)
}

func (r *permissionsRepo) Grant(ctx context.Context, roleID, permissionID string) error {
	_, err := r.c.exec(ctx, `INSERT INTO role_permissions (role_id, permission_id) VALUES (?, ?)
		ON CONFLICT (role_id, permission_id) DO NOTHING`, roleID, permissionID)
	return err
}

func (r *permissionsRepo) Revoke(ctx context.Context, roleID, permissionID string) error {
	return requireAffected(r.c.exec(ctx,
		`DELETE FROM role_permissions WHERE role_id = ? AND permission_id = ?`, roleID, permissionID))
}

func (r *permissionsRepo) ListRolePermissions(ctx context.Context, roleID string) ([]domain.Permission, error) {
	return r.list(ctx, `SELECT p.id, p.resource, p.action
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = ?
		ORDER BY p.resource, p.action`, roleID)
}

func (r *permissionsRepo) list(ctx context.Context, query string, args ...any) ([]domain.Permission, error) {
	rows, err := r.c.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Permission
	for rows.Next() {
		var p domain.Permission
		if err := rows.Scan(&p.ID, &p.Resource, &p.Action); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
