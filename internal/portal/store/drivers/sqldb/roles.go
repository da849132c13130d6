package sqldb

import (
	"context"
	"time"

	"github.com/aussiebroadwan/fieldops/internal/portal/domain"
)

const roleColumns = `id, name, display_name, is_system, created_at, updated_at`

type rolesRepo struct {
	c conn
}

func (r *rolesRepo) GetRoleByID(ctx context.Context, id string) (domain.Role, error) {
	row := r.c.queryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = ?`, id)
	role, err := scanRole(row)
	return role, r.c.mapErr(err)
}

func (r *rolesRepo) GetRoleByName(ctx context.Context, name string) (domain.Role, error) {
	row := r.c.queryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE name = ?`, name)
	role, err := scanRole(row)
	return role, r.c.mapErr(err)
}

func (r *rolesRepo) ListRoles(ctx context.Context) ([]domain.Role, error) {
	rows, err := r.c.query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

func (r *rolesRepo) CreateRole(ctx context.Context, role domain.Role) error {
	_, err := r.c.exec(ctx, `INSERT INTO roles (`+roleColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		role.ID,
		role.Name,
		role.DisplayName,
		role.IsSystem,
		role.CreatedAt.UTC(),
		role.UpdatedAt.UTC(),
	)
	return err
}

func (r *rolesRepo) UpdateRoleDisplayName(ctx context.Context, id string, displayName string) error {
	return requireAffected(r.c.exec(ctx,
		`UPDATE roles SET display_name = ?, updated_at = ? WHERE id = ?`,
		displayName, time.Now().UTC(), id))
}

// DeleteRole detaches the role explicitly rather than relying on foreign key
// actions, which sqlite only honours with the foreign_keys pragma on. Callers
// run it inside a transaction.
func (r *rolesRepo) DeleteRole(ctx context.Context, id string) error {
	now := time.Now().UTC()

	if _, err := r.c.exec(ctx, `UPDATE profiles SET role_id = NULL, updated_at = ? WHERE role_id = ?`, now, id); err != nil {
		return err
	}
	if _, err := r.c.exec(ctx, `UPDATE invitations SET role_id = NULL WHERE role_id = ?`, id); err != nil {
		return err
	}
	if _, err := r.c.exec(ctx, `DELETE FROM role_permissions WHERE role_id = ?`, id); err != nil {
		return err
	}
	return requireAffected(r.c.exec(ctx, `DELETE FROM roles WHERE id = ?`, id))
}

func (r *rolesRepo) IsEmpty(ctx context.Context) (bool, error) {
	var count int64
	if err := r.c.queryRow(ctx, `SELECT COUNT(*) FROM roles`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

func scanRole(s scanner) (domain.Role, error) {
	var role domain.Role
	err := s.Scan(
		&role.ID,
		&role.Name,
		&role.DisplayName,
		&role.IsSystem,
		&role.CreatedAt,
		&role.UpdatedAt,
	)
	if err != nil {
		return domain.Role{}, err
	}
	role.CreatedAt = role.CreatedAt.UTC()
	role.UpdatedAt = role.UpdatedAt.UTC()
	return role, nil
}
