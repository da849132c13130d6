package sqldb

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/fieldops/internal/portal/domain"
)

const profileColumns = `id, email, display_name, role_id, is_technician, is_office_staff,
	is_active, onboarding_completed, created_at, updated_at`

type profilesRepo struct {
	c conn
}

func (r *profilesRepo) GetProfileByID(ctx context.Context, id string) (domain.Profile, error) {
	row := r.c.queryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
	p, err := scanProfile(row)
	return p, r.c.mapErr(err)
}

func (r *profilesRepo) FindProfileByEmail(ctx context.Context, email string) (domain.Profile, error) {
	row := r.c.queryRow(ctx, `SELECT `+profileColumns+` FROM profiles
		WHERE lower(email) = lower(?) ORDER BY created_at, id LIMIT 1`, email)
	p, err := scanProfile(row)
	return p, r.c.mapErr(err)
}

func (r *profilesRepo) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	rows, err := r.c.query(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *profilesRepo) UpsertProfile(ctx context.Context, p domain.Profile) error {
	_, err := r.c.exec(ctx, `INSERT INTO profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			email = excluded.email,
			display_name = excluded.display_name,
			updated_at = excluded.updated_at`,
		p.ID,
		p.Email,
		p.DisplayName,
		nullString(p.RoleID),
		p.IsTechnician,
		p.IsOfficeStaff,
		p.IsActive,
		p.OnboardingCompleted,
		p.CreatedAt.UTC(),
		p.UpdatedAt.UTC(),
	)
	return err
}

func (r *profilesRepo) UpdateProfileRole(ctx context.Context, id string, roleID *string) error {
	return requireAffected(r.c.exec(ctx,
		`UPDATE profiles SET role_id = ?, updated_at = ? WHERE id = ?`,
		nullString(roleID), time.Now().UTC(), id))
}

func (r *profilesRepo) SetProfileActive(ctx context.Context, id string, active bool) error {
	return requireAffected(r.c.exec(ctx,
		`UPDATE profiles SET is_active = ?, updated_at = ? WHERE id = ?`,
		active, time.Now().UTC(), id))
}

func (r *profilesRepo) SetOnboardingCompleted(ctx context.Context, id string, completed bool) error {
	return requireAffected(r.c.exec(ctx,
		`UPDATE profiles SET onboarding_completed = ?, updated_at = ? WHERE id = ?`,
		completed, time.Now().UTC(), id))
}

func scanProfile(s scanner) (domain.Profile, error) {
	var (
		p      domain.Profile
		roleID sql.NullString
	)
	err := s.Scan(
		&p.ID,
		&p.Email,
		&p.DisplayName,
		&roleID,
		&p.IsTechnician,
		&p.IsOfficeStaff,
		&p.IsActive,
		&p.OnboardingCompleted,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return domain.Profile{}, err
	}
	p.RoleID = stringPtr(roleID)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}
