package sqldb

import (
	"context"
	"database/sql"
	"strings"

	"github.com/aussiebroadwan/fieldops/internal/portal/domain"
)

const invitationColumns = `id, email, display_name, role_id, is_technician, is_office_staff,
	onboarding_completed, created_by, created_at`

type invitationsRepo struct {
	c conn
}

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invitation) error {
	_, err := r.c.exec(ctx, `INSERT INTO invitations (`+invitationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID,
		strings.ToLower(inv.Email),
		inv.DisplayName,
		nullString(inv.RoleID),
		inv.IsTechnician,
		inv.IsOfficeStaff,
		inv.OnboardingCompleted,
		inv.CreatedBy,
		inv.CreatedAt.UTC(),
	)
	return err
}

func (r *invitationsRepo) GetInvitationByID(ctx context.Context, id string) (domain.Invitation, error) {
	row := r.c.queryRow(ctx, `SELECT `+invitationColumns+` FROM invitations WHERE id = ?`, id)
	inv, err := scanInvitation(row)
	return inv, r.c.mapErr(err)
}

func (r *invitationsRepo) FindInvitationByEmail(ctx context.Context, email string) (domain.Invitation, error) {
	row := r.c.queryRow(ctx, `SELECT `+invitationColumns+` FROM invitations
		WHERE lower(email) = lower(?)`, email)
	inv, err := scanInvitation(row)
	return inv, r.c.mapErr(err)
}

func (r *invitationsRepo) ListInvitations(ctx context.Context) ([]domain.Invitation, error) {
	rows, err := r.c.query(ctx, `SELECT `+invitationColumns+` FROM invitations ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *invitationsRepo) DeleteInvitation(ctx context.Context, id string, email string) error {
	return requireAffected(r.c.exec(ctx,
		`DELETE FROM invitations WHERE id = ? AND lower(email) = lower(?)`, id, email))
}

func (r *invitationsRepo) DeleteInvitationByID(ctx context.Context, id string) error {
	return requireAffected(r.c.exec(ctx, `DELETE FROM invitations WHERE id = ?`, id))
}

func (r *invitationsRepo) DeleteClaimedInvitations(ctx context.Context) (int64, error) {
	res, err := r.c.exec(ctx, `DELETE FROM invitations WHERE EXISTS (
		SELECT 1 FROM profiles WHERE lower(profiles.email) = lower(invitations.email))`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanInvitation(s scanner) (domain.Invitation, error) {
	var (
		inv    domain.Invitation
		roleID sql.NullString
	)
	err := s.Scan(
		&inv.ID,
		&inv.Email,
		&inv.DisplayName,
		&roleID,
		&inv.IsTechnician,
		&inv.IsOfficeStaff,
		&inv.OnboardingCompleted,
		&inv.CreatedBy,
		&inv.CreatedAt,
	)
	if err != nil {
		return domain.Invitation{}, err
	}
	inv.RoleID = stringPtr(roleID)
	inv.CreatedAt = inv.CreatedAt.UTC()
	return inv, nil
}
