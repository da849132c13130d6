package sqldb

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/fieldops/internal/portal/domain"
)

const sessionColumns = `id, token_hash, subject_id, email, created_at, expires_at, revoked_at`

type sessionsRepo struct {
	c conn
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.c.exec(ctx, `INSERT INTO sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID,
		s.TokenHash,
		s.SubjectID,
		s.Email,
		s.CreatedAt.UTC(),
		s.ExpiresAt.UTC(),
		nullTime(s.RevokedAt),
	)
	return err
}

func (r *sessionsRepo) GetSessionByTokenHash(ctx context.Context, hash string) (domain.Session, error) {
	var (
		s         domain.Session
		revokedAt sql.NullTime
	)
	err := r.c.queryRow(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE token_hash = ?`, hash).Scan(
		&s.ID,
		&s.TokenHash,
		&s.SubjectID,
		&s.Email,
		&s.CreatedAt,
		&s.ExpiresAt,
		&revokedAt,
	)
	if err != nil {
		return domain.Session{}, r.c.mapErr(err)
	}
	s.CreatedAt = s.CreatedAt.UTC()
	s.ExpiresAt = s.ExpiresAt.UTC()
	s.RevokedAt = timePtr(revokedAt)
	return s, nil
}

func (r *sessionsRepo) RevokeSession(ctx context.Context, id string, at time.Time) error {
	return requireAffected(r.c.exec(ctx,
		`UPDATE sessions SET revoked_at = COALESCE(revoked_at, ?) WHERE id = ?`, at.UTC(), id))
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	cutoff = cutoff.UTC()
	res, err := r.c.exec(ctx, `DELETE FROM sessions WHERE expires_at < ? OR revoked_at < ?`, cutoff, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
