// Package sqldb implements the store repositories once over database/sql.
// The sqlite and postgres drivers open the connection, pick a Dialect and
// provide migrations.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/fieldops/internal/portal/store"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn binds a querier to a dialect so repositories never rebind by hand.
type conn struct {
	q querier
	d Dialect
}

func (c conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := c.q.ExecContext(ctx, c.d.Rebind(query), args...)
	return res, c.mapErr(err)
}

func (c conn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := c.q.QueryContext(ctx, c.d.Rebind(query), args...)
	return rows, c.mapErr(err)
}

func (c conn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.q.QueryRowContext(ctx, c.d.Rebind(query), args...)
}

func (c conn) mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if c.d.IsUniqueViolation != nil && c.d.IsUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// Migrator applies the driver's embedded migrations to db.
type Migrator func(db *sql.DB) error

type Store struct {
	db      *sql.DB
	dialect Dialect
	migrate Migrator
}

// New wraps an open database. The caller keeps ownership of dialect choice;
// Close closes db.
func New(db *sql.DB, dialect Dialect, migrate Migrator) *Store {
	return &Store{db: db, dialect: dialect, migrate: migrate}
}

func (s *Store) Dialect() Dialect { return s.dialect }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) ApplyMigrations() error {
	if s.migrate == nil {
		return nil
	}
	return s.migrate(s.db)
}

func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx, c: conn{q: tx, d: s.dialect}}, nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Safe to call after commit, it returns sql.ErrTxDone which we ignore
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) conn() conn { return conn{q: s.db, d: s.dialect} }

func (s *Store) Invitations() store.Invitations { return &invitationsRepo{c: s.conn()} }
func (s *Store) Profiles() store.Profiles       { return &profilesRepo{c: s.conn()} }
func (s *Store) Roles() store.Roles             { return &rolesRepo{c: s.conn()} }
func (s *Store) Permissions() store.Permissions { return &permissionsRepo{c: s.conn()} }
func (s *Store) Sessions() store.Sessions       { return &sessionsRepo{c: s.conn()} }

type txStore struct {
	tx *sql.Tx
	c  conn
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the outer store owns the connection pool.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) ApplyMigrations() error { return nil }

// Nested transactions are not supported.
func (t *txStore) Tx(ctx context.Context) (store.Tx, error) { return nil, sql.ErrTxDone }

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Invitations() store.Invitations { return &invitationsRepo{c: t.c} }
func (t *txStore) Profiles() store.Profiles       { return &profilesRepo{c: t.c} }
func (t *txStore) Roles() store.Roles             { return &rolesRepo{c: t.c} }
func (t *txStore) Permissions() store.Permissions { return &permissionsRepo{c: t.c} }
func (t *txStore) Sessions() store.Sessions       { return &sessionsRepo{c: t.c} }

// requireAffected turns a zero-row write into ErrNotFound.
func requireAffected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	v := nt.Time.UTC()
	return &v
}

// scanner is *sql.Row or *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
