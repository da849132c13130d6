// Package sqlite is the embedded store driver. It is the default for local
// development and the service tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/aussiebroadwan/fieldops/internal/portal/store/drivers/sqldb"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect is the sqlite flavour of the shared repositories.
var Dialect = sqldb.Dialect{
	Name:              "sqlite",
	Rebind:            sqldb.RebindQuestion,
	IsUniqueViolation: isUniqueViolation,
}

type Store struct {
	*sqldb.Store
	dsn string
}

// NewStore opens dsn (a file path or ":memory:"). The pool is limited to one
// connection: sqlite serialises writers anyway and an in-memory database only
// exists on the connection that created it.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		Store: sqldb.New(db, Dialect, applyMigrations),
		dsn:   dsn,
	}, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
