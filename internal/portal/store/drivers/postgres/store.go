// Package postgres is the hosted store driver, built on lib/pq.
package postgres

import (
	"database/sql"
	"errors"
	"time"

	"github.com/aussiebroadwan/fieldops/internal/portal/store/drivers/sqldb"

	"github.com/lib/pq"
)

// uniqueViolation is SQLSTATE 23505.
const uniqueViolation = "23505"

var Dialect = sqldb.Dialect{
	Name:              "postgres",
	Rebind:            sqldb.RebindDollar,
	IsUniqueViolation: isUniqueViolation,
}

type Store struct {
	*sqldb.Store
}

// NewStore opens a pooled connection to dsn. The connection is verified
// lazily; call Ping to check it.
func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return NewStoreFromDB(db), nil
}

// NewStoreFromDB wraps an already open database, e.g. a sqlmock connection.
func NewStoreFromDB(db *sql.DB) *Store {
	return &Store{Store: sqldb.New(db, Dialect, applyMigrations)}
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}
