package app

import (
	"fmt"
	"strings"

	"github.com/aussiebroadwan/fieldops/internal/portal/store"
	"github.com/aussiebroadwan/fieldops/internal/portal/store/drivers/postgres"
	"github.com/aussiebroadwan/fieldops/internal/portal/store/drivers/sqlite"
)

// OpenStore opens the configured driver without migrating it.
func OpenStore(cfg Config) (store.Store, error) {
	switch cfg.DatabaseDriver {
	case DriverPostgres:
		st, err := postgres.NewStore(cfg.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return st, nil

	case DriverSQLite, "":
		st, err := sqlite.NewStore(sqliteDSN(cfg.DatabaseDSN))
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		return st, nil

	default:
		return nil, fmt.Errorf("%w: unknown PORTAL_DATABASE_DRIVER %q", ErrInvalidConfig, cfg.DatabaseDriver)
	}
}

// sqliteDSN turns a bare file path into a DSN with a busy timeout and WAL.
func sqliteDSN(path string) string {
	if path == ":memory:" || strings.HasPrefix(path, "file:") {
		return path
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
}
