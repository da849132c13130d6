// Package cmdutil holds the configuration and store plumbing shared by the
// portal subcommands.
package cmdutil

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/fieldops/internal/portal/app"
	"github.com/aussiebroadwan/fieldops/internal/portal/store"
)

// Config is loaded once by the root command before any subcommand runs.
var Config app.Config

// Load reads the environment, applies flag overrides and validates the result.
func Load(cmd *cobra.Command) error {
	cfg := app.LoadConfig()

	flags := cmd.Flags()
	if v, _ := flags.GetString("db-driver"); v != "" {
		cfg.DatabaseDriver = v
	}
	if v, _ := flags.GetString("db-dsn"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v, _ := flags.GetBool("debug"); v {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	Config = cfg
	return nil
}

// OpenStore opens and migrates the configured store. Callers close it.
func OpenStore() (store.Store, error) {
	st, err := app.OpenStore(Config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := st.ApplyMigrations(); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return st, nil
}
