package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/fieldops/cmd/portal/cmd/cmdutil"
	"github.com/aussiebroadwan/fieldops/cmd/portal/cmd/invite"
	"github.com/aussiebroadwan/fieldops/cmd/portal/cmd/roles"
)

var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "Field operations portal",
	Long: `The field operations portal signs staff in through the organisation's identity
provider, admits only invited email addresses and gates every page on role permissions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := cmdutil.Load(cmd); err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().String("db-driver", "", "Database driver, sqlite or postgres (env: PORTAL_DATABASE_DRIVER)")
	rootCmd.PersistentFlags().String("db-dsn", "", "Database file or connection URL (env: PORTAL_DATABASE_DSN)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (env: LOG_LEVEL)")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(invite.InviteCmd)
	rootCmd.AddCommand(roles.RolesCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
