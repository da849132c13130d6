package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/fieldops/cmd/portal/cmd/cmdutil"
	"github.com/aussiebroadwan/fieldops/internal/portal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the portal HTTP server",
	Long: `Migrates the database, seeds the role catalog and serves the sign-in flow,
the /v1 API and the health endpoints until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.New(cmd.Context(), cmdutil.Config)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}

		return application.Run()
	},
}
