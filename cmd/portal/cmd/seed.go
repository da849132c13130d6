package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/fieldops/cmd/portal/cmd/cmdutil"
	"github.com/aussiebroadwan/fieldops/internal/portal/app"
)

var catalogPath string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the system roles from the role catalog",
	Long: `Creates any catalog role that does not exist yet and grants its permissions.
Roles that already exist are left untouched, so edits made at runtime survive.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := cmdutil.OpenStore()
		if err != nil {
			return err
		}
		defer st.Close()

		path := catalogPath
		if path == "" {
			path = cmdutil.Config.RoleCatalog
		}

		created, err := app.SeedCatalog(cmd.Context(), st, path)
		if err != nil {
			return err
		}

		log.Printf("Seeded %d role(s)", created)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&catalogPath, "catalog", "", "Path to a YAML role catalog (env: PORTAL_ROLE_CATALOG, default: embedded)")
}
