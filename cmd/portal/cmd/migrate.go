package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/fieldops/cmd/portal/cmd/cmdutil"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := cmdutil.OpenStore()
		if err != nil {
			return err
		}
		defer st.Close()

		log.Printf("Migrations applied to %s database", cmdutil.Config.DatabaseDriver)
		return nil
	},
}
