package invite

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/fieldops/cmd/portal/cmd/cmdutil"
	"github.com/aussiebroadwan/fieldops/internal/portal/service"
)

var revokeCmd = &cobra.Command{
	Use:   "revoke <invitation-id>",
	Short: "Remove an unclaimed invitation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := cmdutil.OpenStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := (&service.InviteService{Store: st}).Revoke(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to revoke invitation: %w", err)
		}

		fmt.Fprintf(os.Stdout, "Revoked invitation %s\n", args[0])
		return nil
	},
}
