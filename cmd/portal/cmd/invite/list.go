package invite

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/fieldops/cmd/portal/cmd/cmdutil"
	"github.com/aussiebroadwan/fieldops/internal/portal/service"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List unclaimed invitations",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := cmdutil.OpenStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		invitations, err := (&service.InviteService{Store: st}).List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list invitations: %w", err)
		}

		roles, err := (&service.RolesService{Store: st}).List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list roles: %w", err)
		}
		roleNames := make(map[string]string, len(roles))
		for _, r := range roles {
			roleNames[r.ID] = r.Name
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tEMAIL\tROLE\tTECHNICIAN\tOFFICE_STAFF\tCREATED_BY\tCREATED_AT")
		for _, inv := range invitations {
			role := "-"
			if inv.RoleID != nil {
				role = roleNames[*inv.RoleID]
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%t\t%s\t%s\n",
				inv.ID,
				inv.Email,
				role,
				inv.IsTechnician,
				inv.IsOfficeStaff,
				inv.CreatedBy,
				inv.CreatedAt.Format(time.RFC3339),
			)
		}
		return w.Flush()
	},
}
