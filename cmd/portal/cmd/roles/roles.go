package roles

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/fieldops/cmd/portal/cmd/cmdutil"
	"github.com/aussiebroadwan/fieldops/internal/portal/service"
)

// RolesCmd is the parent command for role inspection
var RolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Inspect roles and their permissions",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List roles with their permissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := cmdutil.OpenStore()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := cmd.Context()
		svc := &service.RolesService{Store: st}
		roles, err := svc.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list roles: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDISPLAY_NAME\tSYSTEM\tPERMISSIONS")
		for _, role := range roles {
			perms, err := svc.Permissions(ctx, role.ID)
			if err != nil {
				return fmt.Errorf("failed to list permissions for role '%s': %w", role.Name, err)
			}
			fmt.Fprintf(w, "%s\t%s\t%t\t%s\n",
				role.Name,
				role.DisplayName,
				role.IsSystem,
				strings.Join(perms, ", "),
			)
		}
		return w.Flush()
	},
}

func init() {
	RolesCmd.AddCommand(listCmd)
}
