package invite

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/fieldops/cmd/portal/cmd/cmdutil"
	"github.com/aussiebroadwan/fieldops/internal/portal/service"
)

var (
	emailFlag       string
	displayNameFlag string
	roleFlag        string
	technicianFlag  bool
	officeStaffFlag bool
	onboardedFlag   bool
	createdByFlag   string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Invite an email address",
	Example: `  portal invite create --email tech@example.com --role technician --technician
  portal invite create --email ops@example.com --role office_staff --onboarded`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if emailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}

		st, err := cmdutil.OpenStore()
		if err != nil {
			return err
		}
		defer st.Close()

		svc := &service.InviteService{Store: st}
		inv, err := svc.Create(cmd.Context(), service.InviteRequest{
			Email:               emailFlag,
			DisplayName:         displayNameFlag,
			Role:                roleFlag,
			IsTechnician:        technicianFlag,
			IsOfficeStaff:       officeStaffFlag,
			OnboardingCompleted: onboardedFlag,
		}, createdByFlag)
		if err != nil {
			return fmt.Errorf("failed to create invitation: %w", err)
		}

		fmt.Fprintf(os.Stdout, "Invited %s (id %s)\n", inv.Email, inv.ID)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&emailFlag, "email", "", "Email address to invite (required)")
	createCmd.Flags().StringVar(&displayNameFlag, "name", "", "Display name for the new profile")
	createCmd.Flags().StringVar(&roleFlag, "role", "", "Role name or id the profile starts with")
	createCmd.Flags().BoolVar(&technicianFlag, "technician", false, "Mark the profile as a field technician")
	createCmd.Flags().BoolVar(&officeStaffFlag, "office-staff", false, "Mark the profile as office staff")
	createCmd.Flags().BoolVar(&onboardedFlag, "onboarded", false, "Skip onboarding on first sign-in")
	createCmd.Flags().StringVar(&createdByFlag, "created-by", "cli", "Recorded as the inviting administrator")
}
