package invite

import "github.com/spf13/cobra"

// InviteCmd is the parent command for guest list operations
var InviteCmd = &cobra.Command{
	Use:   "invite",
	Short: "Manage the guest list",
	Long: `Commands for adding, listing and revoking invitations directly against the
database. Only invited email addresses can claim a profile on first sign-in.`,
}

func init() {
	InviteCmd.AddCommand(createCmd)
	InviteCmd.AddCommand(listCmd)
	InviteCmd.AddCommand(revokeCmd)
}
