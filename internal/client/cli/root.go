package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree around a.
func NewRootCmd(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "uploadhaven",
		Short:         "Share files encrypted end to end",
		Long:          `Files are encrypted on this machine before upload. The key travels only in the share link, or is derived from a password you share separately.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	root.AddCommand(a.uploadCmd())
	root.AddCommand(a.downloadCmd())
	root.AddCommand(a.checkCmd())
	return root
}
