package cli

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/uploadhaven/internal/common"
	"github.com/spf13/cobra"
)

func (a *App) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the crypto primitives needed for sharing work here",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report := a.guard.Check()
			if report.Supported {
				fmt.Fprintln(a.out, "ok: secure random, authenticated encryption and key derivation are available")
				return nil
			}
			fmt.Fprintf(a.out, "missing: %s\n", strings.Join(report.MissingFeatures, ", "))
			return common.ErrUnsupportedEnvironment
		},
	}
}
