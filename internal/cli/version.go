package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (r *runner) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "protodo %s\n", r.opts.Version)
		},
	}
}
