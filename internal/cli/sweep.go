package cli

import (
	"io"

	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Check for overstayed visitors",
		Long:  "Run the overstay check now. Visitors past their expected duration are flagged and alerts raised, without repeating alerts inside the cooldown.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newAPIClient().Sweep(cmd.Context())
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), result, func(w io.Writer) error {
				return printSweep(w, result)
			})
		},
	}
}
