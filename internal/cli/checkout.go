package cli

import (
	"io"

	"github.com/spf13/cobra"
)

func newCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checkout <id>",
		Short: "Check a visitor out",
		Long:  "Record a visitor's departure and report how long they stayed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := newAPIClient().CheckOut(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), result, func(w io.Writer) error {
				printCheckOut(w, result)
				return nil
			})
		},
	}
}
