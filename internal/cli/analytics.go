package cli

import (
	"io"

	"github.com/spf13/cobra"
)

func newAnalyticsCmd() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Report on visit durations",
		Long:  "Summarise completed visits: average, shortest and longest stay, overstay rate, a duration histogram and overstays by purpose.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkDate("from", from); err != nil {
				return err
			}
			if err := checkDate("to", to); err != nil {
				return err
			}

			a, err := newAPIClient().DurationAnalytics(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), a, func(w io.Writer) error {
				return printAnalytics(w, a)
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first check-in day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last check-in day, inclusive (YYYY-MM-DD)")

	return cmd
}
