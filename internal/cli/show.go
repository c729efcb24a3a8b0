package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show visitor details",
		Long:  "Show full details for a visitor, including the alert history.",
		Args:  cobra.ExactArgs(1),
		RunE:  runShow,
	}
}

func runShow(cmd *cobra.Command, args []string) error {
	v, err := newAPIClient().GetVisitor(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	return output(cmd.OutOrStdout(), v, func(w io.Writer) error {
		printVisitorSummary(w, v)
		fmt.Fprintf(w, "\nAlerts (%d, %d unacknowledged):\n", len(v.AlertHistory), v.UnacknowledgedAlerts())
		printAlerts(w, v.AlertHistory)
		return nil
	})
}
