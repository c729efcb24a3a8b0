package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newAckCmd() *cobra.Command {
	var by string

	cmd := &cobra.Command{
		Use:   "ack <visitor-id> <alert-id>",
		Short: "Acknowledge an alert",
		Long:  "Mark a visitor alert as seen. Without --by the owner of the API key is recorded.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newAPIClient().AcknowledgeAlert(cmd.Context(), args[0], args[1], by)
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), a, func(w io.Writer) error {
				fmt.Fprintf(w, "Alert %s acknowledged by %s.\n", a.ID, a.AcknowledgedBy)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&by, "by", "", "who is acknowledging the alert")

	return cmd
}
