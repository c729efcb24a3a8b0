package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
)

func newExtendCmd() *cobra.Command {
	var notes string

	cmd := &cobra.Command{
		Use:   "extend <id> <minutes>",
		Short: "Change a visitor's expected duration",
		Long:  "Set a new expected duration in minutes for a visitor who is still on site.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := strconv.Atoi(args[1])
			if err != nil || minutes <= 0 {
				return fmt.Errorf("minutes must be a positive integer, got %q", args[1])
			}

			var notesPtr *string
			if cmd.Flags().Changed("notes") {
				notesPtr = &notes
			}

			v, err := newAPIClient().UpdateExpectedDuration(cmd.Context(), args[0], minutes, notesPtr)
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), v, func(w io.Writer) error {
				fmt.Fprintf(w, "%s is now expected for %s.\n", v.FullName, formatMinutes(v.ExpectedDurationMinutes))
				if v.IsOverstayed {
					fmt.Fprintf(w, "  Still overstayed by %s.\n", formatMinutes(v.OverstayMinutes))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "replace the visitor's notes")

	return cmd
}
