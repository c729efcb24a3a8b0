package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newPassCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "pass <id>",
		Short: "Download a visitor pass QR code",
		Long:  "Fetch the visitor's pass as a QR code PNG and write it to a file.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			png, err := newAPIClient().Pass(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, png, 0o644); err != nil {
				return fmt.Errorf("writing pass: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pass written to %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "output", "o", "pass.png", "file to write the PNG to")

	return cmd
}
