package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/evcraddock/front-desk/internal/visitor"
)

func newRegisterCmd() *cobra.Command {
	var req visitor.RegisterRequest
	var expected int

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Check a visitor in",
		Long:  "Register a visitor arriving at the front office and issue a pass.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("expected") {
				req.ExpectedDurationMinutes = &expected
			}
			return runRegister(cmd, req)
		},
	}

	f := cmd.Flags()
	f.StringVar(&req.FullName, "name", "", "visitor's full name")
	f.StringVar(&req.IDNumber, "id-number", "", "national ID or passport number")
	f.StringVar(&req.PhoneNumber, "phone", "", "phone number")
	f.StringVar(&req.Purpose, "purpose", "", "purpose of the visit")
	f.StringVar(&req.HostName, "host", "", "staff member being visited")
	f.StringVar(&req.Email, "email", "", "email address")
	f.StringVar(&req.Company, "company", "", "company or organisation")
	f.StringVar(&req.Location, "location", "", "where on the premises")
	f.StringVar(&req.Notes, "notes", "", "free-form notes")
	f.IntVar(&expected, "expected", visitor.DefaultExpectedDuration, "expected duration in minutes")

	for _, name := range []string{"name", "id-number", "phone", "purpose", "host"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runRegister(cmd *cobra.Command, req visitor.RegisterRequest) error {
	reg, err := newAPIClient().RegisterVisitor(cmd.Context(), req)
	if err != nil {
		return err
	}

	return output(cmd.OutOrStdout(), reg, func(w io.Writer) error {
		printVisitorSummary(w, reg.Visitor)
		fmt.Fprintf(w, "\nPrint the pass with: fd pass %s -o pass.png\n", reg.Visitor.ID)
		return nil
	})
}
