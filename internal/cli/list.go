package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/evcraddock/front-desk/internal/client"
)

func newListCmd() *cobra.Command {
	var params client.ListParams
	var asc bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List visitors",
		Long:  "List visitors, newest first by default, with optional search and filters.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if asc {
				params.SortOrder = "asc"
			}
			return runList(cmd, params)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&params.Search, "search", "s", "", "search name, ID number, phone, email, company, purpose or host")
	f.StringSliceVar(&params.Statuses, "status", nil, "filter by status (checked_in, checked_out)")
	f.StringVar(&params.Company, "company", "", "filter by company")
	f.StringVar(&params.Purpose, "purpose", "", "filter by purpose")
	f.StringVar(&params.SortField, "sort", "", "sort field (e.g. created_at, full_name, check_in_time)")
	f.BoolVar(&asc, "asc", false, "sort ascending")
	f.IntVar(&params.Page, "page", 1, "page number")
	f.IntVar(&params.Limit, "limit", 20, "visitors per page (max 100)")

	return cmd
}

func runList(cmd *cobra.Command, params client.ListParams) error {
	page, err := newAPIClient().ListVisitors(cmd.Context(), params)
	if err != nil {
		return err
	}

	return output(cmd.OutOrStdout(), page, func(w io.Writer) error {
		return printVisitorTable(w, page)
	})
}
