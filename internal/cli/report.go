package cli

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/front-desk/internal/visitor"
)

func newReportCmd() *cobra.Command {
	var from, to string
	var daily bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "List visitors by visit date",
		Long:  "List every visitor between two visit dates, newest first, or with --daily the number of visitors per day. Dates default to today.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			today := time.Now().UTC().Format("2006-01-02")
			if from == "" {
				from = today
			}
			if to == "" {
				to = today
			}
			if err := checkDate("from", from); err != nil {
				return err
			}
			if err := checkDate("to", to); err != nil {
				return err
			}

			c := newAPIClient()
			if daily {
				counts, err := c.DailyCounts(cmd.Context(), from, to)
				if err != nil {
					return err
				}
				return output(cmd.OutOrStdout(), counts, func(w io.Writer) error {
					printDailyCounts(w, counts)
					return nil
				})
			}

			visitors, err := c.Report(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			page := &visitor.Page{
				Data:       visitors,
				Pagination: visitor.Pagination{CurrentPage: 1, Total: len(visitors), TotalPages: 1, PerPage: len(visitors)},
			}
			return output(cmd.OutOrStdout(), visitors, func(w io.Writer) error {
				return printVisitorTable(w, page)
			})
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first visit date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "last visit date, inclusive (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&daily, "daily", false, "show visitor counts per day")

	return cmd
}
