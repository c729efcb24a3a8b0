package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/evcraddock/front-desk/internal/visitor"
)

const timeLayout = "2006-01-02 15:04"

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printVisitorSummary prints a single visitor in text format.
func printVisitorSummary(w io.Writer, v *visitor.Visitor) {
	fmt.Fprintf(w, "Visitor %s\n", v.ID)
	fmt.Fprintf(w, "  Name:      %s\n", v.FullName)
	fmt.Fprintf(w, "  ID number: %s\n", v.IDNumber)
	fmt.Fprintf(w, "  Phone:     %s\n", v.PhoneNumber)
	if v.Email != "" {
		fmt.Fprintf(w, "  Email:     %s\n", v.Email)
	}
	if v.Company != "" {
		fmt.Fprintf(w, "  Company:   %s\n", v.Company)
	}
	fmt.Fprintf(w, "  Purpose:   %s\n", v.Purpose)
	fmt.Fprintf(w, "  Host:      %s\n", v.HostName)
	if v.Location != "" {
		fmt.Fprintf(w, "  Location:  %s\n", v.Location)
	}
	fmt.Fprintf(w, "  Status:    %s\n", v.Status)
	fmt.Fprintf(w, "  Checked in: %s\n", localTime(v.CheckInTime))
	if v.CheckOutTime != nil {
		fmt.Fprintf(w, "  Checked out: %s\n", localTime(*v.CheckOutTime))
	}
	fmt.Fprintf(w, "  Expected:  %s\n", formatMinutes(v.ExpectedDurationMinutes))
	if v.ActualDurationMinutes != nil {
		fmt.Fprintf(w, "  Actual:    %s\n", formatMinutes(*v.ActualDurationMinutes))
	}
	if v.IsOverstayed {
		fmt.Fprintf(w, "  Overstay:  %s\n", formatMinutes(v.OverstayMinutes))
	}
	if v.Notes != "" {
		fmt.Fprintf(w, "  Notes:     %s\n", v.Notes)
	}
	fmt.Fprintf(w, "  Pass:      %s\n", v.PassID)
}

// printAlerts prints an alert history, oldest first.
func printAlerts(w io.Writer, alerts []visitor.Alert) {
	if len(alerts) == 0 {
		fmt.Fprintln(w, "No alerts.")
		return
	}

	for _, a := range alerts {
		ack := "unacknowledged"
		if a.Acknowledged {
			ack = "acknowledged"
			if a.AcknowledgedBy != "" {
				ack += " by " + a.AcknowledgedBy
			}
		}
		fmt.Fprintf(w, "[%s] %s (%s, %s)\n  %s\n", localTime(a.TriggeredAt), a.Type, a.ID, ack, a.Message)
	}
}

// printVisitorTable prints a page of visitors as a formatted table.
func printVisitorTable(w io.Writer, page *visitor.Page) error {
	if len(page.Data) == 0 {
		fmt.Fprintln(w, "No visitors found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "ID\tNAME\tHOST\tPURPOSE\tSTATUS\tCHECK-IN\tEXPECTED\tOVERSTAY"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(tw, "--\t----\t----\t-------\t------\t--------\t--------\t--------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, v := range page.Data {
		overstay := "-"
		if v.IsOverstayed {
			overstay = formatMinutes(v.OverstayMinutes)
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, truncate(v.FullName, 28), truncate(v.HostName, 20), truncate(v.Purpose, 20),
			v.Status, localTime(v.CheckInTime), formatMinutes(v.ExpectedDurationMinutes), overstay); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	p := page.Pagination
	fmt.Fprintf(w, "\nPage %d of %d (%d visitors)\n", p.CurrentPage, p.TotalPages, p.Total)
	return nil
}

// printCheckOut prints the outcome of a check-out.
func printCheckOut(w io.Writer, r *visitor.CheckOutResult) {
	fmt.Fprintf(w, "%s checked out after %s.\n", r.Visitor.FullName, formatMinutes(r.ActualDurationMinutes))
	if r.IsOverstayed {
		fmt.Fprintf(w, "  Overstayed by %s (expected %s).\n",
			formatMinutes(r.OverstayMinutes), formatMinutes(r.Visitor.ExpectedDurationMinutes))
	}
}

// printSweep prints the visitors flagged by an overstay sweep.
func printSweep(w io.Writer, r *visitor.SweepResult) error {
	fmt.Fprintf(w, "Checked %d visitors on site at %s: %d overstayed, %d approaching limit, %d new alerts.\n",
		r.OnSiteCount, localTime(r.CheckedAt), r.OverstayedCount, r.WarningCount, r.NewAlertCount)
	if len(r.Overstayed) == 0 && len(r.Warnings) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "\nID\tNAME\tHOST\tON SITE\tSTATE"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	for _, e := range r.Overstayed {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\tover by %s\n", e.Visitor.ID, e.Visitor.FullName,
			e.Visitor.HostName, formatMinutes(e.CurrentDurationMinutes), formatMinutes(e.OverstayMinutes)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	for _, e := range r.Warnings {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s left\n", e.Visitor.ID, e.Visitor.FullName,
			e.Visitor.HostName, formatMinutes(e.CurrentDurationMinutes), formatMinutes(e.RemainingMinutes)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}
	return tw.Flush()
}

// printAnalytics prints duration statistics, histogram and overstay
// breakdown.
func printAnalytics(w io.Writer, a *visitor.DurationAnalytics) error {
	s := a.Statistics
	fmt.Fprintf(w, "Completed visits: %d\n", s.TotalVisitors)
	if s.TotalVisitors == 0 {
		return nil
	}
	fmt.Fprintf(w, "Average duration: %.1f min\n", s.AverageDurationMinutes)
	fmt.Fprintf(w, "Shortest/longest: %s / %s\n", formatMinutes(s.MinDurationMinutes), formatMinutes(s.MaxDurationMinutes))
	fmt.Fprintf(w, "Overstayed:       %d (%.1f%%)\n\n", s.OverstayedCount, s.OverstayRate)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "MINUTES\tVISITS\t"); err != nil {
		return fmt.Errorf("writing histogram header: %w", err)
	}
	for _, b := range a.Histogram {
		if _, err := fmt.Fprintf(tw, "%s\t%d\t%s\n", b.Label, b.Count, strings.Repeat("#", b.Count)); err != nil {
			return fmt.Errorf("writing histogram row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing histogram: %w", err)
	}

	if len(a.OverstayByPurpose) == 0 {
		return nil
	}
	fmt.Fprintln(w, "\nOverstays by purpose:")
	for _, p := range a.OverstayByPurpose {
		fmt.Fprintf(w, "  %-24s %3d  (avg %.1f min over)\n", p.Purpose, p.Count, p.AverageOverstayMinutes)
	}
	return nil
}

// printDailyCounts prints visitors per day.
func printDailyCounts(w io.Writer, counts []visitor.DailyCount) {
	if len(counts) == 0 {
		fmt.Fprintln(w, "No visitors in range.")
		return
	}
	total := 0
	for _, c := range counts {
		fmt.Fprintf(w, "%s  %4d\n", c.Date, c.Visitors)
		total += c.Visitors
	}
	fmt.Fprintf(w, "Total       %4d\n", total)
}

// formatMinutes renders a duration in minutes as "1h 15m" or "45m".
func formatMinutes(m int) string {
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	if m%60 == 0 {
		return fmt.Sprintf("%dh", m/60)
	}
	return fmt.Sprintf("%dh %dm", m/60, m%60)
}

// localTime formats t in the local zone.
func localTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
