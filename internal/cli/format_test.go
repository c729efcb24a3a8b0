package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/evcraddock/front-desk/internal/visitor"
)

func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "0m"},
		{45, "45m"},
		{60, "1h"},
		{75, "1h 15m"},
		{1440, "24h"},
	}

	for _, tt := range tests {
		if got := formatMinutes(tt.minutes); got != tt.want {
			t.Errorf("formatMinutes(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"long", "hello world!", 8, "hello..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.input, tt.max); got != tt.expected {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.expected)
			}
		})
	}
}

func TestPrintVisitorTable(t *testing.T) {
	var buf bytes.Buffer
	page := &visitor.Page{
		Data: []*visitor.Visitor{{
			ID:                      "3f1c2a9e-0000-4000-8000-000000000001",
			FullName:                "Jane Wanjiku",
			HostName:                "Principal",
			Purpose:                 "Admission",
			Status:                  visitor.StatusCheckedIn,
			CheckInTime:             time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC),
			ExpectedDurationMinutes: 60,
			IsOverstayed:            true,
			OverstayMinutes:         15,
		}},
		Pagination: visitor.Pagination{CurrentPage: 1, Total: 1, TotalPages: 1, PerPage: 10},
	}

	if err := printVisitorTable(&buf, page); err != nil {
		t.Fatalf("print: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"3f1c2a9e-0000-4000-8000-000000000001", "Jane Wanjiku", "Checked In", "1h", "15m", "Page 1 of 1 (1 visitors)"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestPrintVisitorTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := printVisitorTable(&buf, &visitor.Page{}); err != nil {
		t.Fatalf("print: %v", err)
	}
	if buf.String() != "No visitors found.\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrintAnalytics(t *testing.T) {
	a := visitor.Aggregate([]*visitor.Visitor{
		{Purpose: "Meeting", ActualDurationMinutes: intPtr(40)},
		{Purpose: "Admission", ActualDurationMinutes: intPtr(95), IsOverstayed: true, OverstayMinutes: 35},
	})

	var buf bytes.Buffer
	if err := printAnalytics(&buf, &a); err != nil {
		t.Fatalf("print: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Completed visits: 2", "Average duration: 67.5 min", "Overstayed:       1 (50.0%)", "60-120", "Admission"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestPrintDailyCounts(t *testing.T) {
	var buf bytes.Buffer
	printDailyCounts(&buf, []visitor.DailyCount{{Date: "2026-10-16", Visitors: 3}, {Date: "2026-10-17", Visitors: 4}})

	if !strings.Contains(buf.String(), "Total          7") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrintAlerts(t *testing.T) {
	var buf bytes.Buffer
	printAlerts(&buf, []visitor.Alert{
		{ID: "a1", Type: visitor.AlertOverstay, Message: "Visitor has overstayed by 10 minutes", TriggeredAt: time.Now()},
		{ID: "a2", Type: visitor.AlertDurationWarning, Acknowledged: true, AcknowledgedBy: "Deputy", TriggeredAt: time.Now()},
	})

	out := buf.String()
	if !strings.Contains(out, "unacknowledged") || !strings.Contains(out, "acknowledged by Deputy") {
		t.Errorf("output = %q", out)
	}
}

func intPtr(n int) *int { return &n }
