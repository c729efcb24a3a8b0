package visitor

import (
	"context"
	"time"
)

// Store persists visitor records together with their alert history.
// Update applies to visitors still checked in and fails with ErrConflict
// otherwise. No write path deletes alert entries or rewrites stored ones;
// only AcknowledgeAlert changes an alert after it is appended.
type Store interface {
	Create(ctx context.Context, v *Visitor) error
	Get(ctx context.Context, id string) (*Visitor, error)
	List(ctx context.Context, opts ListOptions) ([]*Visitor, int, error)
	ListCheckedIn(ctx context.Context) ([]*Visitor, error)
	ListCheckedOut(ctx context.Context, r DateRange) ([]*Visitor, error)
	ListByVisitDate(ctx context.Context, r DateRange) ([]*Visitor, error)
	DailyCounts(ctx context.Context, r DateRange) ([]DailyCount, error)
	Update(ctx context.Context, v *Visitor) error
	RecordSweep(ctx context.Context, v *Visitor, alert *Alert) (bool, error)
	AcknowledgeAlert(ctx context.Context, visitorID, alertID, by string, at time.Time) error
}

// Notifier is told about newly raised overstay alerts.
type Notifier interface {
	NotifyOverstay(ctx context.Context, v *Visitor, a Alert) error
}

// DateRange bounds a query by time. A zero From or To leaves that side open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls within the range, bounds inclusive.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// DailyCount is the number of visits registered on one day.
type DailyCount struct {
	Date     string `json:"date"`
	Visitors int    `json:"visitors"`
}
