package visitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service is the single point of mutation for visitor records.
type Service struct {
	store     Store
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
	validator *inputValidator
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithNotifier sends newly raised overstay alerts to n.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a visitor service backed by store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
		validator: newInputValidator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// RegisterRequest holds the fields captured at the front desk.
type RegisterRequest struct {
	FullName                string `json:"full_name" validate:"required"`
	IDNumber                string `json:"id_number" validate:"required"`
	PhoneNumber             string `json:"phone_number" validate:"required"`
	Email                   string `json:"email" validate:"omitempty,email"`
	Company                 string `json:"company"`
	Purpose                 string `json:"purpose" validate:"required"`
	HostName                string `json:"host_name" validate:"required"`
	Location                string `json:"location"`
	Notes                   string `json:"notes"`
	ExpectedDurationMinutes *int   `json:"expected_duration_minutes" validate:"omitempty,min=0"`
}

func (r *RegisterRequest) trim() {
	for _, f := range []*string{&r.FullName, &r.IDNumber, &r.PhoneNumber, &r.Email, &r.Company, &r.Purpose, &r.HostName, &r.Location} {
		*f = strings.TrimSpace(*f)
	}
}

// Registration is a newly registered visitor and the QR encoding of its pass.
type Registration struct {
	Visitor *Visitor `json:"visitor"`
	QRCode  string   `json:"qr_code"`
}

// Register checks a new visitor in and issues a pass.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Registration, error) {
	req.trim()
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	expected := DefaultExpectedDuration
	if req.ExpectedDurationMinutes != nil {
		expected = *req.ExpectedDurationMinutes
	}

	now := s.now()
	v := &Visitor{
		ID:                      s.newID(),
		FullName:                req.FullName,
		IDNumber:                req.IDNumber,
		PhoneNumber:             req.PhoneNumber,
		Email:                   req.Email,
		Company:                 req.Company,
		Purpose:                 req.Purpose,
		HostName:                req.HostName,
		Location:                req.Location,
		Notes:                   req.Notes,
		VisitDate:               now.UTC().Format(dateLayout),
		PassID:                  NewPassID(),
		Status:                  StatusCheckedIn,
		CheckInTime:             now,
		ExpectedDurationMinutes: expected,
		AlertHistory:            []Alert{},
		LastActivityTime:        now,
		CreatedAt:               now,
		UpdatedAt:               now,
	}

	qr, err := PassDataURL(v.PassID)
	if err != nil {
		return nil, fmt.Errorf("generating pass: %w", err)
	}

	if err := s.store.Create(ctx, v); err != nil {
		return nil, storeErr("create", err)
	}

	s.logger.Info("visitor registered", "visitor_id", v.ID, "host", v.HostName, "expected_minutes", expected)
	return &Registration{Visitor: v, QRCode: qr}, nil
}

// Get returns a visitor by id.
func (s *Service) Get(ctx context.Context, id string) (*Visitor, error) {
	v, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, storeErr("get", err)
	}
	return v, nil
}

// List returns one page of visitors.
func (s *Service) List(ctx context.Context, opts ListOptions) (*Page, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}

	visitors, total, err := s.store.List(ctx, opts)
	if err != nil {
		return nil, storeErr("list", err)
	}
	if visitors == nil {
		visitors = []*Visitor{}
	}

	return &Page{Data: visitors, Pagination: newPagination(opts.Page, opts.Limit, total)}, nil
}

// CheckOutResult is a checked-out visitor with its computed stay.
type CheckOutResult struct {
	Visitor               *Visitor `json:"visitor"`
	ActualDurationMinutes int      `json:"actual_duration_minutes"`
	IsOverstayed          bool     `json:"is_overstayed"`
	OverstayMinutes       int      `json:"overstay_minutes"`
}

// CheckOut ends a visit, recording the actual duration rounded to the
// nearest minute and any overstay.
func (s *Service) CheckOut(ctx context.Context, id string) (*CheckOutResult, error) {
	v, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, storeErr("get", err)
	}
	if v.Status != StatusCheckedIn {
		return nil, fmt.Errorf("visitor %s is not currently checked in: %w", id, ErrConflict)
	}

	now := s.now()
	actual := elapsedRounded(v.CheckInTime, now)

	v.Status = StatusCheckedOut
	v.CheckOutTime = &now
	v.ActualDurationMinutes = &actual
	v.IsOverstayed = actual > v.ExpectedDurationMinutes
	v.OverstayMinutes = 0
	if v.IsOverstayed {
		v.OverstayMinutes = actual - v.ExpectedDurationMinutes
	}
	v.UpdatedAt = now

	if err := s.store.Update(ctx, v); err != nil {
		return nil, storeErr("update", err)
	}

	s.logger.Info("visitor checked out",
		"visitor_id", v.ID, "actual_minutes", actual, "overstay_minutes", v.OverstayMinutes)

	return &CheckOutResult{
		Visitor:               v,
		ActualDurationMinutes: actual,
		IsOverstayed:          v.IsOverstayed,
		OverstayMinutes:       v.OverstayMinutes,
	}, nil
}

// UpdateExpectedDuration changes how long a visitor on site is expected to
// stay. Notes are replaced only when non-nil. The overstay flag is
// re-derived against the new duration.
func (s *Service) UpdateExpectedDuration(ctx context.Context, id string, minutes int, notes *string) (*Visitor, error) {
	if minutes <= 0 {
		return nil, invalidField("expected_duration_minutes", "must be greater than 0")
	}

	v, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, storeErr("get", err)
	}
	if v.Status != StatusCheckedIn {
		return nil, fmt.Errorf("visitor %s is not currently checked in: %w", id, ErrConflict)
	}

	now := s.now()
	v.ExpectedDurationMinutes = minutes
	if notes != nil {
		v.Notes = *notes
	}

	a := Evaluate(v.CheckInTime, minutes, now)
	v.IsOverstayed = a.Classification == Overstayed
	v.OverstayMinutes = a.OverstayMinutes
	v.UpdatedAt = now

	if err := s.store.Update(ctx, v); err != nil {
		return nil, storeErr("update", err)
	}

	s.logger.Info("expected duration updated", "visitor_id", v.ID, "expected_minutes", minutes)
	return v, nil
}

// AcknowledgeAlert marks one alert as seen. Acknowledging again overwrites
// who acknowledged it and when.
func (s *Service) AcknowledgeAlert(ctx context.Context, id, alertID, acknowledgedBy string) (*Alert, error) {
	v, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, storeErr("get", err)
	}

	alert := v.FindAlert(alertID)
	if alert == nil {
		return nil, fmt.Errorf("alert %s on visitor %s: %w", alertID, id, ErrNotFound)
	}

	now := s.now()
	by := strings.TrimSpace(acknowledgedBy)
	if err := s.store.AcknowledgeAlert(ctx, v.ID, alertID, by, now); err != nil {
		return nil, storeErr("acknowledge", err)
	}

	alert.Acknowledged = true
	alert.AcknowledgedBy = by
	alert.AcknowledgedAt = &now

	s.logger.Info("alert acknowledged", "visitor_id", v.ID, "alert_id", alertID, "by", alert.AcknowledgedBy)
	acked := *alert
	return &acked, nil
}

// SweepEntry is one visitor flagged by a sweep.
type SweepEntry struct {
	Visitor                *Visitor `json:"visitor"`
	CurrentDurationMinutes int      `json:"current_duration_minutes"`
	OverstayMinutes        int      `json:"overstay_minutes,omitempty"`
	RemainingMinutes       int      `json:"remaining_minutes,omitempty"`
}

// SweepResult is the outcome of one overstay sweep.
type SweepResult struct {
	CheckedAt       time.Time    `json:"checked_at"`
	Overstayed      []SweepEntry `json:"overstayed"`
	Warnings        []SweepEntry `json:"warnings"`
	OnSiteCount     int          `json:"on_site_count"`
	OverstayedCount int          `json:"overstayed_count"`
	WarningCount    int          `json:"warning_count"`
	NewAlertCount   int          `json:"new_alert_count"`
}

// Sweep classifies every visitor on site, flags overstays and raises
// alerts subject to the cooldowns. Running it repeatedly within a cooldown
// window adds no duplicate alerts.
func (s *Service) Sweep(ctx context.Context) (*SweepResult, error) {
	visitors, err := s.store.ListCheckedIn(ctx)
	if err != nil {
		return nil, storeErr("list checked in", err)
	}

	now := s.now()
	result := &SweepResult{
		CheckedAt:   now,
		Overstayed:  []SweepEntry{},
		Warnings:    []SweepEntry{},
		OnSiteCount: len(visitors),
	}

	for _, v := range visitors {
		a := Evaluate(v.CheckInTime, v.ExpectedDurationMinutes, now)
		if a.Classification == Normal {
			continue
		}

		if a.Classification == Overstayed {
			v.IsOverstayed = true
			v.OverstayMinutes = a.OverstayMinutes
			v.LastActivityTime = now
		}
		alert := v.recordAlert(a, now, s.newID)

		// A warning inside its cooldown changes nothing on the record.
		if a.Classification == Overstayed || alert != nil {
			v.UpdatedAt = now
			applied, err := s.store.RecordSweep(ctx, v, alert)
			if err != nil {
				return nil, storeErr("record sweep", err)
			}
			if !applied {
				s.logger.Debug("visitor left during sweep", "visitor_id", v.ID)
				result.OnSiteCount--
				continue
			}
		}

		entry := SweepEntry{Visitor: v, CurrentDurationMinutes: a.CurrentDurationMinutes}
		if a.Classification == Overstayed {
			entry.OverstayMinutes = a.OverstayMinutes
			result.Overstayed = append(result.Overstayed, entry)
		} else {
			entry.RemainingMinutes = a.RemainingMinutes
			result.Warnings = append(result.Warnings, entry)
		}

		if alert != nil {
			raised := *alert
			result.NewAlertCount++
			s.logger.Info("visitor alert raised", "visitor_id", v.ID, "type", raised.Type, "message", raised.Message)
			if raised.Type == AlertOverstay {
				s.notify(ctx, v, raised)
			}
		}
	}

	result.OverstayedCount = len(result.Overstayed)
	result.WarningCount = len(result.Warnings)

	s.logger.Debug("overstay sweep complete",
		"on_site", result.OnSiteCount, "overstayed", result.OverstayedCount,
		"warnings", result.WarningCount, "new_alerts", result.NewAlertCount)

	return result, nil
}

// notify hands an alert to the notifier. Failures are logged, never returned.
func (s *Service) notify(ctx context.Context, v *Visitor, a Alert) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyOverstay(ctx, v, a); err != nil {
		s.logger.Warn("overstay notification failed", "visitor_id", v.ID, "alert_id", a.ID, "error", err)
	}
}

// DurationAnalytics reports on completed visits that checked in within r.
func (s *Service) DurationAnalytics(ctx context.Context, r DateRange) (*DurationAnalytics, error) {
	visitors, err := s.store.ListCheckedOut(ctx, r)
	if err != nil {
		return nil, storeErr("list checked out", err)
	}
	result := Aggregate(visitors)
	return &result, nil
}

// Report returns every visitor whose visit date falls within r, newest first.
func (s *Service) Report(ctx context.Context, r DateRange) ([]*Visitor, error) {
	visitors, err := s.store.ListByVisitDate(ctx, r)
	if err != nil {
		return nil, storeErr("list by visit date", err)
	}
	if visitors == nil {
		visitors = []*Visitor{}
	}
	return visitors, nil
}

// DailyCounts returns visitors per day within r.
func (s *Service) DailyCounts(ctx context.Context, r DateRange) ([]DailyCount, error) {
	counts, err := s.store.DailyCounts(ctx, r)
	if err != nil {
		return nil, storeErr("daily counts", err)
	}
	if counts == nil {
		counts = []DailyCount{}
	}
	return counts, nil
}
