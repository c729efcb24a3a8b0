package visitor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Set(t time.Time) { c.now = t }

type recordingNotifier struct {
	alerts []Alert
	err    error
}

func (n *recordingNotifier) NotifyOverstay(_ context.Context, _ *Visitor, a Alert) error {
	n.alerts = append(n.alerts, a)
	return n.err
}

var t0 = time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)

func testService(t *testing.T) (*Service, *testClock, *recordingNotifier) {
	t.Helper()
	clock := &testClock{now: t0}
	notifier := &recordingNotifier{}
	svc := NewService(testRepo(t), WithClock(clock.Now), WithNotifier(notifier))
	return svc, clock, notifier
}

func validRequest(expected *int) RegisterRequest {
	return RegisterRequest{
		FullName:                "Grace Achieng",
		IDNumber:                "12345678",
		PhoneNumber:             "0722000111",
		Email:                   "grace@example.com",
		Company:                 "Acme Supplies",
		Purpose:                 "Meeting",
		HostName:                "Mr. Mwangi",
		ExpectedDurationMinutes: expected,
	}
}

func intPtr(n int) *int { return &n }

func countAlerts(v *Visitor, typ AlertType) int {
	n := 0
	for _, a := range v.AlertHistory {
		if a.Type == typ {
			n++
		}
	}
	return n
}

func TestRegister(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, validRequest(nil))
	require.NoError(t, err)

	v := reg.Visitor
	assert.NotEmpty(t, v.ID)
	assert.NotEmpty(t, v.PassID)
	assert.Equal(t, StatusCheckedIn, v.Status)
	assert.Equal(t, DefaultExpectedDuration, v.ExpectedDurationMinutes)
	assert.True(t, v.CheckInTime.Equal(t0))
	assert.True(t, v.LastActivityTime.Equal(t0))
	assert.Equal(t, "2026-10-17", v.VisitDate)
	assert.Nil(t, v.CheckOutTime)
	assert.Nil(t, v.ActualDurationMinutes)
	assert.True(t, strings.HasPrefix(reg.QRCode, "data:image/png;base64,"))

	stored, err := svc.Get(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.PassID, stored.PassID)
	assert.Equal(t, "Grace Achieng", stored.FullName)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(r *RegisterRequest)
		field  string
	}{
		{"missing name", func(r *RegisterRequest) { r.FullName = "" }, "full_name"},
		{"blank id number", func(r *RegisterRequest) { r.IDNumber = "   " }, "id_number"},
		{"missing phone", func(r *RegisterRequest) { r.PhoneNumber = "" }, "phone_number"},
		{"missing purpose", func(r *RegisterRequest) { r.Purpose = "" }, "purpose"},
		{"missing host", func(r *RegisterRequest) { r.HostName = "" }, "host_name"},
		{"bad email", func(r *RegisterRequest) { r.Email = "not-an-email" }, "email"},
		{"negative duration", func(r *RegisterRequest) { r.ExpectedDurationMinutes = intPtr(-5) }, "expected_duration_minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest(nil)
			tt.mutate(&req)

			_, err := svc.Register(ctx, req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			require.Len(t, verr.Fields, 1)
			assert.Equal(t, tt.field, verr.Fields[0].Field)
		})
	}

	page, err := svc.List(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, page.Pagination.Total, "invalid registrations must not be stored")
}

func TestRegisterZeroExpectedDuration(t *testing.T) {
	svc, clock, _ := testService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, validRequest(intPtr(0)))
	require.NoError(t, err)
	assert.Equal(t, 0, reg.Visitor.ExpectedDurationMinutes)

	clock.Set(t0.Add(time.Minute))
	result, err := svc.Sweep(ctx)
	require.NoError(t, err)
	require.Len(t, result.Overstayed, 1)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, 1, result.Overstayed[0].OverstayMinutes)
}

func TestSweepApproachingThenOverstayed(t *testing.T) {
	svc, clock, notifier := testService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, validRequest(intPtr(60)))
	require.NoError(t, err)
	id := reg.Visitor.ID

	// 80% of 60 is 48, so 50 minutes is approaching the limit.
	clock.Set(t0.Add(50 * time.Minute))
	result, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.OnSiteCount)
	assert.Equal(t, 0, result.OverstayedCount)
	require.Equal(t, 1, result.WarningCount)
	assert.Equal(t, 50, result.Warnings[0].CurrentDurationMinutes)
	assert.Equal(t, 10, result.Warnings[0].RemainingMinutes)
	assert.Equal(t, 1, result.NewAlertCount)

	v, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, v.AlertHistory, 1)
	assert.Equal(t, AlertDurationWarning, v.AlertHistory[0].Type)
	assert.Equal(t, "Visitor approaching expected duration (50/60 minutes)", v.AlertHistory[0].Message)
	assert.False(t, v.IsOverstayed)
	assert.True(t, v.LastActivityTime.Equal(t0), "warnings leave record fields untouched")

	// Within the 15 minute warning cooldown.
	clock.Set(t0.Add(52 * time.Minute))
	result, err = svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.WarningCount)
	assert.Equal(t, 0, result.NewAlertCount)

	v, err = svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, countAlerts(v, AlertDurationWarning))

	clock.Set(t0.Add(70 * time.Minute))
	result, err = svc.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, result.OverstayedCount)
	assert.Equal(t, 70, result.Overstayed[0].CurrentDurationMinutes)
	assert.Equal(t, 10, result.Overstayed[0].OverstayMinutes)

	v, err = svc.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, v.IsOverstayed)
	assert.True(t, v.AlertsTriggered)
	assert.Equal(t, 10, v.OverstayMinutes)
	assert.True(t, v.LastActivityTime.Equal(t0.Add(70*time.Minute)))
	assert.Equal(t, 1, countAlerts(v, AlertOverstay))
	assert.Equal(t, "Visitor has overstayed by 10 minutes", v.AlertHistory[1].Message)
	require.Len(t, notifier.alerts, 1)
	assert.Equal(t, AlertOverstay, notifier.alerts[0].Type)
}

func TestSweepIdempotentWithinCooldown(t *testing.T) {
	svc, clock, notifier := testService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, validRequest(intPtr(60)))
	require.NoError(t, err)

	for _, m := range []int{70, 71, 85, 99} {
		clock.Set(t0.Add(time.Duration(m) * time.Minute))
		_, err := svc.Sweep(ctx)
		require.NoError(t, err)
	}

	v, err := svc.Get(ctx, reg.Visitor.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, countAlerts(v, AlertOverstay))
	assert.Equal(t, 39, v.OverstayMinutes, "overstay minutes track the latest sweep")

	clock.Set(t0.Add(100 * time.Minute))
	result, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.NewAlertCount)

	v, err = svc.Get(ctx, reg.Visitor.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, countAlerts(v, AlertOverstay))
	assert.Len(t, notifier.alerts, 2)
}

func TestSweepIgnoresCheckedOut(t *testing.T) {
	svc, clock, _ := testService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, validRequest(intPtr(30)))
	require.NoError(t, err)

	clock.Set(t0.Add(10 * time.Minute))
	_, err = svc.CheckOut(ctx, reg.Visitor.ID)
	require.NoError(t, err)

	clock.Set(t0.Add(5 * time.Hour))
	result, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.OnSiteCount)
	assert.Empty(t, result.Overstayed)
	assert.Empty(t, result.Warnings)
}

func TestSweepNotificationFailureIsNotFatal(t *testing.T) {
	svc, clock, notifier := testService(t)
	notifier.err = errors.New("smtp down")
	ctx := context.Background()

	_, err := svc.Register(ctx, validRequest(intPtr(10)))
	require.NoError(t, err)

	clock.Set(t0.Add(20 * time.Minute))
	result, err := svc.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.NewAlertCount)
}

type hookNotifier struct {
	calls  int
	onCall func(v *Visitor)
}

func (n *hookNotifier) NotifyOverstay(_ context.Context, v *Visitor, _ Alert) error {
	n.calls++
	if n.onCall != nil {
		n.onCall(v)
	}
	return nil
}

func TestSweepCheckOutDuringSweep(t *testing.T) {
	clock := &testClock{now: t0}
	notifier := &hookNotifier{}
	svc := NewService(testRepo(t), WithClock(clock.Now), WithNotifier(notifier))
	ctx := context.Background()

	first, err := svc.Register(ctx, validRequest(intPtr(10)))
	require.NoError(t, err)
	clock.Set(t0.Add(time.Minute))
	req := validRequest(intPtr(10))
	req.IDNumber = "87654321"
	second, err := svc.Register(ctx, req)
	require.NoError(t, err)

	var checkOutErr error
	notifier.onCall = func(v *Visitor) {
		if v.ID == first.Visitor.ID {
			_, checkOutErr = svc.CheckOut(ctx, second.Visitor.ID)
		}
	}

	clock.Set(t0.Add(30 * time.Minute))
	result, err := svc.Sweep(ctx)
	require.NoError(t, err)
	require.NoError(t, checkOutErr)

	assert.Equal(t, 1, notifier.calls, "no alert mail for a visitor who left")
	assert.Equal(t, 1, result.OnSiteCount)
	assert.Equal(t, 1, result.NewAlertCount)
	require.Len(t, result.Overstayed, 1)
	assert.Equal(t, first.Visitor.ID, result.Overstayed[0].Visitor.ID)

	v, err := svc.Get(ctx, second.Visitor.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedOut, v.Status)
	require.NotNil(t, v.CheckOutTime)
	require.NotNil(t, v.ActualDurationMinutes)
	assert.Equal(t, 29, *v.ActualDurationMinutes)
	assert.Equal(t, 0, countAlerts(v, AlertOverstay))
}

// listHookStore runs afterList once ListCheckedIn has returned its snapshot.
type listHookStore struct {
	Store
	afterList func()
}

func (s *listHookStore) ListCheckedIn(ctx context.Context) ([]*Visitor, error) {
	visitors, err := s.Store.ListCheckedIn(ctx)
	if err == nil && s.afterList != nil {
		s.afterList()
	}
	return visitors, err
}

func TestSweepKeepsAcknowledgementMadeDuringSweep(t *testing.T) {
	clock := &testClock{now: t0}
	repo := testRepo(t)
	svc := NewService(repo, WithClock(clock.Now))
	ctx := context.Background()

	reg, err := svc.Register(ctx, validRequest(intPtr(60)))
	require.NoError(t, err)
	id := reg.Visitor.ID

	clock.Set(t0.Add(70 * time.Minute))
	_, err = svc.Sweep(ctx)
	require.NoError(t, err)

	v, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, v.AlertHistory, 1)
	alertID := v.AlertHistory[0].ID

	var ackErr error
	hooked := &listHookStore{Store: repo, afterList: func() {
		_, ackErr = svc.AcknowledgeAlert(ctx, id, alertID, "guard")
	}}
	sweeper := NewService(hooked, WithClock(clock.Now))

	clock.Set(t0.Add(80 * time.Minute))
	result, err := sweeper.Sweep(ctx)
	require.NoError(t, err)
	require.NoError(t, ackErr)
	assert.Equal(t, 0, result.NewAlertCount)

	v, err = svc.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, v.AlertHistory, 1)
	assert.True(t, v.AlertHistory[0].Acknowledged)
	assert.Equal(t, "guard", v.AlertHistory[0].AcknowledgedBy)
	assert.Equal(t, 20, v.OverstayMinutes)
}

func TestCheckOut(t *testing.T) {
	tests := []struct {
		name         string
		expected     int
		stay         time.Duration
		wantActual   int
		wantOver     bool
		wantOverMins int
	}{
		{"within expected", 60, 45 * time.Minute, 45, false, 0},
		{"overstayed", 30, 40 * time.Minute, 40, true, 10},
		{"rounds to nearest minute", 60, 60*time.Minute + 30*time.Second, 61, true, 1},
		{"exactly expected", 60, 60 * time.Minute, 60, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, clock, _ := testService(t)
			ctx := context.Background()

			reg, err := svc.Register(ctx, validRequest(intPtr(tt.expected)))
			require.NoError(t, err)

			clock.Set(t0.Add(tt.stay))
			result, err := svc.CheckOut(ctx, reg.Visitor.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.wantActual, result.ActualDurationMinutes)
			assert.Equal(t, tt.wantOver, result.IsOverstayed)
			assert.Equal(t, tt.wantOverMins, result.OverstayMinutes)

			v, err := svc.Get(ctx, reg.Visitor.ID)
			require.NoError(t, err)
			assert.Equal(t, StatusCheckedOut, v.Status)
			require.NotNil(t, v.CheckOutTime)
			assert.True(t, v.CheckOutTime.Equal(t0.Add(tt.stay)))
			require.NotNil(t, v.ActualDurationMinutes)
			assert.Equal(t, tt.wantActual, *v.ActualDurationMinutes)
			assert.Equal(t, tt.wantOver, v.IsOverstayed)
			assert.Equal(t, tt.wantOverMins, v.OverstayMinutes)
		})
	}
}

func TestCheckOutTwiceConflicts(t *testing.T) {
	svc, clock, _ := testService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, validRequest(nil))
	require.NoError(t, err)

	clock.Set(t0.Add(20 * time.Minute))
	_, err = svc.CheckOut(ctx, reg.Visitor.ID)
	require.NoError(t, err)

	before, err := svc.Get(ctx, reg.Visitor.ID)
	require.NoError(t, err)

	clock.Set(t0.Add(90 * time.Minute))
	_, err = svc.CheckOut(ctx, reg.Visitor.ID)
	assert.True(t, errors.Is(err, ErrConflict))

	after, err := svc.Get(ctx, reg.Visitor.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCheckOutNotFound(t *testing.T) {
	svc, _, _ := testService(t)

	_, err := svc.CheckOut(context.Background(), "nobody")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStatusInvariants(t *testing.T) {
	svc, clock, _ := testService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, validRequest(nil))
	require.NoError(t, err)
	_, err = svc.Register(ctx, validRequest(nil))
	require.NoError(t, err)

	clock.Set(t0.Add(30 * time.Minute))
	_, err = svc.CheckOut(ctx, first.Visitor.ID)
	require.NoError(t, err)

	page, err := svc.List(ctx, ListOptions{})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	for _, v := range page.Data {
		out := v.Status == StatusCheckedOut
		assert.Equal(t, out, v.CheckOutTime != nil, "visitor %s", v.ID)
		assert.Equal(t, out, v.ActualDurationMinutes != nil, "visitor %s", v.ID)
	}
}

func TestUpdateExpectedDuration(t *testing.T) {
	svc, clock, _ := testService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, validRequest(intPtr(60)))
	require.NoError(t, err)
	id := reg.Visitor.ID

	clock.Set(t0.Add(70 * time.Minute))
	_, err = svc.Sweep(ctx)
	require.NoError(t, err)

	notes := "meeting ran long"
	v, err := svc.UpdateExpectedDuration(ctx, id, 120, &notes)
	require.NoError(t, err)
	assert.Equal(t, 120, v.ExpectedDurationMinutes)
	assert.Equal(t, "meeting ran long", v.Notes)
	assert.False(t, v.IsOverstayed)
	assert.Equal(t, 0, v.OverstayMinutes)

	v, err = svc.UpdateExpectedDuration(ctx, id, 90, nil)
	require.NoError(t, err)
	assert.Equal(t, "meeting ran long", v.Notes, "nil notes keep the existing notes")

	stored, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 90, stored.ExpectedDurationMinutes)
	assert.Equal(t, 1, countAlerts(stored, AlertOverstay), "alerts are never removed")
}

func TestUpdateExpectedDurationErrors(t *testing.T) {
	svc, clock, _ := testService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, validRequest(nil))
	require.NoError(t, err)

	_, err = svc.UpdateExpectedDuration(ctx, reg.Visitor.ID, 0, nil)
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = svc.UpdateExpectedDuration(ctx, reg.Visitor.ID, -10, nil)
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = svc.UpdateExpectedDuration(ctx, "nobody", 30, nil)
	assert.True(t, errors.Is(err, ErrNotFound))

	clock.Set(t0.Add(10 * time.Minute))
	_, err = svc.CheckOut(ctx, reg.Visitor.ID)
	require.NoError(t, err)

	_, err = svc.UpdateExpectedDuration(ctx, reg.Visitor.ID, 30, nil)
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestAcknowledgeAlert(t *testing.T) {
	svc, clock, _ := testService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, validRequest(intPtr(60)))
	require.NoError(t, err)
	id := reg.Visitor.ID

	clock.Set(t0.Add(70 * time.Minute))
	_, err = svc.Sweep(ctx)
	require.NoError(t, err)

	v, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, v.AlertHistory, 1)
	alertID := v.AlertHistory[0].ID

	clock.Set(t0.Add(75 * time.Minute))
	a, err := svc.AcknowledgeAlert(ctx, id, alertID, "guard-1")
	require.NoError(t, err)
	assert.True(t, a.Acknowledged)
	assert.Equal(t, "guard-1", a.AcknowledgedBy)
	require.NotNil(t, a.AcknowledgedAt)
	assert.True(t, a.AcknowledgedAt.Equal(t0.Add(75*time.Minute)))

	clock.Set(t0.Add(80 * time.Minute))
	a, err = svc.AcknowledgeAlert(ctx, id, alertID, "reception")
	require.NoError(t, err)
	assert.Equal(t, "reception", a.AcknowledgedBy)

	v, err = svc.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, v.AlertHistory, 1, "acknowledging never duplicates entries")
	assert.True(t, v.AlertHistory[0].Acknowledged)
	assert.Equal(t, "reception", v.AlertHistory[0].AcknowledgedBy)
	assert.True(t, v.AlertHistory[0].AcknowledgedAt.Equal(t0.Add(80*time.Minute)))
	assert.Equal(t, 0, v.UnacknowledgedAlerts())
}

func TestAcknowledgeAlertNotFound(t *testing.T) {
	svc, _, _ := testService(t)
	ctx := context.Background()

	reg, err := svc.Register(ctx, validRequest(nil))
	require.NoError(t, err)

	_, err = svc.AcknowledgeAlert(ctx, reg.Visitor.ID, "no-such-alert", "guard")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = svc.AcknowledgeAlert(ctx, "nobody", "no-such-alert", "guard")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListPagination(t *testing.T) {
	svc, clock, _ := testService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		clock.Set(t0.Add(time.Duration(i) * time.Minute))
		_, err := svc.Register(ctx, validRequest(nil))
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, ListOptions{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, Pagination{CurrentPage: 2, Total: 5, TotalPages: 3, PerPage: 2}, page.Pagination)

	page, err = svc.List(ctx, ListOptions{Page: 9})
	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.Equal(t, 10, page.Pagination.PerPage)

	_, err = svc.List(ctx, ListOptions{Statuses: []Status{"Lost"}})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestDurationAnalytics(t *testing.T) {
	svc, clock, _ := testService(t)
	ctx := context.Background()

	stays := []struct {
		expected int
		stay     time.Duration
		purpose  string
	}{
		{60, 45 * time.Minute, "Meeting"},
		{30, 40 * time.Minute, "Admission"},
		{60, 90 * time.Minute, "Admission"},
	}
	for i, s := range stays {
		start := t0.Add(time.Duration(i) * 3 * time.Hour)
		clock.Set(start)
		req := validRequest(intPtr(s.expected))
		req.Purpose = s.purpose
		reg, err := svc.Register(ctx, req)
		require.NoError(t, err)

		clock.Set(start.Add(s.stay))
		_, err = svc.CheckOut(ctx, reg.Visitor.ID)
		require.NoError(t, err)
	}

	got, err := svc.DurationAnalytics(ctx, DateRange{})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Statistics.TotalVisitors)
	assert.Equal(t, 2, got.Statistics.OverstayedCount)
	assert.Equal(t, 66.7, got.Statistics.OverstayRate)
	assert.Equal(t, 58.3, got.Statistics.AverageDurationMinutes)
	require.Len(t, got.OverstayByPurpose, 1)
	assert.Equal(t, PurposeOverstay{Purpose: "Admission", Count: 2, AverageOverstayMinutes: 20}, got.OverstayByPurpose[0])
}

func TestDurationAnalyticsNoMatches(t *testing.T) {
	svc, _, _ := testService(t)

	got, err := svc.DurationAnalytics(context.Background(), DateRange{From: t0, To: t0.Add(24 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Statistics.TotalVisitors)
	assert.Equal(t, 0.0, got.Statistics.OverstayRate)
}

type failingStore struct {
	Store
	err error
}

func (f failingStore) Get(context.Context, string) (*Visitor, error) { return nil, f.err }

func (f failingStore) ListCheckedIn(context.Context) ([]*Visitor, error) { return nil, f.err }

func TestStoreErrorsPropagate(t *testing.T) {
	cause := errors.New("disk I/O error")
	svc := NewService(failingStore{err: cause})
	ctx := context.Background()

	_, err := svc.CheckOut(ctx, "x")
	var serr *StoreError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "get", serr.Op)
	assert.True(t, errors.Is(err, cause))

	_, err = svc.Sweep(ctx)
	require.True(t, errors.As(err, &serr))
	assert.True(t, errors.Is(err, cause))
}
