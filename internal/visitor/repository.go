package visitor

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Repository is the SQLite-backed Store.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a visitor repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = `id, full_name, id_number, phone_number, email, company, purpose, host_name, location,
	visit_date, pass_id, status, check_in_time, check_out_time, expected_duration, actual_duration,
	is_overstayed, overstay_minutes, alerts_triggered, last_activity, notes, created_at, updated_at`

const insertSQL = `INSERT INTO visitors
	(id, full_name, id_number, phone_number, email, company, purpose, host_name, location,
	 visit_date, pass_id, status, check_in_time, check_out_time, expected_duration, actual_duration,
	 is_overstayed, overstay_minutes, alerts_triggered, last_activity, notes, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// updateSQL only touches visitors still on site. Checked Out is terminal.
const updateSQL = `UPDATE visitors SET
	full_name = ?, id_number = ?, phone_number = ?, email = ?, company = ?, purpose = ?, host_name = ?,
	location = ?, status = ?, check_out_time = ?, expected_duration = ?, actual_duration = ?,
	is_overstayed = ?, overstay_minutes = ?, alerts_triggered = ?, last_activity = ?, notes = ?, updated_at = ?
	WHERE id = ? AND status = 'Checked In'`

const sweepSQL = `UPDATE visitors SET
	is_overstayed = ?, overstay_minutes = ?, last_activity = ?,
	alerts_triggered = (alerts_triggered OR ?), updated_at = ?
	WHERE id = ? AND status = 'Checked In'`

// insertAlertSQL appends an alert after the visitor's existing ones. Alerts
// already stored are left alone.
const insertAlertSQL = `INSERT INTO visitor_alerts
	(id, visitor_id, seq, alert_type, message, triggered_at, acknowledged, acknowledged_by, acknowledged_at)
	VALUES (?, ?, (SELECT COALESCE(MAX(seq), -1) + 1 FROM visitor_alerts WHERE visitor_id = ?), ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO NOTHING`

const ackAlertSQL = `UPDATE visitor_alerts SET
	acknowledged = 1, acknowledged_by = ?, acknowledged_at = ?
	WHERE id = ? AND visitor_id = ?`

// Create inserts a visitor and any alerts it already carries.
func (r *Repository) Create(ctx context.Context, v *Visitor) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, insertSQL,
			v.ID, v.FullName, v.IDNumber, v.PhoneNumber, v.Email, v.Company, v.Purpose, v.HostName, v.Location,
			v.VisitDate, v.PassID, string(v.Status), v.CheckInTime.UTC(), utcPtr(v.CheckOutTime),
			v.ExpectedDurationMinutes, v.ActualDurationMinutes,
			v.IsOverstayed, v.OverstayMinutes, v.AlertsTriggered, v.LastActivityTime.UTC(), v.Notes,
			v.CreatedAt.UTC(), v.UpdatedAt.UTC(),
		)
		if err != nil {
			return fmt.Errorf("inserting visitor: %w", err)
		}
		return saveAlerts(ctx, tx, v)
	})
}

// Get returns a visitor with its alert history.
func (r *Repository) Get(ctx context.Context, id string) (*Visitor, error) {
	row := r.db.QueryRowContext(ctx, fmt.Sprintf("SELECT %s FROM visitors WHERE id = ?", selectColumns), id)

	v, err := scanVisitor(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("visitor %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying visitor %s: %w", id, err)
	}

	if err := r.attachAlerts(ctx, []*Visitor{v}); err != nil {
		return nil, err
	}
	return v, nil
}

// List returns one page of visitors matching opts, and the total number of
// matches across all pages.
func (r *Repository) List(ctx context.Context, opts ListOptions) ([]*Visitor, int, error) {
	if err := opts.normalize(); err != nil {
		return nil, 0, err
	}

	var conditions []string
	var args []interface{}

	if s := strings.TrimSpace(opts.Search); s != "" {
		pattern := "%" + escapeLike(s) + "%"
		var ors []string
		for _, col := range []string{"full_name", "id_number", "phone_number", "email", "company", "purpose", "host_name"} {
			ors = append(ors, col+` LIKE ? ESCAPE '\'`)
			args = append(args, pattern)
		}
		conditions = append(conditions, "("+strings.Join(ors, " OR ")+")")
	}

	if len(opts.Statuses) > 0 {
		placeholders := make([]string, len(opts.Statuses))
		for i, s := range opts.Statuses {
			placeholders[i] = "?"
			args = append(args, string(s))
		}
		conditions = append(conditions, "status IN ("+strings.Join(placeholders, ", ")+")")
	}

	if opts.Company != "" {
		conditions = append(conditions, "company = ?")
		args = append(args, opts.Company)
	}
	if opts.Purpose != "" {
		conditions = append(conditions, "purpose = ?")
		args = append(args, opts.Purpose)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM visitors"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting visitors: %w", err)
	}

	dir := "DESC"
	if opts.SortAsc {
		dir = "ASC"
	}
	query := fmt.Sprintf("SELECT %s FROM visitors%s ORDER BY %s %s, id %s LIMIT ? OFFSET ?",
		selectColumns, where, opts.SortColumn(), dir, dir)
	pageArgs := append(append([]interface{}{}, args...), opts.Limit, opts.Offset())

	visitors, err := r.query(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, err
	}
	return visitors, total, nil
}

// ListCheckedIn returns every visitor currently on site, oldest check-in first.
func (r *Repository) ListCheckedIn(ctx context.Context) ([]*Visitor, error) {
	query := fmt.Sprintf("SELECT %s FROM visitors WHERE status = ? ORDER BY check_in_time ASC", selectColumns)
	return r.query(ctx, query, string(StatusCheckedIn))
}

// ListCheckedOut returns checked-out visitors whose check-in falls in r.
func (r *Repository) ListCheckedOut(ctx context.Context, dr DateRange) ([]*Visitor, error) {
	conditions := []string{"status = ?"}
	args := []interface{}{string(StatusCheckedOut)}
	if !dr.From.IsZero() {
		conditions = append(conditions, "check_in_time >= ?")
		args = append(args, dr.From.UTC())
	}
	if !dr.To.IsZero() {
		conditions = append(conditions, "check_in_time <= ?")
		args = append(args, dr.To.UTC())
	}

	query := fmt.Sprintf("SELECT %s FROM visitors WHERE %s ORDER BY check_in_time ASC",
		selectColumns, strings.Join(conditions, " AND "))
	return r.query(ctx, query, args...)
}

// ListByVisitDate returns visitors whose visit date falls in r, newest first.
func (r *Repository) ListByVisitDate(ctx context.Context, dr DateRange) ([]*Visitor, error) {
	where, args := visitDateWhere(dr)
	query := fmt.Sprintf("SELECT %s FROM visitors%s ORDER BY visit_date DESC, check_in_time DESC", selectColumns, where)
	return r.query(ctx, query, args...)
}

// DailyCounts returns the number of visitors per visit date in r, oldest first.
func (r *Repository) DailyCounts(ctx context.Context, dr DateRange) (counts []DailyCount, err error) {
	where, args := visitDateWhere(dr)
	rows, err := r.db.QueryContext(ctx,
		"SELECT visit_date, COUNT(*) FROM visitors"+where+" GROUP BY visit_date ORDER BY visit_date ASC", args...)
	if err != nil {
		return nil, fmt.Errorf("counting daily visitors: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var c DailyCount
		if err := rows.Scan(&c.Date, &c.Visitors); err != nil {
			return nil, fmt.Errorf("scanning daily count: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating daily counts: %w", err)
	}
	return counts, nil
}

// Update writes the fields of a visitor on site and appends any alerts not
// yet stored, in one transaction. It fails with ErrConflict once the visitor
// has checked out.
func (r *Repository) Update(ctx context.Context, v *Visitor) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, updateSQL,
			v.FullName, v.IDNumber, v.PhoneNumber, v.Email, v.Company, v.Purpose, v.HostName,
			v.Location, string(v.Status), utcPtr(v.CheckOutTime), v.ExpectedDurationMinutes, v.ActualDurationMinutes,
			v.IsOverstayed, v.OverstayMinutes, v.AlertsTriggered, v.LastActivityTime.UTC(), v.Notes, v.UpdatedAt.UTC(),
			v.ID,
		)
		if err != nil {
			return fmt.Errorf("updating visitor: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if rows == 0 {
			return missingOrCheckedOut(ctx, tx, v.ID)
		}

		return saveAlerts(ctx, tx, v)
	})
}

// RecordSweep stores the outcome of a sweep for one visitor: the overstay
// flag, overstay minutes, last activity and, when alert is non-nil, the newly
// raised alert. Nothing else on the record is written. It reports false
// without writing when the visitor is no longer checked in.
func (r *Repository) RecordSweep(ctx context.Context, v *Visitor, alert *Alert) (bool, error) {
	applied := false
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, sweepSQL,
			v.IsOverstayed, v.OverstayMinutes, v.LastActivityTime.UTC(), v.AlertsTriggered, v.UpdatedAt.UTC(),
			v.ID,
		)
		if err != nil {
			return fmt.Errorf("recording sweep: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if rows == 0 {
			return nil
		}
		applied = true

		if alert == nil {
			return nil
		}
		return insertAlert(ctx, tx, v.ID, *alert)
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// AcknowledgeAlert marks one stored alert as acknowledged.
func (r *Repository) AcknowledgeAlert(ctx context.Context, visitorID, alertID, by string, at time.Time) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, ackAlertSQL, by, at.UTC(), alertID, visitorID)
		if err != nil {
			return fmt.Errorf("acknowledging alert: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("checking rows affected: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("alert %s on visitor %s: %w", alertID, visitorID, ErrNotFound)
		}

		if _, err := tx.ExecContext(ctx, "UPDATE visitors SET updated_at = ? WHERE id = ?", at.UTC(), visitorID); err != nil {
			return fmt.Errorf("touching visitor: %w", err)
		}
		return nil
	})
}

func missingOrCheckedOut(ctx context.Context, tx *sql.Tx, id string) error {
	var status string
	err := tx.QueryRowContext(ctx, "SELECT status FROM visitors WHERE id = ?", id).Scan(&status)
	if err == sql.ErrNoRows {
		return fmt.Errorf("visitor %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("checking visitor status: %w", err)
	}
	return fmt.Errorf("visitor %s is %s: %w", id, status, ErrConflict)
}

func (r *Repository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (also failed to roll back: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func saveAlerts(ctx context.Context, tx *sql.Tx, v *Visitor) error {
	for _, a := range v.AlertHistory {
		if err := insertAlert(ctx, tx, v.ID, a); err != nil {
			return err
		}
	}
	return nil
}

func insertAlert(ctx context.Context, tx *sql.Tx, visitorID string, a Alert) error {
	_, err := tx.ExecContext(ctx, insertAlertSQL,
		a.ID, visitorID, visitorID, string(a.Type), a.Message, a.TriggeredAt.UTC(),
		a.Acknowledged, a.AcknowledgedBy, utcPtr(a.AcknowledgedAt),
	)
	if err != nil {
		return fmt.Errorf("saving alert %s: %w", a.ID, err)
	}
	return nil
}

func (r *Repository) query(ctx context.Context, query string, args ...interface{}) (visitors []*Visitor, err error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing visitors: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		v, err := scanVisitor(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning visitor: %w", err)
		}
		visitors = append(visitors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating visitors: %w", err)
	}

	if err := r.attachAlerts(ctx, visitors); err != nil {
		return nil, err
	}
	return visitors, nil
}

// attachAlerts loads the alert history of every visitor in one query.
func (r *Repository) attachAlerts(ctx context.Context, visitors []*Visitor) (err error) {
	if len(visitors) == 0 {
		return nil
	}

	byID := make(map[string]*Visitor, len(visitors))
	placeholders := make([]string, 0, len(visitors))
	args := make([]interface{}, 0, len(visitors))
	for _, v := range visitors {
		v.AlertHistory = []Alert{}
		byID[v.ID] = v
		placeholders = append(placeholders, "?")
		args = append(args, v.ID)
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT visitor_id, id, alert_type, message, triggered_at, acknowledged, acknowledged_by, acknowledged_at
		 FROM visitor_alerts WHERE visitor_id IN (`+strings.Join(placeholders, ", ")+`)
		 ORDER BY visitor_id, seq`, args...)
	if err != nil {
		return fmt.Errorf("loading alerts: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	for rows.Next() {
		var visitorID string
		var a Alert
		var ackAt sql.NullTime
		if err := rows.Scan(&visitorID, &a.ID, &a.Type, &a.Message, &a.TriggeredAt, &a.Acknowledged, &a.AcknowledgedBy, &ackAt); err != nil {
			return fmt.Errorf("scanning alert: %w", err)
		}
		if ackAt.Valid {
			t := ackAt.Time
			a.AcknowledgedAt = &t
		}
		if v, ok := byID[visitorID]; ok {
			v.AlertHistory = append(v.AlertHistory, a)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating alerts: %w", err)
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanVisitor(s scanner) (*Visitor, error) {
	var v Visitor
	var checkOut sql.NullTime
	var actual sql.NullInt64

	err := s.Scan(
		&v.ID, &v.FullName, &v.IDNumber, &v.PhoneNumber, &v.Email, &v.Company, &v.Purpose, &v.HostName, &v.Location,
		&v.VisitDate, &v.PassID, &v.Status, &v.CheckInTime, &checkOut, &v.ExpectedDurationMinutes, &actual,
		&v.IsOverstayed, &v.OverstayMinutes, &v.AlertsTriggered, &v.LastActivityTime, &v.Notes,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if checkOut.Valid {
		t := checkOut.Time
		v.CheckOutTime = &t
	}
	if actual.Valid {
		n := int(actual.Int64)
		v.ActualDurationMinutes = &n
	}
	return &v, nil
}

func visitDateWhere(dr DateRange) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	if !dr.From.IsZero() {
		conditions = append(conditions, "visit_date >= ?")
		args = append(args, dr.From.Format(dateLayout))
	}
	if !dr.To.IsZero() {
		conditions = append(conditions, "visit_date <= ?")
		args = append(args, dr.To.Format(dateLayout))
	}
	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// utcPtr converts an optional time to a driver value, nil staying NULL.
func utcPtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

const dateLayout = "2006-01-02"
