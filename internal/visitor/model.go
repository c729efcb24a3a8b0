// Package visitor provides the front-office visitor domain: registration,
// check-out, overstay monitoring with de-duplicated alerts, and duration
// analytics.
package visitor

import "time"

// Status is the lifecycle state of a visit.
type Status string

const (
	StatusCheckedIn  Status = "Checked In"
	StatusCheckedOut Status = "Checked Out"
)

// ValidStatuses is the set of allowed visit statuses.
var ValidStatuses = []Status{StatusCheckedIn, StatusCheckedOut}

// IsValid checks if a status is recognized.
func (s Status) IsValid() bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStatus accepts the stored form ("Checked In") as well as the
// short forms used on the command line ("checked_in", "in").
func ParseStatus(s string) (Status, bool) {
	switch s {
	case string(StatusCheckedIn), "checked_in", "checkedin", "in":
		return StatusCheckedIn, true
	case string(StatusCheckedOut), "checked_out", "checkedout", "out":
		return StatusCheckedOut, true
	}
	return "", false
}

// AlertType identifies the kind of notice raised for a visit.
type AlertType string

const (
	AlertDurationWarning AlertType = "Duration Warning"
	AlertOverstay        AlertType = "Overstay Alert"
	AlertExtendedStay    AlertType = "Extended Stay"
)

// Alert is one entry in a visitor's alert history. Entries are never
// removed; acknowledging one only sets the Acknowledged* fields.
type Alert struct {
	ID             string     `json:"id"`
	Type           AlertType  `json:"alert_type"`
	Message        string     `json:"message"`
	TriggeredAt    time.Time  `json:"triggered_at"`
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedBy string     `json:"acknowledged_by,omitempty"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
}

// Visitor is one physical visit to the premises.
type Visitor struct {
	ID          string `json:"id"`
	FullName    string `json:"full_name"`
	IDNumber    string `json:"id_number"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email,omitempty"`
	Company     string `json:"company,omitempty"`
	Purpose     string `json:"purpose"`
	HostName    string `json:"host_name"`
	Location    string `json:"location,omitempty"`
	VisitDate   string `json:"visit_date"` // YYYY-MM-DD
	PassID      string `json:"pass_id"`

	Status       Status     `json:"status"`
	CheckInTime  time.Time  `json:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`

	ExpectedDurationMinutes int  `json:"expected_duration_minutes"`
	ActualDurationMinutes   *int `json:"actual_duration_minutes,omitempty"`
	IsOverstayed            bool `json:"is_overstayed"`
	OverstayMinutes         int  `json:"overstay_minutes"`
	AlertsTriggered         bool `json:"alerts_triggered"`

	AlertHistory     []Alert   `json:"alert_history"`
	LastActivityTime time.Time `json:"last_activity_time"`
	Notes            string    `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultExpectedDuration is applied when registration omits an expected duration.
const DefaultExpectedDuration = 60

// FindAlert returns a pointer into the alert history, or nil.
func (v *Visitor) FindAlert(alertID string) *Alert {
	for i := range v.AlertHistory {
		if v.AlertHistory[i].ID == alertID {
			return &v.AlertHistory[i]
		}
	}
	return nil
}

// UnacknowledgedAlerts counts alerts nobody has acknowledged yet.
func (v *Visitor) UnacknowledgedAlerts() int {
	n := 0
	for _, a := range v.AlertHistory {
		if !a.Acknowledged {
			n++
		}
	}
	return n
}
