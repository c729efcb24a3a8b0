package visitor

import (
	"fmt"
	"time"
)

// Cooldown windows between repeated alerts of the same type for one visitor.
const (
	OverstayCooldown = 30 * time.Minute
	WarningCooldown  = 15 * time.Minute
)

// Cooldown returns the suppression window for an alert type.
func Cooldown(t AlertType) time.Duration {
	switch t {
	case AlertOverstay:
		return OverstayCooldown
	case AlertDurationWarning:
		return WarningCooldown
	default:
		return 0
	}
}

// Suppressed reports whether history already holds an alert of type t
// triggered less than the type's cooldown before now.
func Suppressed(history []Alert, t AlertType, now time.Time) bool {
	window := Cooldown(t)
	for _, a := range history {
		if a.Type != t {
			continue
		}
		if now.Sub(a.TriggeredAt) < window {
			return true
		}
	}
	return false
}

// OverstayMessage is the text of an overstay alert.
func OverstayMessage(overstayMinutes int) string {
	return fmt.Sprintf("Visitor has overstayed by %d minutes", overstayMinutes)
}

// WarningMessage is the text of a duration warning.
func WarningMessage(currentMinutes, expectedMinutes int) string {
	return fmt.Sprintf("Visitor approaching expected duration (%d/%d minutes)", currentMinutes, expectedMinutes)
}

// recordAlert appends the alert implied by an assessment unless the cooldown
// suppresses it. It returns the appended alert, or nil when nothing was
// added. Normal assessments never produce an alert.
func (v *Visitor) recordAlert(a Assessment, now time.Time, newID func() string) *Alert {
	var alert Alert
	switch a.Classification {
	case Overstayed:
		alert = Alert{Type: AlertOverstay, Message: OverstayMessage(a.OverstayMinutes)}
	case ApproachingLimit:
		alert = Alert{Type: AlertDurationWarning, Message: WarningMessage(a.CurrentDurationMinutes, a.ExpectedDurationMinutes)}
	default:
		return nil
	}

	if Suppressed(v.AlertHistory, alert.Type, now) {
		return nil
	}

	alert.ID = newID()
	alert.TriggeredAt = now
	v.AlertHistory = append(v.AlertHistory, alert)
	if alert.Type == AlertOverstay {
		v.AlertsTriggered = true
	}

	return &v.AlertHistory[len(v.AlertHistory)-1]
}
