package visitor

import (
	"math"
	"time"
)

// Classification is the duration status of a visit still on site.
type Classification string

const (
	Normal           Classification = "normal"
	ApproachingLimit Classification = "approaching_limit"
	Overstayed       Classification = "overstayed"
)

// WarningRatio is the fraction of the expected duration after which a
// visit is approaching its limit.
const WarningRatio = 0.8

// Assessment is the result of evaluating a visit against its expected duration.
type Assessment struct {
	Classification          Classification `json:"classification"`
	CurrentDurationMinutes  int            `json:"current_duration_minutes"`
	ExpectedDurationMinutes int            `json:"expected_duration_minutes"`
	OverstayMinutes         int            `json:"overstay_minutes"`
	RemainingMinutes        int            `json:"remaining_minutes"`
}

// Evaluate classifies a visit that started at checkIn with the given
// expected duration, as of now. Elapsed time is floored to whole minutes.
//
// An expected duration of zero has no warning phase: any positive elapsed
// minute is an overstay.
func Evaluate(checkIn time.Time, expectedMinutes int, now time.Time) Assessment {
	current := int(math.Floor(now.Sub(checkIn).Minutes()))
	a := Assessment{
		Classification:          Normal,
		CurrentDurationMinutes:  current,
		ExpectedDurationMinutes: expectedMinutes,
	}

	threshold := float64(expectedMinutes) * WarningRatio

	switch {
	case current > expectedMinutes:
		a.Classification = Overstayed
		a.OverstayMinutes = current - expectedMinutes
	case float64(current) >= threshold && current < expectedMinutes:
		a.Classification = ApproachingLimit
		a.RemainingMinutes = expectedMinutes - current
	}

	return a
}

// elapsedRounded returns the whole minutes between two instants, rounded
// to the nearest minute. Check-out uses this; the sweep floors instead.
func elapsedRounded(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Minutes()))
}
