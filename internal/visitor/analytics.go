package visitor

import (
	"math"
	"sort"
	"strconv"
)

// histogramBounds are the lower edges of the duration buckets in minutes.
// The last bucket is open-ended.
var histogramBounds = []int{0, 30, 60, 120, 240, 480, 1440}

// DurationStatistics summarises completed visits.
type DurationStatistics struct {
	TotalVisitors          int     `json:"total_visitors"`
	AverageDurationMinutes float64 `json:"average_duration_minutes"`
	MinDurationMinutes     int     `json:"min_duration_minutes"`
	MaxDurationMinutes     int     `json:"max_duration_minutes"`
	OverstayedCount        int     `json:"overstayed_count"`
	OverstayRate           float64 `json:"overstay_rate"` // percent, one decimal
}

// HistogramBucket counts visits whose duration is in [MinMinutes, MaxMinutes).
// MaxMinutes is nil for the overflow bucket.
type HistogramBucket struct {
	Label      string `json:"label"`
	MinMinutes int    `json:"min_minutes"`
	MaxMinutes *int   `json:"max_minutes,omitempty"`
	Count      int    `json:"count"`
}

// PurposeOverstay counts overstays for one visit purpose.
type PurposeOverstay struct {
	Purpose                string  `json:"purpose"`
	Count                  int     `json:"count"`
	AverageOverstayMinutes float64 `json:"average_overstay_minutes"`
}

// DurationAnalytics is the result of the duration report.
type DurationAnalytics struct {
	Statistics        DurationStatistics `json:"statistics"`
	Histogram         []HistogramBucket  `json:"histogram"`
	OverstayByPurpose []PurposeOverstay  `json:"overstay_by_purpose"`
}

// Aggregate computes duration analytics over visits. Visits without an
// actual duration (still on site) are ignored. An empty input yields zeroed
// statistics and a zero overstay rate.
func Aggregate(visitors []*Visitor) DurationAnalytics {
	result := DurationAnalytics{
		Histogram:         newHistogram(),
		OverstayByPurpose: []PurposeOverstay{},
	}

	stats := &result.Statistics
	sum := 0
	overstayTotals := make(map[string]int)
	overstayCounts := make(map[string]int)

	for _, v := range visitors {
		if v.ActualDurationMinutes == nil {
			continue
		}
		d := *v.ActualDurationMinutes

		if stats.TotalVisitors == 0 || d < stats.MinDurationMinutes {
			stats.MinDurationMinutes = d
		}
		if stats.TotalVisitors == 0 || d > stats.MaxDurationMinutes {
			stats.MaxDurationMinutes = d
		}
		stats.TotalVisitors++
		sum += d

		result.Histogram[bucketIndex(d)].Count++

		if v.IsOverstayed {
			stats.OverstayedCount++
			purpose := v.Purpose
			if purpose == "" {
				purpose = "Unspecified"
			}
			overstayCounts[purpose]++
			overstayTotals[purpose] += v.OverstayMinutes
		}
	}

	if stats.TotalVisitors > 0 {
		stats.AverageDurationMinutes = round1(float64(sum) / float64(stats.TotalVisitors))
		stats.OverstayRate = round1(float64(stats.OverstayedCount) / float64(stats.TotalVisitors) * 100)
	}

	for purpose, count := range overstayCounts {
		result.OverstayByPurpose = append(result.OverstayByPurpose, PurposeOverstay{
			Purpose:                purpose,
			Count:                  count,
			AverageOverstayMinutes: round1(float64(overstayTotals[purpose]) / float64(count)),
		})
	}
	sort.Slice(result.OverstayByPurpose, func(i, j int) bool {
		a, b := result.OverstayByPurpose[i], result.OverstayByPurpose[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Purpose < b.Purpose
	})

	return result
}

func newHistogram() []HistogramBucket {
	buckets := make([]HistogramBucket, len(histogramBounds))
	for i, lo := range histogramBounds {
		buckets[i] = HistogramBucket{MinMinutes: lo}
		if i+1 < len(histogramBounds) {
			hi := histogramBounds[i+1]
			buckets[i].MaxMinutes = &hi
			buckets[i].Label = strconv.Itoa(lo) + "-" + strconv.Itoa(hi)
		} else {
			buckets[i].Label = strconv.Itoa(lo) + "+"
		}
	}
	return buckets
}

// bucketIndex places a duration in its histogram bucket. Negative
// durations land in the first bucket.
func bucketIndex(minutes int) int {
	idx := 0
	for i, lo := range histogramBounds {
		if minutes >= lo {
			idx = i
		}
	}
	return idx
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
