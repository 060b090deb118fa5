package analytics

import (
	"time"

	"trendpulse/pkg/contracts/domain"
)

// FilterPeriod keeps points whose period falls within [start, end], both ends
// inclusive. No matches is an empty slice, never an error.
func FilterPeriod(points []domain.TrendPoint, start, end time.Time) []domain.TrendPoint {
	var out []domain.TrendPoint
	for _, p := range points {
		if p.Period.Before(start) || p.Period.After(end) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// PeriodRange returns the earliest and latest period present. ok is false
// when there are no points.
func PeriodRange(points []domain.TrendPoint) (start, end time.Time, ok bool) {
	for _, p := range points {
		if !ok {
			start, end, ok = p.Period, p.Period, true
			continue
		}
		if p.Period.Before(start) {
			start = p.Period
		}
		if p.Period.After(end) {
			end = p.Period
		}
	}
	return start, end, ok
}

// LaunchCalendar derives launch timing from the seasonal anchor date. The
// golden window runs from the anchor for WindowDays days; the campaign starts
// LeadDays before the anchor.
type LaunchCalendar struct {
	Anchor     time.Time
	WindowDays int
	LeadDays   int
}

func (c LaunchCalendar) GoldenStart() time.Time {
	return c.Anchor
}

func (c LaunchCalendar) GoldenEnd() time.Time {
	return c.Anchor.AddDate(0, 0, c.WindowDays)
}

func (c LaunchCalendar) CampaignStart() time.Time {
	return c.Anchor.AddDate(0, 0, -c.LeadDays)
}

// GoldenWindowMean averages the valid ratios inside the golden window,
// boundaries inclusive.
func (c LaunchCalendar) GoldenWindowMean(points []domain.TrendPoint) domain.NullFloat {
	return MeanRatio(FilterPeriod(points, c.GoldenStart(), c.GoldenEnd()))
}
