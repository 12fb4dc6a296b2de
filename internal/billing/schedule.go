package billing

import (
	"fmt"
	"time"
)

// Interval is how often a recurring profile issues an invoice.
type Interval string

const (
	IntervalWeekly    Interval = "weekly"
	IntervalMonthly   Interval = "monthly"
	IntervalQuarterly Interval = "quarterly"
	IntervalYearly    Interval = "yearly"
)

// Valid reports whether i is a supported interval.
func (i Interval) Valid() bool {
	switch i {
	case IntervalWeekly, IntervalMonthly, IntervalQuarterly, IntervalYearly:
		return true
	}
	return false
}

func (i Interval) months() int {
	switch i {
	case IntervalMonthly:
		return 1
	case IntervalQuarterly:
		return 3
	case IntervalYearly:
		return 12
	}
	return 0
}

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NextRunDate steps current forward by one interval. Month based intervals land on
// anchorDay, clamped to the length of the target month, so a profile anchored on the
// 31st runs on Jan 31, Feb 28, Mar 31. An anchorDay of 0 uses current's day.
func NextRunDate(current time.Time, interval Interval, anchorDay int) (time.Time, error) {
	current = Day(current)
	if interval == IntervalWeekly {
		return current.AddDate(0, 0, 7), nil
	}
	months := interval.months()
	if months == 0 {
		return time.Time{}, fmt.Errorf("unknown interval %q", interval)
	}
	if anchorDay < 0 || anchorDay > 31 {
		return time.Time{}, fmt.Errorf("anchor day %d out of range", anchorDay)
	}
	if anchorDay == 0 {
		anchorDay = current.Day()
	}

	// Day 1 avoids time.Date normalising e.g. Feb 31 into March.
	first := time.Date(current.Year(), current.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	day := anchorDay
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC), nil
}

// IsDue reports whether a profile scheduled for next should run on today.
func IsDue(next, today time.Time) bool {
	return !Day(next).After(Day(today))
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
