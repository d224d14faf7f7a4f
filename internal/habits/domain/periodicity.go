package domain

import (
	"fmt"
	"strings"
	"time"
)

// Periodicity is the cadence a habit must be completed at.
type Periodicity string

const (
	PeriodicityDaily  Periodicity = "daily"
	PeriodicityWeekly Periodicity = "weekly"
)

// ParsePeriodicity accepts "daily" or "weekly" in any letter case.
func ParsePeriodicity(s string) (Periodicity, error) {
	p := Periodicity(strings.ToLower(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriodicity, s)
	}
	return p, nil
}

// IsValid checks if the periodicity is one of the supported values.
func (p Periodicity) IsValid() bool {
	switch p {
	case PeriodicityDaily, PeriodicityWeekly:
		return true
	default:
		return false
	}
}

// IntervalDays is both the expected gap between streak completions and the
// tolerance before a habit counts as broken.
func (p Periodicity) IntervalDays() (int, error) {
	switch p {
	case PeriodicityDaily:
		return 1, nil
	case PeriodicityWeekly:
		return 7, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidPeriodicity, string(p))
	}
}

// Label returns the capitalised name used in user-facing messages.
func (p Periodicity) Label() string {
	switch p {
	case PeriodicityDaily:
		return "Daily"
	case PeriodicityWeekly:
		return "Weekly"
	default:
		return string(p)
	}
}

// Unit returns the plural unit streaks and lapses are reported in.
func (p Periodicity) Unit() string {
	switch p {
	case PeriodicityWeekly:
		return "weeks"
	default:
		return "days"
	}
}

// CalendarDate truncates t to midnight of its own calendar date, expressed in
// UTC so that day arithmetic is free of DST shifts.
func CalendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of calendar days from earlier to later.
func DaysBetween(later, earlier time.Time) int {
	return int(CalendarDate(later).Sub(CalendarDate(earlier)).Hours() / 24)
}
