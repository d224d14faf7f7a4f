package domain

import (
	"fmt"
	"time"
)

// Lapse describes whether a habit is overdue relative to a point in time.
type Lapse struct {
	Periodicity    Periodicity
	Broken         bool
	NeverCompleted bool
	// ElapsedDays is the number of calendar days since the last completion.
	ElapsedDays int
	// Amount is the overdue duration in Unit: days for daily habits, whole
	// weeks (rounded down) for weekly habits.
	Amount int
	Unit   string
}

// DetectLapse decides whether a habit last completed on last is broken at now.
// A nil last means the habit was never completed, which always counts as
// broken. Otherwise the habit is broken once more than one interval has
// passed.
func DetectLapse(last *time.Time, periodicity Periodicity, now time.Time) (Lapse, error) {
	tolerance, err := periodicity.IntervalDays()
	if err != nil {
		return Lapse{}, err
	}

	lapse := Lapse{Periodicity: periodicity, Unit: periodicity.Unit()}
	if last == nil {
		lapse.Broken = true
		lapse.NeverCompleted = true
		return lapse, nil
	}

	lapse.ElapsedDays = DaysBetween(now, *last)
	if lapse.ElapsedDays <= tolerance {
		return lapse, nil
	}

	lapse.Broken = true
	lapse.Amount = lapse.ElapsedDays / tolerance
	return lapse, nil
}

// Message renders the lapse for the named habit. It returns an empty string
// when the habit is not broken.
func (l Lapse) Message(habitName string) string {
	switch {
	case !l.Broken:
		return ""
	case l.NeverCompleted:
		return fmt.Sprintf("Habit '%s' (%s) has never been completed and is broken.", habitName, l.Periodicity.Label())
	default:
		return fmt.Sprintf("Habit '%s' (%s) is broken; last completed %d %s ago.", habitName, l.Periodicity.Label(), l.Amount, l.Unit)
	}
}
