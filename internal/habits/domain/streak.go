package domain

import "time"

// HabitHistory pairs a habit with its completion dates, most recent first.
type HabitHistory struct {
	Name        string
	Periodicity Periodicity
	Dates       []time.Time
}

// StreakEntry reports a habit's longest streak.
type StreakEntry struct {
	HabitName string `json:"habit_name"`
	Streak    int    `json:"streak"`
	Unit      string `json:"unit"`
}

// LongestStreak returns the longest run of completions in dates, which must be
// ordered most recent first. A run only continues when consecutive dates are
// exactly one interval apart; any other gap, including two completions on the
// same day, starts a new run.
func LongestStreak(dates []time.Time, periodicity Periodicity) (int, error) {
	interval, err := periodicity.IntervalDays()
	if err != nil {
		return 0, err
	}
	if len(dates) == 0 {
		return 0, nil
	}

	longest, current := 1, 1
	for i := 1; i < len(dates); i++ {
		if DaysBetween(dates[i-1], dates[i]) == interval {
			current++
		} else {
			current = 1
		}
		if current > longest {
			longest = current
		}
	}

	return longest, nil
}

// MaxStreaks returns every habit whose longest streak equals the highest
// streak among histories, in input order. Habits without completions are
// skipped.
func MaxStreaks(histories []HabitHistory) ([]StreakEntry, error) {
	var entries []StreakEntry
	best := 0

	for _, history := range histories {
		streak, err := LongestStreak(history.Dates, history.Periodicity)
		if err != nil {
			return nil, err
		}
		if streak == 0 || streak < best {
			continue
		}
		if streak > best {
			best = streak
			entries = entries[:0]
		}
		entries = append(entries, StreakEntry{
			HabitName: history.Name,
			Streak:    streak,
			Unit:      history.Periodicity.Unit(),
		})
	}

	return entries, nil
}
