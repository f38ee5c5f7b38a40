// Package schedule resolves which habits are due on a date and which of those
// were completed.
package schedule

import (
	"time"

	"github.com/jaekwang-park/habit-api/internal/model"
)

// IsDue reports whether h is due on d: d falls on one of the habit's weekdays
// and is not before the date the habit was created (in loc).
func IsDue(h model.Habit, d model.Date, loc *time.Location) bool {
	if !h.WeekDays.Contains(d.Weekday()) {
		return false
	}
	return !d.Before(h.CreatedOn(loc))
}

// Due filters habits down to the ones due on d. The result is never nil.
func Due(habits []model.Habit, d model.Date, loc *time.Location) []model.Habit {
	due := make([]model.Habit, 0, len(habits))
	for _, h := range habits {
		if IsDue(h, d, loc) {
			due = append(due, h)
		}
	}
	return due
}

// Tally counts the habits due on d and how many of them appear in completed.
func Tally(habits []model.Habit, d model.Date, loc *time.Location, completed map[string]bool) (done, total int) {
	for _, h := range habits {
		if !IsDue(h, d, loc) {
			continue
		}
		total++
		if completed[h.ID] {
			done++
		}
	}
	return done, total
}

// CompletedByDate indexes completion records as date -> habit id set.
func CompletedByDate(records []model.CompletionRecord) map[model.Date]map[string]bool {
	idx := make(map[model.Date]map[string]bool)
	for _, r := range records {
		set, ok := idx[r.Date]
		if !ok {
			set = make(map[string]bool)
			idx[r.Date] = set
		}
		set[r.HabitID] = true
	}
	return idx
}

// EarliestStart returns the earliest creation date among habits, or the zero
// Date when there are none.
func EarliestStart(habits []model.Habit, loc *time.Location) model.Date {
	var earliest model.Date
	for _, h := range habits {
		c := h.CreatedOn(loc)
		if earliest.IsZero() || c.Before(earliest) {
			earliest = c
		}
	}
	return earliest
}
