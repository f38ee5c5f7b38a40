package model

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

const MaxTitleLength = 255

var ErrInvalidWeekday = errors.New("weekday must be between 0 (Sunday) and 6 (Saturday)")

// WeekdaySet is an ordered set of weekdays, 0=Sunday..6=Saturday.
type WeekdaySet []int

// NewWeekdaySet validates, de-duplicates and sorts days.
func NewWeekdaySet(days []int) (WeekdaySet, error) {
	seen := make(map[int]bool, len(days))
	set := make(WeekdaySet, 0, len(days))
	for _, d := range days {
		if d < int(time.Sunday) || d > int(time.Saturday) {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidWeekday, d)
		}
		if seen[d] {
			continue
		}
		seen[d] = true
		set = append(set, d)
	}
	sort.Ints(set)
	return set, nil
}

func (s WeekdaySet) Contains(wd time.Weekday) bool {
	for _, d := range s {
		if d == int(wd) {
			return true
		}
	}
	return false
}

type Habit struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Title     string     `json:"title"`
	WeekDays  WeekdaySet `json:"week_days"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CreatedOn is the calendar date the habit was created, as observed in loc.
func (h Habit) CreatedOn(loc *time.Location) Date {
	return DateOf(h.CreatedAt, loc)
}

// HabitIDs returns the ids of habits in order.
func HabitIDs(habits []Habit) []string {
	ids := make([]string, 0, len(habits))
	for _, h := range habits {
		ids = append(ids, h.ID)
	}
	return ids
}
