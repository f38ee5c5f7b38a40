package model

// Day is a calendar date row. Its date never changes once created.
type Day struct {
	ID   string `json:"id"`
	Date Date   `json:"date"`
}

// CompletionRecord marks a habit as completed on a day. There is no
// "incomplete" record: absence means not completed.
type CompletionRecord struct {
	ID      string `json:"id"`
	DayID   string `json:"day_id"`
	HabitID string `json:"habit_id"`
	Date    Date   `json:"date"`
}

// DayView is what a user sees for a single date.
type DayView struct {
	Date              Date     `json:"date"`
	PossibleHabits    []Habit  `json:"possible_habits"`
	CompletedHabitIDs []string `json:"completed_habits"`
}
