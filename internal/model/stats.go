package model

type WeekdayStat struct {
	Weekday    int      `json:"week_day"`
	Completed  int      `json:"completed"`
	Total      int      `json:"total"`
	Percentage *float64 `json:"percentage"`
}

type Streaks struct {
	Current int `json:"current_streak"`
	Longest int `json:"longest_streak"`
}

// DaySummary reports, for one known day, how many habits were due (Amount)
// and how many of those were completed.
type DaySummary struct {
	DayID     string `json:"id"`
	Date      Date   `json:"date"`
	Completed int    `json:"completed"`
	Amount    int    `json:"amount"`
}
