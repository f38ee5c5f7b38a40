package cache

import "github.com/jaekwang-park/habit-api/internal/model"

const (
	entityHabit = "habit"
	entityDay   = "day"
	entityUser  = "user"
	entityStats = "stats"
)

func habitIDKey(userID, habitID string) string {
	return "habit:id:" + habitID + ":" + userID
}

func habitTitleKey(userID, title string) string {
	return "habit:title:" + userID + ":" + title
}

func habitTitlePattern(userID string) string {
	return "habit:title:" + escapePattern(userID) + ":*"
}

func habitListKey(userID string) string {
	return "habit:list:" + userID
}

func possibleKey(userID string, date model.Date) string {
	return "habit:possible:" + userID + ":" + date.String()
}

func completedKey(userID string, date model.Date) string {
	return "habit:completed:" + userID + ":" + date.String()
}

func summaryKey(userID string, today model.Date) string {
	return "habit:summary:" + userID + ":" + today.String()
}

func weekdayStatsKey(userID string, from, to model.Date) string {
	return "habit:stats:" + userID + ":" + from.String() + ":" + to.String()
}

func streaksKey(userID string, today model.Date) string {
	return "habit:streaks:" + userID + ":" + today.String()
}

// derivedPatterns matches every date-parameterized aggregate cached for
// userID. Their exact keys cannot be enumerated, so they are dropped by
// pattern.
func derivedPatterns(userID string) []string {
	u := escapePattern(userID)
	return []string{
		"habit:possible:" + u + ":*",
		"habit:completed:" + u + ":*",
		"habit:summary:" + u + ":*",
		"habit:stats:" + u + ":*",
		"habit:streaks:" + u + ":*",
	}
}

// allSummariesPattern matches every user's summary. A summary lists every
// known Day, so a new Day changes all of them.
func allSummariesPattern() string {
	return "habit:summary:*"
}

func dayIDKey(dayID string) string {
	return "day:id:" + dayID
}

func dayDateKey(date model.Date) string {
	return "day:date:" + date.String()
}

func userIDKey(userID string) string {
	return "user:id:" + userID
}
