package cache

import (
	"time"

	"github.com/jaekwang-park/habit-api/internal/model"
)

// Snapshots are the cached wire shape, decoupled from the model structs so
// a model change does not silently alter what older entries decode into.

type habitSnapshot struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	WeekDays  []int     `json:"week_days"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func snapshotHabit(h model.Habit) habitSnapshot {
	return habitSnapshot{
		ID:        h.ID,
		UserID:    h.UserID,
		Title:     h.Title,
		WeekDays:  []int(h.WeekDays),
		CreatedAt: h.CreatedAt,
		UpdatedAt: h.UpdatedAt,
	}
}

func (s habitSnapshot) habit() (model.Habit, error) {
	days, err := model.NewWeekdaySet(s.WeekDays)
	if err != nil {
		return model.Habit{}, err
	}
	return model.Habit{
		ID:        s.ID,
		UserID:    s.UserID,
		Title:     s.Title,
		WeekDays:  days,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}, nil
}

type daySnapshot struct {
	ID   string `json:"id"`
	Date string `json:"date"`
}

type userSnapshot struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type weekdayStatSnapshot struct {
	Weekday    int      `json:"week_day"`
	Completed  int      `json:"completed"`
	Total      int      `json:"total"`
	Percentage *float64 `json:"percentage"`
}

type streaksSnapshot struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}

type daySummarySnapshot struct {
	DayID     string `json:"day_id"`
	Date      string `json:"date"`
	Completed int    `json:"completed"`
	Amount    int    `json:"amount"`
}

// codec converts between a value and its snapshot. empty reports values that
// must not be cached.
type codec[T, S any] struct {
	encode func(T) S
	decode func(S) (T, error)
	empty  func(T) bool
}

var habitCodec = codec[model.Habit, habitSnapshot]{
	encode: snapshotHabit,
	decode: habitSnapshot.habit,
	empty:  func(h model.Habit) bool { return h.ID == "" },
}

var habitsCodec = codec[[]model.Habit, []habitSnapshot]{
	encode: func(hs []model.Habit) []habitSnapshot {
		out := make([]habitSnapshot, len(hs))
		for i, h := range hs {
			out[i] = snapshotHabit(h)
		}
		return out
	},
	decode: func(ss []habitSnapshot) ([]model.Habit, error) {
		out := make([]model.Habit, len(ss))
		for i, s := range ss {
			h, err := s.habit()
			if err != nil {
				return nil, err
			}
			out[i] = h
		}
		return out, nil
	},
	empty: func(hs []model.Habit) bool { return len(hs) == 0 },
}

var dayCodec = codec[model.Day, daySnapshot]{
	encode: func(d model.Day) daySnapshot {
		return daySnapshot{ID: d.ID, Date: d.Date.String()}
	},
	decode: func(s daySnapshot) (model.Day, error) {
		date, err := model.ParseDate(s.Date)
		if err != nil {
			return model.Day{}, err
		}
		return model.Day{ID: s.ID, Date: date}, nil
	},
	empty: func(d model.Day) bool { return d.ID == "" },
}

var userCodec = codec[model.User, userSnapshot]{
	encode: func(u model.User) userSnapshot {
		return userSnapshot{
			ID:        u.ID,
			Email:     u.Email,
			Nickname:  u.Nickname,
			CreatedAt: u.CreatedAt,
			UpdatedAt: u.UpdatedAt,
		}
	},
	decode: func(s userSnapshot) (model.User, error) {
		return model.User{
			ID:        s.ID,
			Email:     s.Email,
			Nickname:  s.Nickname,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		}, nil
	},
	empty: func(u model.User) bool { return u.ID == "" },
}

var weekdayStatsCodec = codec[map[int]model.WeekdayStat, []weekdayStatSnapshot]{
	encode: func(m map[int]model.WeekdayStat) []weekdayStatSnapshot {
		out := make([]weekdayStatSnapshot, 0, len(m))
		for _, s := range m {
			out = append(out, weekdayStatSnapshot{
				Weekday:    s.Weekday,
				Completed:  s.Completed,
				Total:      s.Total,
				Percentage: s.Percentage,
			})
		}
		return out
	},
	decode: func(ss []weekdayStatSnapshot) (map[int]model.WeekdayStat, error) {
		out := make(map[int]model.WeekdayStat, len(ss))
		for _, s := range ss {
			out[s.Weekday] = model.WeekdayStat{
				Weekday:    s.Weekday,
				Completed:  s.Completed,
				Total:      s.Total,
				Percentage: s.Percentage,
			}
		}
		return out, nil
	},
	empty: func(m map[int]model.WeekdayStat) bool { return len(m) == 0 },
}

var streaksCodec = codec[model.Streaks, streaksSnapshot]{
	encode: func(s model.Streaks) streaksSnapshot {
		return streaksSnapshot{Current: s.Current, Longest: s.Longest}
	},
	decode: func(s streaksSnapshot) (model.Streaks, error) {
		return model.Streaks{Current: s.Current, Longest: s.Longest}, nil
	},
	empty: func(s model.Streaks) bool { return s == model.Streaks{} },
}

var summaryCodec = codec[[]model.DaySummary, []daySummarySnapshot]{
	encode: func(ds []model.DaySummary) []daySummarySnapshot {
		out := make([]daySummarySnapshot, len(ds))
		for i, d := range ds {
			out[i] = daySummarySnapshot{
				DayID:     d.DayID,
				Date:      d.Date.String(),
				Completed: d.Completed,
				Amount:    d.Amount,
			}
		}
		return out
	},
	decode: func(ss []daySummarySnapshot) ([]model.DaySummary, error) {
		out := make([]model.DaySummary, len(ss))
		for i, s := range ss {
			date, err := model.ParseDate(s.Date)
			if err != nil {
				return nil, err
			}
			out[i] = model.DaySummary{
				DayID:     s.DayID,
				Date:      date,
				Completed: s.Completed,
				Amount:    s.Amount,
			}
		}
		return out, nil
	},
	empty: func(ds []model.DaySummary) bool { return len(ds) == 0 },
}
