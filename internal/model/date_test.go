package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jaekwang-park/habit-api/internal/model"
)

func TestParseDate(t *testing.T) {
	d, err := model.ParseDate("2025-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Weekday() != time.Friday {
		t.Errorf("weekday = %s, want Friday", d.Weekday())
	}
	if got := d.AddDays(1).String(); got != "2025-02-01" {
		t.Errorf("AddDays(1) = %s, want 2025-02-01", got)
	}

	if _, err := model.ParseDate("31/01/2025"); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestDate_DaysUntil(t *testing.T) {
	from := model.NewDate(2025, 2, 27)
	to := model.NewDate(2025, 3, 2)

	if got := from.DaysUntil(to); got != 3 {
		t.Errorf("DaysUntil = %d, want 3", got)
	}
	if got := to.DaysUntil(from); got != -3 {
		t.Errorf("DaysUntil reversed = %d, want -3", got)
	}
}

func TestDate_Scan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want string
	}{
		{"text", "2025-04-01", "2025-04-01"},
		{"bytes", []byte("2025-04-01"), "2025-04-01"},
		{"timestamp text", "2025-04-01 00:00:00+00:00", "2025-04-01"},
		{"time", time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), "2025-04-01"},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d model.Date
			if err := d.Scan(tt.src); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.String() != tt.want {
				t.Errorf("got %q, want %q", d.String(), tt.want)
			}
		})
	}
}

func TestDate_JSON(t *testing.T) {
	day := model.Day{ID: "day-1", Date: model.NewDate(2025, 5, 6)}

	b, err := json.Marshal(day)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"id":"day-1","date":"2025-05-06"}` {
		t.Errorf("unexpected json %s", b)
	}

	var decoded model.Day
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded.Date.Equal(day.Date) {
		t.Errorf("decoded date %s, want %s", decoded.Date, day.Date)
	}
}
