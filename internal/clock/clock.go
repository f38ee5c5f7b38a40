// Package clock supplies "now" and the time zone used to turn instants into
// calendar dates.
package clock

import (
	"time"

	"github.com/jaekwang-park/habit-api/internal/model"
)

type Clock interface {
	Now() time.Time
	Location() *time.Location
}

// Today returns the current calendar date in the clock's zone.
func Today(c Clock) model.Date {
	return model.DateOf(c.Now(), c.Location())
}

type System struct {
	loc *time.Location
}

func NewSystem(loc *time.Location) System {
	if loc == nil {
		loc = time.UTC
	}
	return System{loc: loc}
}

func (s System) Now() time.Time           { return time.Now().In(s.loc) }
func (s System) Location() *time.Location { return s.loc }

// Fixed always reports the same instant.
type Fixed struct {
	T   time.Time
	Loc *time.Location
}

func (f Fixed) Now() time.Time { return f.T }

func (f Fixed) Location() *time.Location {
	if f.Loc == nil {
		return time.UTC
	}
	return f.Loc
}
