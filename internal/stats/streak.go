package stats

import "github.com/jaekwang-park/habit-api/internal/model"

type dayClass int

const (
	// transparent: nothing was due. Never breaks a run.
	transparent dayClass = iota
	// hit: everything due was completed.
	hit
	// miss: something due was left incomplete, partial completion included.
	miss
)

func classify(completed, total int) dayClass {
	switch {
	case total == 0:
		return transparent
	case completed >= total:
		return hit
	default:
		return miss
	}
}

// computeStreaks takes day classes oldest first, ending with today.
//
// A run is a maximal stretch of hit and transparent days; it only counts if
// it contains at least one hit. Transparent days before a run's first hit
// are part of it, back to the first day passed in. The current streak is the run ending today,
// or ending yesterday when today is a miss (today may still be completed).
func computeStreaks(days []dayClass) model.Streaks {
	var s model.Streaks
	if len(days) == 0 {
		return s
	}

	run, hits := 0, 0
	for _, c := range days {
		if c == miss {
			run, hits = 0, 0
			continue
		}
		run++
		if c == hit {
			hits++
		}
		if hits > 0 && run > s.Longest {
			s.Longest = run
		}
	}

	end := len(days) - 1
	if days[end] == miss {
		end--
	}
	run, hits = 0, 0
	for i := end; i >= 0 && days[i] != miss; i-- {
		run++
		if days[i] == hit {
			hits++
		}
	}
	if hits > 0 {
		s.Current = run
	}
	return s
}
