package repository

import (
	"context"

	"github.com/jaekwang-park/habit-api/internal/model"
)

// CompletionLedger is the day/habit junction store.
type CompletionLedger interface {
	// Toggle flips the completion of habitID on dayID and reports whether the
	// habit is now completed. A habit not owned by userID is left untouched
	// and reported as not completed. The day must already exist.
	Toggle(ctx context.Context, dayID, habitID, userID string) (bool, error)
	// ListByUser returns the user's completion records dated within
	// [from, to].
	ListByUser(ctx context.Context, userID string, from, to model.Date) ([]model.CompletionRecord, error)
}
