package repository

import (
	"context"

	"github.com/jaekwang-park/habit-api/internal/model"
)

// UserRepository reads the account service's users table. Habits only need
// to confirm an owner exists.
type UserRepository interface {
	FindByID(ctx context.Context, userID string) (model.User, error)
	GetOrCreate(ctx context.Context, userID, email string) (model.User, error)
}
