package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/jaekwang-park/habit-api/internal/model"
	"github.com/jaekwang-park/habit-api/internal/repository"
)

// UserRepository caches user lookups as reference data.
type UserRepository struct {
	next   repository.UserRepository
	loader *loader
	ttl    time.Duration
}

func NewUserRepository(next repository.UserRepository, c *Cache, ttl time.Duration, logger *slog.Logger) *UserRepository {
	return &UserRepository{next: next, loader: newLoader(c, logger), ttl: ttl}
}

func (r *UserRepository) FindByID(ctx context.Context, userID string) (model.User, error) {
	return readThrough(ctx, r.loader, entityUser, userIDKey(userID), r.ttl, userCodec,
		func(ctx context.Context) (model.User, error) {
			return r.next.FindByID(ctx, userID)
		})
}

func (r *UserRepository) GetOrCreate(ctx context.Context, userID, email string) (model.User, error) {
	u, err := r.next.GetOrCreate(ctx, userID, email)
	if err != nil {
		return model.User{}, err
	}
	if err := r.loader.drop(ctx, []string{userIDKey(userID)}, nil); err != nil {
		r.loader.logger.Error("failed to invalidate user cache", "user_id", userID, "error", err)
	}
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
