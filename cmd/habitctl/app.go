package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jaekwang-park/habit-api/internal/cache"
	"github.com/jaekwang-park/habit-api/internal/clock"
	"github.com/jaekwang-park/habit-api/internal/config"
	"github.com/jaekwang-park/habit-api/internal/repository"
	"github.com/jaekwang-park/habit-api/internal/service"
	"github.com/jaekwang-park/habit-api/internal/stats"
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg     config.Config
	logger  *slog.Logger
	clock   clock.Clock
	db      *sql.DB
	dialect repository.Dialect
	redis   *redis.Client

	users  repository.UserRepository
	habits *service.HabitService
	days   *service.DayService
}

func openApp(ctx context.Context) (*app, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.ParseLogLevel(),
	}))
	slog.SetDefault(logger)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	logger.Debug("config loaded",
		"env", cfg.AppEnv,
		"db_driver", cfg.DB.Driver,
		"timezone", cfg.Timezone,
		"cache_enabled", cfg.Redis.Enabled(),
		"log_level", cfg.LogLevel,
	)

	dsn := cfg.DB.DSN()
	if cfg.DB.Driver == "sqlite" {
		dsn = repository.SQLiteDSN(cfg.DB.SQLitePath)
	}
	db, dialect, err := repository.NewDB(ctx, cfg.DB.Driver, dsn)
	if err != nil {
		return nil, err
	}
	logger.Debug("database connected", "dialect", dialect)

	a := &app{
		cfg:     cfg,
		logger:  logger,
		clock:   clock.NewSystem(loc),
		db:      db,
		dialect: dialect,
	}
	a.wire(ctx, loc)
	return a, nil
}

// wire builds repositories, then wraps them in cache decorators when Redis
// is configured and reachable.
func (a *app) wire(ctx context.Context, loc *time.Location) {
	habitStore := repository.NewSQLHabit(a.db, a.dialect, loc)
	dayStore := repository.NewSQLDay(a.db, a.dialect)
	ledger := repository.NewSQLCompletionLedger(a.db, a.dialect)

	var (
		habits   repository.HabitRepository = habitStore
		days     repository.DayRepository   = dayStore
		users    repository.UserRepository  = repository.NewSQLUser(a.db, a.dialect)
		tx       repository.TxManager       = repository.NewTxManager(a.db, a.dialect, loc, a.logger)
		provider stats.Provider             = stats.NewAggregator(habitStore, ledger, dayStore, a.clock)
	)

	if c := a.openCache(ctx); c != nil {
		ttl := a.cfg.Cache
		cachedHabits := cache.NewHabitRepository(habitStore, c, ttl.EntityTTL, a.logger)
		cachedDays := cache.NewDayRepository(dayStore, c, ttl.ReferenceTTL, a.logger)
		habits = cachedHabits
		days = cachedDays
		users = cache.NewUserRepository(users, c, ttl.ReferenceTTL, a.logger)
		tx = cache.NewTxManager(tx, cachedHabits, cachedDays)
		provider = cache.NewStatsProvider(provider, c, ttl.EntityTTL, a.clock, a.logger)
	}

	a.users = users
	a.habits = service.NewHabitService(service.HabitDeps{
		Habits:        habits,
		Days:          days,
		Users:         users,
		Tx:            tx,
		Stats:         provider,
		Clock:         a.clock,
		Logger:        a.logger,
		MaxStatsRange: a.cfg.StatsMaxRangeDays,
	})
	a.days = service.NewDayService(days)
}

// openCache returns nil when caching is disabled or Redis does not answer;
// the store then serves every read.
func (a *app) openCache(ctx context.Context) *cache.Cache {
	if !a.cfg.Redis.Enabled() {
		return nil
	}

	a.redis = redis.NewClient(&redis.Options{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	c := cache.New(a.redis, a.cfg.Cache.Prefix, a.cfg.Cache.EntityTTL)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		a.logger.Warn("redis unavailable, running without cache", "addr", a.cfg.Redis.Addr, "error", err)
		return nil
	}
	a.logger.Debug("redis connected", "addr", a.cfg.Redis.Addr)
	return c
}

func (a *app) migrate(ctx context.Context) (int, error) {
	return repository.Migrate(ctx, a.db, a.dialect, a.logger)
}

func (a *app) Close() error {
	var errs []error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}
	return errors.Join(errs...)
}
