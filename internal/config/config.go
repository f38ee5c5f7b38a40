package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

var validEnvs = map[string]bool{
	"local": true,
	"alpha": true,
	"beta":  true,
	"prod":  true,
}

var validDrivers = map[string]bool{
	"postgres": true,
	"pgx":      true,
	"sqlite":   true,
}

type Config struct {
	AppEnv            string
	LogLevel          string
	Timezone          string
	StatsMaxRangeDays int
	DB                DBConfig
	Redis             RedisConfig
	Cache             CacheConfig

	// loadErrs holds values Load could not parse; Validate reports them.
	loadErrs []error
}

func (c Config) ParseLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Location resolves APP_TIMEZONE.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c Config) Validate() error {
	if len(c.loadErrs) > 0 {
		return errors.Join(c.loadErrs...)
	}
	if !validEnvs[c.AppEnv] {
		return fmt.Errorf("invalid APP_ENV %q: must be one of local, alpha, beta, prod", c.AppEnv)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if !validDrivers[c.DB.Driver] {
		return fmt.Errorf("invalid DB_DRIVER %q: must be one of postgres, pgx, sqlite", c.DB.Driver)
	}
	if c.DB.Driver == "sqlite" {
		if c.DB.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when DB_DRIVER is sqlite")
		}
	} else if _, err := strconv.Atoi(c.DB.Port); err != nil {
		return fmt.Errorf("invalid DB_PORT %q: %w", c.DB.Port, err)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid REDIS_DB %d: must not be negative", c.Redis.DB)
	}
	if c.Cache.EntityTTL <= 0 {
		return fmt.Errorf("CACHE_ENTITY_TTL must be positive")
	}
	if c.Cache.ReferenceTTL <= 0 {
		return fmt.Errorf("CACHE_REFERENCE_TTL must be positive")
	}
	if c.StatsMaxRangeDays <= 0 {
		return fmt.Errorf("STATS_MAX_RANGE_DAYS must be positive")
	}
	return nil
}

type DBConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

// DSN is the Postgres connection URL; both the postgres and pgx drivers
// accept it.
func (d DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     d.Name,
		RawQuery: fmt.Sprintf("sslmode=%s", url.QueryEscape(d.SSLMode)),
	}
	return u.String()
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Redis address was configured. Without one the
// cache decorators are not installed.
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

type CacheConfig struct {
	Prefix       string
	EntityTTL    time.Duration
	ReferenceTTL time.Duration
}

func Load() Config {
	var errs []error
	intEnv := func(key string, def int) int {
		v, err := strconv.Atoi(envOrDefault(key, strconv.Itoa(def)))
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
			return def
		}
		return v
	}
	durationEnv := func(key string, def time.Duration) time.Duration {
		v, err := time.ParseDuration(envOrDefault(key, def.String()))
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
			return def
		}
		return v
	}

	cfg := Config{
		AppEnv:            envOrDefault("APP_ENV", "local"),
		LogLevel:          envOrDefault("LOG_LEVEL", "info"),
		Timezone:          envOrDefault("APP_TIMEZONE", "UTC"),
		StatsMaxRangeDays: intEnv("STATS_MAX_RANGE_DAYS", 1100),
		DB: DBConfig{
			Driver:     envOrDefault("DB_DRIVER", "postgres"),
			Host:       envOrDefault("DB_HOST", "localhost"),
			Port:       envOrDefault("DB_PORT", "5432"),
			User:       envOrDefault("DB_USER", "habits"),
			Password:   envOrDefault("DB_PASSWORD", "habits"),
			Name:       envOrDefault("DB_NAME", "habits"),
			SSLMode:    envOrDefault("DB_SSLMODE", "disable"),
			SQLitePath: envOrDefault("SQLITE_PATH", "./habits.db"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       intEnv("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			Prefix:       envOrDefault("CACHE_PREFIX", "habits:"),
			EntityTTL:    durationEnv("CACHE_ENTITY_TTL", time.Hour),
			ReferenceTTL: durationEnv("CACHE_REFERENCE_TTL", 24*time.Hour),
		},
	}
	cfg.loadErrs = errs
	return cfg
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
