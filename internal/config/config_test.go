package config_test

import (
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jaekwang-park/habit-api/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "LOG_LEVEL", "APP_TIMEZONE", "STATS_MAX_RANGE_DAYS",
		"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE", "SQLITE_PATH",
		"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"CACHE_PREFIX", "CACHE_ENTITY_TTL", "CACHE_REFERENCE_TTL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := config.Load()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"AppEnv", cfg.AppEnv, "local"},
		{"LogLevel", cfg.LogLevel, "info"},
		{"Timezone", cfg.Timezone, "UTC"},
		{"DB.Driver", cfg.DB.Driver, "postgres"},
		{"DB.Host", cfg.DB.Host, "localhost"},
		{"DB.Port", cfg.DB.Port, "5432"},
		{"DB.User", cfg.DB.User, "habits"},
		{"DB.Password", cfg.DB.Password, "habits"},
		{"DB.Name", cfg.DB.Name, "habits"},
		{"DB.SSLMode", cfg.DB.SSLMode, "disable"},
		{"DB.SQLitePath", cfg.DB.SQLitePath, "./habits.db"},
		{"Redis.Addr", cfg.Redis.Addr, ""},
		{"Cache.Prefix", cfg.Cache.Prefix, "habits:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}

	if cfg.Cache.EntityTTL != time.Hour {
		t.Errorf("got EntityTTL=%v, want 1h", cfg.Cache.EntityTTL)
	}
	if cfg.Cache.ReferenceTTL != 24*time.Hour {
		t.Errorf("got ReferenceTTL=%v, want 24h", cfg.Cache.ReferenceTTL)
	}
	if cfg.StatsMaxRangeDays != 1100 {
		t.Errorf("got StatsMaxRangeDays=%d, want 1100", cfg.StatsMaxRangeDays)
	}
	if cfg.Redis.Enabled() {
		t.Error("expected cache to be disabled without REDIS_ADDR")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "beta")
	t.Setenv("APP_TIMEZONE", "Asia/Seoul")
	t.Setenv("DB_DRIVER", "pgx")
	t.Setenv("DB_HOST", "db.example.com")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_PASSWORD", "secret")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("CACHE_PREFIX", "h:")
	t.Setenv("CACHE_ENTITY_TTL", "30m")
	t.Setenv("CACHE_REFERENCE_TTL", "12h")
	t.Setenv("STATS_MAX_RANGE_DAYS", "365")
	t.Setenv("LOG_LEVEL", "debug")

	cfg := config.Load()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"AppEnv", cfg.AppEnv, "beta"},
		{"Timezone", cfg.Timezone, "Asia/Seoul"},
		{"DB.Driver", cfg.DB.Driver, "pgx"},
		{"DB.Host", cfg.DB.Host, "db.example.com"},
		{"DB.Port", cfg.DB.Port, "5433"},
		{"Redis.Addr", cfg.Redis.Addr, "redis:6379"},
		{"Redis.Password", cfg.Redis.Password, "secret"},
		{"Cache.Prefix", cfg.Cache.Prefix, "h:"},
		{"LogLevel", cfg.LogLevel, "debug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}

	if cfg.Redis.DB != 2 {
		t.Errorf("got Redis.DB=%d, want 2", cfg.Redis.DB)
	}
	if cfg.Cache.EntityTTL != 30*time.Minute || cfg.Cache.ReferenceTTL != 12*time.Hour {
		t.Errorf("got TTLs %v/%v, want 30m/12h", cfg.Cache.EntityTTL, cfg.Cache.ReferenceTTL)
	}
	if cfg.StatsMaxRangeDays != 365 {
		t.Errorf("got StatsMaxRangeDays=%d, want 365", cfg.StatsMaxRangeDays)
	}
	if !cfg.Redis.Enabled() {
		t.Error("expected cache to be enabled")
	}
}

func TestConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantSub  string
	}{
		{
			name:     "simple password",
			password: "habits",
			wantSub:  "habits:habits@",
		},
		{
			name:     "password with special chars",
			password: "p@ss/w#rd?",
			wantSub:  "habits:p%40ss%2Fw%23rd%3F@",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DB_PASSWORD", tt.password)

			cfg := config.Load()
			dsn := cfg.DB.DSN()

			if !strings.Contains(dsn, tt.wantSub) {
				t.Errorf("DSN=%s, want to contain %s", dsn, tt.wantSub)
			}
			if !strings.HasPrefix(dsn, "postgres://") {
				t.Errorf("DSN=%s, want postgres:// prefix", dsn)
			}
			if !strings.Contains(dsn, "sslmode=disable") {
				t.Errorf("DSN=%s, want sslmode=disable", dsn)
			}
		})
	}
}

func TestConfig_ParseLogLevel(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  slog.Level
	}{
		{"debug", "debug", slog.LevelDebug},
		{"info", "info", slog.LevelInfo},
		{"warn", "warn", slog.LevelWarn},
		{"error", "error", slog.LevelError},
		{"uppercase DEBUG", "DEBUG", slog.LevelDebug},
		{"mixed case Warn", "Warn", slog.LevelWarn},
		{"empty defaults to info", "", slog.LevelInfo},
		{"invalid defaults to info", "verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("LOG_LEVEL", tt.value)

			cfg := config.Load()
			got := cfg.ParseLogLevel()

			if got != tt.want {
				t.Errorf("LOG_LEVEL=%q: got %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestConfig_Location(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_TIMEZONE", "America/New_York")

	loc, err := config.Load().Location()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.String() != "America/New_York" {
		t.Errorf("got %s, want America/New_York", loc)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"valid defaults", nil, ""},
		{"valid sqlite", map[string]string{"DB_DRIVER": "sqlite", "DB_PORT": "not-used"}, ""},
		{"valid prod pgx", map[string]string{"APP_ENV": "prod", "DB_DRIVER": "pgx"}, ""},
		{"invalid env", map[string]string{"APP_ENV": "staging"}, "invalid APP_ENV"},
		{"invalid driver", map[string]string{"DB_DRIVER": "mysql"}, "invalid DB_DRIVER"},
		{"invalid port", map[string]string{"DB_PORT": "abc"}, "invalid DB_PORT"},
		{"invalid timezone", map[string]string{"APP_TIMEZONE": "Mars/Olympus"}, "invalid APP_TIMEZONE"},
		{"unparsable ttl", map[string]string{"CACHE_ENTITY_TTL": "soon"}, "invalid CACHE_ENTITY_TTL"},
		{"zero ttl", map[string]string{"CACHE_REFERENCE_TTL": "0s"}, "CACHE_REFERENCE_TTL must be positive"},
		{"unparsable redis db", map[string]string{"REDIS_DB": "one"}, "invalid REDIS_DB"},
		{"negative redis db", map[string]string{"REDIS_DB": "-1"}, "invalid REDIS_DB"},
		{"zero stats range", map[string]string{"STATS_MAX_RANGE_DAYS": "0"}, "STATS_MAX_RANGE_DAYS must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			err := config.Load().Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("expected error containing %q, got nil", tt.wantErr)
				} else if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
				}
			}
		})
	}
}
