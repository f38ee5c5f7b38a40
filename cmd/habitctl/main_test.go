package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaekwang-park/habit-api/internal/model"
)

func setupEnv(t *testing.T, withCache bool) {
	t.Helper()
	t.Setenv("APP_ENV", "local")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("APP_TIMEZONE", "UTC")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "habits.db"))
	t.Setenv("REDIS_ADDR", "")
	if withCache {
		t.Setenv("REDIS_ADDR", miniredis.RunT(t).Addr())
	}
}

func runCLI(t *testing.T, args ...string) []byte {
	t.Helper()
	c := &cli{}
	defer c.close()

	root := c.rootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	require.NoError(t, root.ExecuteContext(context.Background()), "habitctl %v", args)
	return out.Bytes()
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestHabitctl_EndToEnd(t *testing.T) {
	for _, withCache := range []bool{false, true} {
		name := "store only"
		if withCache {
			name = "with cache"
		}
		t.Run(name, func(t *testing.T) {
			setupEnv(t, withCache)

			migrated := decode[map[string]int](t, runCLI(t, "migrate"))
			assert.Equal(t, 1, migrated["applied"])
			migrated = decode[map[string]int](t, runCLI(t, "migrate"))
			assert.Equal(t, 0, migrated["applied"])

			runCLI(t, "user", "add", "u1", "--email", "u1@example.com")

			habit := decode[map[string]any](t, runCLI(t, "habit", "create", "-u", "u1",
				"--title", "Read", "--days", "0,1,2,3,4,5,6"))
			id, _ := habit["id"].(string)
			require.NotEmpty(t, id)

			toggled := decode[map[string]any](t, runCLI(t, "toggle", id, "-u", "u1"))
			assert.Equal(t, true, toggled["completed"])

			view := decode[map[string]any](t, runCLI(t, "day", "-u", "u1"))
			assert.Equal(t, []any{id}, view["completed_habits"])

			streaks := decode[map[string]int](t, runCLI(t, "streaks", "-u", "u1"))
			assert.Equal(t, map[string]int{"current_streak": 1, "longest_streak": 1}, streaks)

			toggled = decode[map[string]any](t, runCLI(t, "toggle", id, "-u", "u1"))
			assert.Equal(t, false, toggled["completed"])

			streaks = decode[map[string]int](t, runCLI(t, "streaks", "-u", "u1"))
			assert.Equal(t, map[string]int{"current_streak": 0, "longest_streak": 0}, streaks)

			view = decode[map[string]any](t, runCLI(t, "day", "-u", "u1"))
			assert.Empty(t, view["completed_habits"])

			runCLI(t, "habit", "update", id, "-u", "u1", "--title", "Read more")
			got := decode[map[string]any](t, runCLI(t, "habit", "get", id, "-u", "u1"))
			assert.Equal(t, "Read more", got["title"])

			week := decode[[]map[string]any](t, runCLI(t, "stats", "-u", "u1"))
			assert.Len(t, week, 7)

			summary := decode[[]map[string]any](t, runCLI(t, "summary", "-u", "u1"))
			assert.Len(t, summary, 1)

			runCLI(t, "habit", "delete", id, "-u", "u1")
			list := decode[[]map[string]any](t, runCLI(t, "habit", "list", "-u", "u1"))
			assert.Empty(t, list)
		})
	}
}

func TestHabitctl_NewDayRefreshesEverySummary(t *testing.T) {
	for _, withCache := range []bool{false, true} {
		name := "store only"
		if withCache {
			name = "with cache"
		}
		t.Run(name, func(t *testing.T) {
			setupEnv(t, withCache)
			runCLI(t, "migrate")

			ids := map[string]string{}
			for _, u := range []string{"u1", "u2"} {
				runCLI(t, "user", "add", u, "--email", u+"@example.com")
				habit := decode[map[string]any](t, runCLI(t, "habit", "create", "-u", u,
					"--title", "Stretch", "--days", "0,1,2,3,4,5,6"))
				ids[u], _ = habit["id"].(string)
			}

			yesterday := time.Now().UTC().AddDate(0, 0, -1).Format(model.DateLayout)
			runCLI(t, "seed-days", "--from", yesterday, "--to", yesterday)

			before := decode[[]map[string]any](t, runCLI(t, "summary", "-u", "u2"))
			require.Len(t, before, 1)

			// u1 completing today creates today's Day, which u2's summary must list.
			runCLI(t, "toggle", ids["u1"], "-u", "u1")

			after := decode[[]map[string]any](t, runCLI(t, "summary", "-u", "u2"))
			require.Len(t, after, 2)
			assert.EqualValues(t, 1, after[1]["amount"])
			assert.EqualValues(t, 0, after[1]["completed"])

			// Toggling again reuses the stored day.
			runCLI(t, "toggle", ids["u2"], "-u", "u2")
			after = decode[[]map[string]any](t, runCLI(t, "summary", "-u", "u2"))
			require.Len(t, after, 2)
			assert.EqualValues(t, 1, after[1]["completed"])
		})
	}
}

func TestHabitctl_RequiresUser(t *testing.T) {
	setupEnv(t, false)
	t.Setenv("HABITS_USER", "")

	c := &cli{}
	defer c.close()
	root := c.rootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"habit", "list"})

	err := root.ExecuteContext(context.Background())
	assert.ErrorContains(t, err, "--user is required")
}
