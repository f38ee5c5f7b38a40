package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jaekwang-park/habit-api/internal/clock"
	"github.com/jaekwang-park/habit-api/internal/model"
	"github.com/jaekwang-park/habit-api/internal/service"
)

type cli struct {
	userID string
	app    *app
}

func (c *cli) close() {
	if c.app == nil {
		return
	}
	if err := c.app.Close(); err != nil {
		c.app.logger.Error("shutdown failed", "error", err)
	}
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "habitctl",
		Short:         "Manage habits, completions and streaks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&c.userID, "user", "u", os.Getenv("HABITS_USER"), "acting user id (defaults to $HABITS_USER)")

	root.AddCommand(
		c.migrateCmd(),
		c.seedDaysCmd(),
		c.userCmd(),
		c.habitCmd(),
		c.toggleCmd(),
		c.dayCmd(),
		c.statsCmd(),
		c.streaksCmd(),
		c.summaryCmd(),
	)
	return root
}

func (c *cli) requireUser() (string, error) {
	if c.userID == "" {
		return "", errors.New("--user is required")
	}
	return c.userID, nil
}

// dateArg parses a YYYY-MM-DD flag value, defaulting to today when empty.
func (c *cli) dateArg(s string) (model.Date, error) {
	if s == "" {
		return clock.Today(c.app.clock), nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return model.Date{}, fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}
	return d, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			applied, err := c.app.migrate(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]int{"applied": applied})
		},
	}
}

func (c *cli) seedDaysCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "seed-days",
		Short: "Create Day rows for a date range, skipping existing dates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := c.dateArg(from)
			if err != nil {
				return err
			}
			end, err := c.dateArg(to)
			if err != nil {
				return err
			}
			created, err := c.app.days.SeedDays(cmd.Context(), start, end)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"from":    start,
				"to":      end,
				"created": created,
			})
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&to, "to", "", "last date, YYYY-MM-DD (default today)")
	return cmd
}

func (c *cli) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Register habit owners",
	}

	var email string
	add := &cobra.Command{
		Use:   "add <user-id>",
		Short: "Register a user id so habits can be created for it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := c.app.users.GetOrCreate(cmd.Context(), args[0], email)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), u)
		},
	}
	add.Flags().StringVar(&email, "email", "", "contact email")
	_ = add.MarkFlagRequired("email")

	cmd.AddCommand(add)
	return cmd
}

func (c *cli) habitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "habit",
		Short: "Create, change and list habits",
	}

	var title string
	var days []int
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a habit scheduled on the given weekdays (0=Sunday)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := c.requireUser()
			if err != nil {
				return err
			}
			h, err := c.app.habits.Create(cmd.Context(), userID, service.CreateHabitInput{
				Title:    title,
				WeekDays: days,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), h)
		},
	}
	create.Flags().StringVar(&title, "title", "", "habit title")
	create.Flags().IntSliceVar(&days, "days", nil, "weekdays, e.g. 1,3,5")

	var newTitle string
	var newDays []int
	update := &cobra.Command{
		Use:   "update <habit-id>",
		Short: "Rename a habit or replace its weekdays",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := c.requireUser()
			if err != nil {
				return err
			}
			var input service.UpdateHabitInput
			if cmd.Flags().Changed("title") {
				input.Title = &newTitle
			}
			if cmd.Flags().Changed("days") {
				input.WeekDays = newDays
				if input.WeekDays == nil {
					input.WeekDays = []int{}
				}
			}
			h, err := c.app.habits.Update(cmd.Context(), userID, args[0], input)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), h)
		},
	}
	update.Flags().StringVar(&newTitle, "title", "", "new title")
	update.Flags().IntSliceVar(&newDays, "days", nil, "new weekdays, replacing the current set")

	del := &cobra.Command{
		Use:   "delete <habit-id>",
		Short: "Delete a habit and its completion history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := c.requireUser()
			if err != nil {
				return err
			}
			if err := c.app.habits.Delete(cmd.Context(), userID, args[0]); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]string{"deleted": args[0]})
		},
	}

	get := &cobra.Command{
		Use:   "get <habit-id>",
		Short: "Show one habit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := c.requireUser()
			if err != nil {
				return err
			}
			h, err := c.app.habits.Get(cmd.Context(), userID, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), h)
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the user's habits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := c.requireUser()
			if err != nil {
				return err
			}
			hs, err := c.app.habits.List(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), hs)
		},
	}

	cmd.AddCommand(create, update, del, get, list)
	return cmd
}

func (c *cli) toggleCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "toggle <habit-id>",
		Short: "Flip a habit's completion for a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := c.requireUser()
			if err != nil {
				return err
			}
			d, err := c.dateArg(date)
			if err != nil {
				return err
			}
			done, err := c.app.habits.Toggle(cmd.Context(), userID, args[0], d)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"habit_id":  args[0],
				"date":      d,
				"completed": done,
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "YYYY-MM-DD (default today)")
	return cmd
}

func (c *cli) dayCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "day",
		Short: "Show the habits due on a date and which are completed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := c.requireUser()
			if err != nil {
				return err
			}
			d, err := c.dateArg(date)
			if err != nil {
				return err
			}
			view, err := c.app.habits.DayView(cmd.Context(), userID, d)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), view)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "YYYY-MM-DD (default today)")
	return cmd
}

func (c *cli) statsCmd() *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Completion ratio per weekday over a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := c.requireUser()
			if err != nil {
				return err
			}
			end, err := c.dateArg(to)
			if err != nil {
				return err
			}
			start := end.AddDays(-29)
			if from != "" {
				if start, err = c.dateArg(from); err != nil {
					return err
				}
			}
			week, err := c.app.habits.WeekdayStats(cmd.Context(), userID, start, end)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), week)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first date, YYYY-MM-DD (default 30 days before --to)")
	cmd.Flags().StringVar(&to, "to", "", "last date, YYYY-MM-DD (default today)")
	return cmd
}

func (c *cli) streaksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "streaks",
		Short: "Current and longest streak",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := c.requireUser()
			if err != nil {
				return err
			}
			s, err := c.app.habits.Streaks(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), s)
		},
	}
}

func (c *cli) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Due and completed counts for every known day up to today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := c.requireUser()
			if err != nil {
				return err
			}
			summary, err := c.app.habits.Summary(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}
}
