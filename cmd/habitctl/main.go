// Command habitctl is the operator CLI for the habit tracker: schema
// migrations, day seeding and the habit use cases, printed as JSON.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	// Initial logger at info level; reconfigured after config load
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(context.Background()); err != nil {
		logger.Error("habitctl failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &cli{}
	defer c.close()

	return c.rootCmd().ExecuteContext(ctx)
}
