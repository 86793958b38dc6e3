package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"songmarket/internal/server/config"
	"songmarket/internal/server/database"
)

func main() {
	confirm := flag.Bool("confirm", false, "replace every user and song with the demo data set")
	timeout := flag.Duration("timeout", time.Minute, "give up after this long")
	flag.Parse()

	if !*confirm {
		fmt.Fprintln(os.Stderr, "seed deletes all users and songs; rerun with -confirm to proceed")
		os.Exit(2)
	}

	cfg, err := config.LoadDatabase()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, cfg); err != nil {
		if errors.Is(err, database.ErrServerRunning) {
			slog.Error("refusing to seed while a server is running; stop it first")
		} else {
			slog.Error("seed failed", "error", err)
		}
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.DatabaseConfig) error {
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.RunMigrations(ctx); err != nil {
		return err
	}

	if err := db.Seed(ctx); err != nil {
		return err
	}

	slog.Info("seed complete",
		"users", len(database.SeedUsers()),
		"songs", len(database.SeedSongs()),
	)
	return nil
}
