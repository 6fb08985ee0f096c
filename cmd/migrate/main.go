package main

import (
	"context"
	"fmt"
	"os"

	"bayesbet/adapters/db/postgres/migrations"
	"bayesbet/internal"
	"bayesbet/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

func main() {
	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	if err := run(context.Background(), command); err != nil {
		internal.DefaultLogger.Error("migrate %s: %v", command, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string) error {
	if err := config.LoadEnvFile(".env"); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !cfg.Database.Enabled() {
		return fmt.Errorf("DATABASE_URL is required")
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	migrator := migrations.NewMigrator(db.DB, logger)
	switch command {
	case "up":
		return migrator.Up(ctx)
	case "down":
		return migrator.Down(ctx)
	case "status":
		statuses, err := migrator.Status(ctx)
		if err != nil {
			return err
		}
		applied := 0
		for _, s := range statuses {
			state := "pending"
			if s.Applied {
				state = "applied"
				applied++
			}
			fmt.Printf("  %s: %s\n", s.Version, state)
		}
		fmt.Printf("\nSummary: %d/%d migrations applied\n", applied, len(statuses))
		return nil
	default:
		return fmt.Errorf("unknown command %q (want up, down or status)", command)
	}
}
