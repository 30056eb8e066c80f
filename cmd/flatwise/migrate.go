package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mmynk/flatwise/internal/storage/sqlite"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

The server also migrates on startup; this command is for preparing a
database ahead of time.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			slog.Info("Running database migrations", "database", cfg.Database.Path)
			store, err := sqlite.New(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			defer store.Close()
			slog.Info("Database migrations completed")
			return nil
		},
	}
}
