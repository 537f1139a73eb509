package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/cardshelf/internal/app"
	"github.com/MrSnakeDoc/cardshelf/internal/config"
	"github.com/MrSnakeDoc/cardshelf/internal/database"
	"github.com/MrSnakeDoc/cardshelf/internal/logger"
	"github.com/MrSnakeDoc/cardshelf/internal/store/sqldb"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the cards table and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg := config.Load()
		loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
		defer func() { _ = loggerClient.Sync() }()

		ctx := background(cmd)
		db, err := app.OpenDatabase(ctx, cfg, loggerClient)
		if err != nil {
			return err
		}
		defer func() { _ = database.Close(db) }()

		if err := sqldb.Migrate(ctx, db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		loggerClient.Info("✅ database migrated", logger.String("driver", cfg.DBDriver))
		return nil
	},
}
