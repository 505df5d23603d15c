package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"report-service/internal/config"
	"report-service/internal/db"
	"report-service/internal/logger"
)

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			log := logger.New(cfg.Environment)

			database, err := db.Open(cfg, log)
			if err != nil {
				return err
			}
			defer closeDatabase(database, log)

			if err := db.Migrate(database); err != nil {
				return err
			}
			log.Info().Msg("migrations applied")
			return nil
		},
	}
}
