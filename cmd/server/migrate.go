package main

import (
	"github.com/spf13/cobra"

	"github.com/davidblanco1407/pma-frequency-backend/config"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/database"
)

func migrateCommand(cfg func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := commonRun(cfg())
			if err != nil {
				return err
			}
			db, err := openDB(cfg(), logger)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			return database.RunMigrations(db.sql, logger)
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := commonRun(cfg())
			if err != nil {
				return err
			}
			db, err := openDB(cfg(), logger)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			return database.RollbackMigrations(db.sql, steps, logger)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(up, down)
	return cmd
}
