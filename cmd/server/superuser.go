package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davidblanco1407/pma-frequency-backend/config"
	"github.com/davidblanco1407/pma-frequency-backend/internal/repository"
	"github.com/davidblanco1407/pma-frequency-backend/internal/service"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/database"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/jwt"
)

func createSuperuserCommand(cfg func() *config.Config) *cobra.Command {
	var username, email, plain string

	cmd := &cobra.Command{
		Use:   "create-superuser",
		Short: "Create an administrator account without a member profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			if username == "" || email == "" || plain == "" {
				return errors.New("--username, --email and --password are required")
			}
			c := cfg()
			logger, err := commonRun(c)
			if err != nil {
				return err
			}
			db, err := openDB(c, logger)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			if err := database.RunMigrations(db.sql, logger); err != nil {
				return err
			}

			svc := service.NewService(&service.Deps{
				Config: c,
				Repo:   repository.NewRepository(db.gorm),
				JWT:    jwt.NewManager(&c.Auth),
				Logger: logger,
			})
			acc, err := svc.Account.CreateSuperuser(cmd.Context(), username, email, plain)
			if err != nil {
				return err
			}
			logger.Info("superuser created", zap.Uint("account_id", acc.ID), zap.String("username", acc.Username))
			fmt.Fprintf(cmd.OutOrStdout(), "superuser %q created (id %d)\n", acc.Username, acc.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "login name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&plain, "password", "", "initial password")
	return cmd
}
