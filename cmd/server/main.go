package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/davidblanco1407/pma-frequency-backend/config"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/database"
	applogger "github.com/davidblanco1407/pma-frequency-backend/pkg/logger"
)

const programName = "pma-frequency"

func main() {
	var (
		configFile string
		cfg        *config.Config
	)

	rootCmd := &cobra.Command{
		Use:   programName,
		Short: "PMA Frequency membership backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd.Context(), cfg)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to config file")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return err
		}
		return nil
	}

	cfgFn := func() *config.Config { return cfg }
	rootCmd.AddCommand(serveCommand(cfgFn))
	rootCmd.AddCommand(migrateCommand(cfgFn))
	rootCmd.AddCommand(createSuperuserCommand(cfgFn))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// commonRun builds the logger and sizes GOMAXPROCS.
func commonRun(cfg *config.Config) (*zap.Logger, error) {
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	sugar := logger.Sugar()
	if _, err := maxprocs.Set(maxprocs.Logger(sugar.Infof)); err != nil {
		logger.Warn("set GOMAXPROCS", zap.Error(err))
	}
	return logger, nil
}

type dbHandle struct {
	gorm *gorm.DB
	sql  *sql.DB
}

func (h *dbHandle) Close() error { return h.sql.Close() }

// openDB connects to PostgreSQL.
func openDB(cfg *config.Config, logger *zap.Logger) (*dbHandle, error) {
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	return &dbHandle{gorm: db, sql: sqlDB}, nil
}
