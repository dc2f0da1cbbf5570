package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davidblanco1407/pma-frequency-backend/config"
	"github.com/davidblanco1407/pma-frequency-backend/internal/api/handler"
	"github.com/davidblanco1407/pma-frequency-backend/internal/api/middleware"
	"github.com/davidblanco1407/pma-frequency-backend/internal/api/router"
	"github.com/davidblanco1407/pma-frequency-backend/internal/repository"
	"github.com/davidblanco1407/pma-frequency-backend/internal/service"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/database"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/jwt"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/mailer"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/metrics"
	"github.com/davidblanco1407/pma-frequency-backend/pkg/redis"
)

const shutdownTimeout = 10 * time.Second

func serveCommand(cfg func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd.Context(), cfg())
		},
	}
}

func serveRun(parent context.Context, cfg *config.Config) error {
	logger, err := commonRun(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting",
		zap.String("component", programName),
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	db, err := openDB(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := database.RunMigrations(db.sql, logger); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// Redis is optional: without it tokens are not revocable and auth
	// endpoints are not rate limited.
	var (
		blacklist service.TokenBlacklist
		revoked   middleware.RevocationChecker
		limiter   middleware.RateLimiter
		redisPing handler.Pinger
	)
	if cfg.Redis.Addr != "" {
		rdb, err := redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("redis unavailable, running without token revocation", zap.Error(err))
		} else {
			defer func() { _ = rdb.Close() }()
			blacklist, revoked, limiter, redisPing = rdb, rdb, rdb, rdb
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	jwtMgr := jwt.NewManager(&cfg.Auth)

	repo := repository.NewRepository(db.gorm)
	svc := service.NewService(&service.Deps{
		Config:    cfg,
		Repo:      repo,
		JWT:       jwtMgr,
		Blacklist: blacklist,
		Notifier:  mailer.New(&cfg.Mail, cfg.Server.FrontendURL, logger),
		Metrics:   m,
		Logger:    logger,
	})

	health := handler.NewHealthHandler(handler.PingFunc(db.sql.PingContext), redisPing, logger)
	h := handler.NewHandler(svc, health, logger)

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := router.Setup(router.Deps{
		Config:   cfg,
		Handler:  h,
		JWT:      jwtMgr,
		Revoked:  revoked,
		Limiter:  limiter,
		Accounts: repo.Account,
		Metrics:  m,
		Gatherer: reg,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown", zap.Error(err))
	}
	logger.Info("stopped")
	return nil
}
