package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"harcama/internal/backend"
	"harcama/internal/cli"
	"harcama/internal/core"
	"harcama/internal/format"
	"harcama/internal/forms"
	apphttp "harcama/internal/http"
	"harcama/internal/log"
	"harcama/internal/metrics"
	"harcama/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()

	logger.Info("Starting harcama",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		"backend", cfg.DataBackend)

	m := metrics.New()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger, m).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	store := cli.InitSession(context.Background(), logger, repo, cfg.SessionStorageKey)

	unsubscribe := store.Subscribe(func(u *core.User) {
		if u == nil {
			logger.Info("Session cleared", log.FieldOperation, log.OpLogout)
			return
		}
		logger.Info("Session started",
			log.FieldOperation, log.OpLogin,
			log.FieldUserID, u.ID.String())
	})
	defer unsubscribe()

	formatter := format.New(cfg.Location(), time.Now)
	client := result.Backend

	srv, err := apphttp.NewServer(":"+cfg.Port, apphttp.Dependencies{
		Session:            store,
		Login:              services.NewLoginService(client, store, logger),
		Dashboard:          services.NewDashboardService(client, client, cfg.RecentLimit, cfg.UpcomingLimit),
		Expenses:           services.NewExpenseService(client, logger, m),
		Subscriptions:      services.NewSubscriptionService(client, logger, m),
		Health:             client,
		Storage:            repo,
		Validator:          forms.NewValidator(cfg.Location()),
		Formatter:          formatter,
		Logger:             logger,
		Metrics:            m,
		DisplayCurrency:    cfg.DisplayCurrency,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
	})
	if err != nil {
		logger.Error("Failed to build HTTP server",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeInternal)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", log.FieldError, err.Error())
			}
		}
		if err := repo.Close(); err != nil {
			logger.Warn("Failed to close SQLite repository", log.FieldError, err.Error())
		}
	})

	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error",
				log.FieldError, err.Error(),
				"port", cfg.Port)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
