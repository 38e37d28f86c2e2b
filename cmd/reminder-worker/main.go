package main

import (
	"context"
	"os"
	"time"

	"harcama/internal/amqp"
	"harcama/internal/backend"
	"harcama/internal/cli"
	"harcama/internal/log"
	"harcama/internal/metrics"
	"harcama/internal/services"
	"harcama/internal/session"
	"harcama/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()

	logger.Info("Starting reminder-worker",
		log.FieldOperation, log.OpStartup,
		"interval", cfg.ReminderInterval.String(),
		"window", cfg.ReminderWindow.String())

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
	// The web server owns the session; the worker re-reads it every run.
	store := session.New(repo, cfg.SessionStorageKey, logger)

	var publisher services.ReminderPublisher
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(context.Background(), cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client",
				log.FieldError, err.Error(),
				log.FieldErrorType, log.ErrorTypeNetwork)
			os.Exit(1)
		}
		publisher = amqpClient
	} else {
		logger.Info("AMQP_URL not set; reminders will only be logged")
	}

	processor := services.NewReminderProcessor(
		result.Backend,
		store.Reload,
		repo,
		publisher,
		services.DefaultReminderPolicy(cfg.ReminderWindow),
		logger,
		m,
	)
	w := worker.NewReminderWorker(processor, repo, cfg.ReminderInterval, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Warn("Failed to close AMQP client", log.FieldError, err.Error())
			}
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Warn("Backend cleanup failed", log.FieldError, err.Error())
			}
		}
	})

	w.Run(ctx)

	cli.WaitForShutdown(ctx, done)
	if err := repo.Close(); err != nil {
		logger.Warn("Failed to close SQLite repository", log.FieldError, err.Error())
	}
	logger.Info("Worker stopped")
}
