package main

import (
	"context"
	"flag"
	"os"
	"time"

	"harcama/internal/api"
	"harcama/internal/backend"
	"harcama/internal/cli"
	"harcama/internal/core"
	"harcama/internal/export/sheets"
	"harcama/internal/format"
	"harcama/internal/log"
	"harcama/internal/metrics"
)

func main() {
	email := flag.String("email", "", "export this account instead of the logged-in user")
	header := flag.Bool("header", false, "write a header row before each batch")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall export deadline")
	flag.Parse()

	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()
	logger = logger.WithComponent(log.ComponentExport)

	if err := cfg.ValidateSheets(); err != nil {
		logger.Error("Export configuration invalid",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err.Error())
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger, metrics.New()).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err.Error())
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	user, ok := resolveUser(ctx, logger, result.Backend, cfg.SQLiteDBPath, cfg.SessionStorageKey, *email)
	if !ok {
		os.Exit(1)
	}

	sheetsCfg := sheets.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		ExpensesSheet:      cfg.GoogleExpensesSheet,
		SubscriptionsSheet: cfg.GoogleSubscriptionsSheet,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
	}
	client, err := sheets.NewClient(ctx, sheetsCfg)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}

	var opts []sheets.Option
	if *header {
		opts = append(opts, sheets.WithHeader())
	}
	exporter := sheets.NewExporter(result.Backend, result.Backend, client,
		format.New(cfg.Location(), time.Now), sheetsCfg, logger, opts...)

	res, err := exporter.Export(ctx, user.ID)
	if err != nil {
		logger.Error("Export failed",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeUpstream,
			"expenses_written", res.Expenses)
		os.Exit(1)
	}

	logger.Info("Export written",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"expenses_range", res.ExpensesRange,
		"subscriptions_range", res.SubscriptionsRange)
}

// resolveUser picks the account to export: the -email flag when set,
// otherwise whoever is logged in to the web client.
func resolveUser(ctx context.Context, logger *log.Logger, users api.UserDirectory, dbPath, key, email string) (core.User, bool) {
	if email != "" {
		lookup, err := users.LookupUser(ctx, email)
		if err != nil {
			logger.Error("User lookup failed", log.FieldError, err.Error())
			return core.User{}, false
		}
		if lookup.Status != api.Found {
			logger.Error("No account for email", "email", email)
			return core.User{}, false
		}
		return lookup.User, true
	}

	repo := cli.InitSQLite(logger, dbPath)
	defer repo.Close()
	store := cli.InitSession(ctx, logger, repo, key)
	user, ok := store.User()
	if !ok {
		logger.Error("Nobody is logged in; pass -email or log in through the web client")
	}
	return user, ok
}
