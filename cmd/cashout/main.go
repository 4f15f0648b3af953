package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/eshaffer321/venmo-auto-cashout/internal/adapters/clients"
	"github.com/eshaffer321/venmo-auto-cashout/internal/application/cashout"
	"github.com/eshaffer321/venmo-auto-cashout/internal/cli"
	"github.com/eshaffer321/venmo-auto-cashout/internal/infrastructure/config"
	"github.com/eshaffer321/venmo-auto-cashout/internal/infrastructure/storage"
	"github.com/eshaffer321/venmo-auto-cashout/internal/observability"
)

func main() {
	// Load .env if present; real environment always wins
	_ = godotenv.Load()

	flags := cli.ParseRunFlags()

	cfg := config.LoadOrEnvWithPath(flags.ConfigPath)

	logLevel := cfg.Observability.Logging.Level
	if flags.Verbose {
		logLevel = slog.LevelDebug.String()
	}
	logger := observability.NewLogger(config.LoggingConfig{
		Level:  logLevel,
		Format: cfg.Observability.Logging.Format,
	})

	runID := uuid.NewString()
	logger = logger.With(slog.String("run_id", runID))

	flush, err := observability.InitSentry(cfg.Observability.SentryDSN, runID)
	if err != nil {
		logger.Warn("Failed to initialize sentry", slog.String("error", err.Error()))
	} else {
		defer flush()
	}

	if cfg.GetAPIKey(cfg.Venmo.Token, "VENMO_API_TOKEN") == "" {
		logger.Error("VENMO_API_TOKEN environment variable not set")
		os.Exit(1)
	}

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		logger.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	c := clients.NewClients(cfg, logger)

	var lunch cashout.LunchMoneyLedger
	if c.LunchMoney != nil {
		lunch = c.LunchMoney
	}

	engine := cashout.NewEngine(c.Venmo, lunch, store, logger)

	opts := flags.ToOptions()
	if opts.LookbackDays <= 0 {
		opts.LookbackDays = cfg.Cashout.LookbackDays
	}
	if !opts.CashOutRemainder {
		opts.CashOutRemainder = cfg.Cashout.CashOutRemainder
	}
	if !opts.ImportExpenses {
		opts.ImportExpenses = cfg.LunchMoney.ImportExpenses
	}
	opts.Enrich = lunch != nil
	opts.Category = cfg.LunchMoney.Category
	opts.AssetID = cfg.LunchMoney.AssetID

	result, err := engine.Run(context.Background(), opts)
	if err != nil {
		observability.CaptureError(err)
		logger.Error("Cashout run failed", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "cashout failed: %v\n", err)
		if result != nil {
			cli.Printer{Quiet: flags.Quiet}.PrintRunReport(result)
		}
		os.Exit(1)
	}

	cli.Printer{Quiet: flags.Quiet}.PrintRunReport(result)
}
