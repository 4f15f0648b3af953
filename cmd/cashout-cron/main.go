package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/eshaffer321/venmo-auto-cashout/internal/adapters/clients"
	"github.com/eshaffer321/venmo-auto-cashout/internal/application/cashout"
	"github.com/eshaffer321/venmo-auto-cashout/internal/infrastructure/config"
	"github.com/eshaffer321/venmo-auto-cashout/internal/infrastructure/storage"
	"github.com/eshaffer321/venmo-auto-cashout/internal/observability"
)

// Scheduled runner for container deployments. Runs a cashout on a cron
// schedule and pings an optional heartbeat URL after each successful run so
// a dead container gets noticed.
func main() {
	_ = godotenv.Load()

	cfg := config.LoadOrEnv()

	logger := observability.NewLogger(cfg.Observability.Logging)

	flush, err := observability.InitSentry(cfg.Observability.SentryDSN, uuid.NewString())
	if err != nil {
		logger.Warn("Failed to initialize sentry", slog.String("error", err.Error()))
	} else {
		defer flush()
	}

	schedule := os.Getenv("SCHEDULE")
	if schedule == "" {
		schedule = "0 6 * * *"
	}
	heartbeatURL := os.Getenv("HEARTBEAT_URL")

	scheduler := cron.New()
	_, err = scheduler.AddFunc(schedule, func() {
		runOnce(cfg, logger, heartbeatURL)
	})
	if err != nil {
		logger.Error("Invalid schedule", slog.String("schedule", schedule), slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Cashout scheduler started", slog.String("schedule", schedule))
	scheduler.Start()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Info("Shutting down")
	<-scheduler.Stop().Done()
}

func runOnce(cfg *config.Config, logger *slog.Logger, heartbeatURL string) {
	runLogger := logger.With(slog.String("run_id", uuid.NewString()))

	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		runLogger.Error("Failed to open storage", slog.String("error", err.Error()))
		return
	}
	defer store.Close()

	c := clients.NewClients(cfg, runLogger)

	var lunch cashout.LunchMoneyLedger
	if c.LunchMoney != nil {
		lunch = c.LunchMoney
	}

	engine := cashout.NewEngine(c.Venmo, lunch, store, runLogger)

	opts := cashout.Options{
		LookbackDays:     cfg.Cashout.LookbackDays,
		CashOutRemainder: cfg.Cashout.CashOutRemainder,
		ImportExpenses:   cfg.LunchMoney.ImportExpenses,
		Enrich:           lunch != nil,
		Category:         cfg.LunchMoney.Category,
		AssetID:          cfg.LunchMoney.AssetID,
	}

	result, err := engine.Run(context.Background(), opts)
	if err != nil {
		observability.CaptureError(err)
		runLogger.Error("Scheduled cashout failed", slog.String("error", err.Error()))
		return
	}

	runLogger.Info("Scheduled cashout complete",
		slog.Int("transfers", result.TransfersIssued),
		slog.Int("recorded", result.RecordsInserted),
		slog.Int("matched", result.MatchedCount),
	)

	ping(heartbeatURL, runLogger)
}

// ping notifies the heartbeat monitor. Failures are logged and ignored: the
// monitor firing because of a missed ping is exactly the behavior we want.
func ping(url string, logger *slog.Logger) {
	if url == "" {
		return
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		logger.Warn("Heartbeat ping failed", slog.String("error", err.Error()))
		return
	}
	resp.Body.Close()
}
