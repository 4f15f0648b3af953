package clients

import (
	"log/slog"
	"time"

	"github.com/eshaffer321/venmo-auto-cashout/internal/adapters/lunchmoney"
	"github.com/eshaffer321/venmo-auto-cashout/internal/adapters/venmo"
	"github.com/eshaffer321/venmo-auto-cashout/internal/infrastructure/config"
)

type Clients struct {
	Venmo      *venmo.Service
	LunchMoney *lunchmoney.Client
}

func NewClients(cfg *config.Config, logger *slog.Logger) *Clients {
	// Get API keys with fallback to alternative env var names
	venmoToken := cfg.GetAPIKey(cfg.Venmo.Token, "VENMO_API_TOKEN")
	lunchMoneyToken := cfg.GetAPIKey(cfg.LunchMoney.Token, "LUNCHMONEY_API_TOKEN", "LUNCHMONEY_TOKEN")

	settleDelay := time.Duration(cfg.Venmo.SettleDelaySeconds) * time.Second

	c := &Clients{
		Venmo: venmo.NewService(venmoToken, settleDelay, logger),
	}

	// Lunch Money is optional: without a token the engine still cashes out,
	// it just skips enrichment and expense imports.
	if lunchMoneyToken != "" {
		c.LunchMoney = lunchmoney.NewClient(lunchMoneyToken)
	}

	return c
}
