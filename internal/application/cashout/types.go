package cashout

import (
	"context"
	"log/slog"
	"time"

	"github.com/eshaffer321/venmo-auto-cashout/internal/adapters/lunchmoney"
	"github.com/eshaffer321/venmo-auto-cashout/internal/adapters/venmo"
	"github.com/eshaffer321/venmo-auto-cashout/internal/domain/transaction"
	"github.com/eshaffer321/venmo-auto-cashout/internal/infrastructure/storage"
)

// DefaultCutoffDays is the age a dedup record must reach before the matcher
// considers it, and the lookback window for Lunch Money transactions.
const DefaultCutoffDays = 30

// VenmoLedger is the slice of the Venmo adapter the engine consumes.
type VenmoLedger interface {
	MyProfile(ctx context.Context) (*venmo.Profile, error)
	LoadTransactions(ctx context.Context, profile *venmo.Profile, window venmo.Window) ([]transaction.Transaction, error)
	Transfer(ctx context.Context, amountCents int64) error
}

// LunchMoneyLedger is the slice of the Lunch Money adapter the engine
// consumes.
type LunchMoneyLedger interface {
	CategoryByName(ctx context.Context, name string) (*lunchmoney.Category, error)
	Transactions(ctx context.Context, categoryID int64, start, end time.Time) ([]lunchmoney.Transaction, error)
	UpdateTransaction(ctx context.Context, id int64, payee, notes string) error
	InsertTransactions(ctx context.Context, txns []lunchmoney.InsertTransaction) ([]int64, error)
}

// Options holds configuration for a single run
type Options struct {
	// DryRun reports intended actions without issuing transfers, writing
	// dedup rows, or touching Lunch Money.
	DryRun bool
	// LookbackDays bounds the Venmo transaction window.
	LookbackDays int
	// CashOutRemainder also transfers balance not covered by any tracked
	// income transaction.
	CashOutRemainder bool
	// Enrich runs the Lunch Money matcher after committing the run.
	Enrich bool
	// Category is the Lunch Money category holding Venmo transactions.
	Category string
	// ImportExpenses inserts newly observed expenses into Lunch Money
	// under AssetID.
	ImportExpenses bool
	AssetID        int64
	// CutoffDays overrides DefaultCutoffDays for the matcher when > 0.
	CutoffDays int
}

func (o Options) cutoffDays() int {
	if o.CutoffDays > 0 {
		return o.CutoffDays
	}
	return DefaultCutoffDays
}

// Result holds the outcome of a run
type Result struct {
	DryRun       bool
	NothingToDo  bool
	BalanceCents int64

	// Classification
	Income         []transaction.Transaction
	Expenses       []transaction.Transaction
	RemainderCents int64

	// Actions taken
	TransfersIssued    int
	TransferredCents   int64
	RemainderCashedOut bool
	RecordsInserted    int

	// Lunch Money enrichment
	MatchedCount       int
	UnprocessedEntries int
	ImportedExpenses   int
	SkippedImports     int
}

// Engine orchestrates one cashout run: read, classify, transfer, record,
// enrich. Collaborators are injected so the engine can be tested with
// substitutes.
type Engine struct {
	venmo  VenmoLedger
	lunch  LunchMoneyLedger
	store  storage.Repository
	logger *slog.Logger
}

// NewEngine creates a new cashout engine. lunch and store may be nil; the
// engine then skips enrichment and dedup tracking respectively.
func NewEngine(venmoLedger VenmoLedger, lunch LunchMoneyLedger, store storage.Repository, logger *slog.Logger) *Engine {
	return &Engine{
		venmo:  venmoLedger,
		lunch:  lunch,
		store:  store,
		logger: logger,
	}
}
