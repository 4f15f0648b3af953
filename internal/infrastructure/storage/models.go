package storage

import (
	"time"

	"github.com/eshaffer321/venmo-auto-cashout/internal/domain/transaction"
)

// SeenTransaction is one row of the dedup ledger: a Venmo transaction we have
// already acted on (cashed out, or recorded as an expense). The remote
// transaction id is unique for the lifetime of the database and is the key
// that prevents reprocessing.
type SeenTransaction struct {
	ID              int64
	TransactionType transaction.Type
	TransactionID   string
	AmountCents     int64
	Note            string
	TargetActor     string
	LunchMoney      LedgerLink
	DateCreated     time.Time
}

// LedgerLink is the optional association between a seen transaction and a
// Lunch Money transaction. A row starts unlinked and may be linked exactly
// once; the zero value is the unlinked state.
type LedgerLink struct {
	id     int64
	linked bool
}

// LinkedTo returns a link pointing at the given Lunch Money transaction.
func LinkedTo(lunchMoneyID int64) LedgerLink {
	return LedgerLink{id: lunchMoneyID, linked: true}
}

// IsLinked reports whether the record has been associated with a Lunch Money
// transaction.
func (l LedgerLink) IsLinked() bool {
	return l.linked
}

// LunchMoneyID returns the linked Lunch Money transaction id. Only
// meaningful when IsLinked is true.
func (l LedgerLink) LunchMoneyID() int64 {
	return l.id
}

// Run is one recorded invocation of the cashout engine.
type Run struct {
	ID           int64
	StartedAt    string
	CompletedAt  string
	LookbackDays int
	DryRun       bool
	Transfers    int
	Recorded     int
	Matched      int
	Errors       int
	Status       string
}
