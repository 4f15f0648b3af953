// Package matcher associates Lunch Money transactions with previously
// recorded Venmo transactions by financial fingerprint.
//
// A fingerprint is the (type, amount) pair. Amounts alone are not unique
// across a 30-day window, so ties are broken by recency: the most recently
// created record wins. This is a deliberate approximation; there is no
// stronger correlation key between the two ledgers.
//
// Example usage:
//
//	pool := matcher.NewPool(records) // newest first
//	fp, err := matcher.FingerprintOf(lmTxn)
//	if record, ok := pool.Take(fp); ok {
//		// record is consumed; annotate lmTxn from it
//	}
package matcher

import (
	"github.com/eshaffer321/venmo-auto-cashout/internal/adapters/lunchmoney"
	"github.com/eshaffer321/venmo-auto-cashout/internal/domain/transaction"
	"github.com/eshaffer321/venmo-auto-cashout/internal/infrastructure/storage"
)

// Fingerprint identifies a transaction by direction and magnitude.
type Fingerprint struct {
	Type        transaction.Type
	AmountCents int64
}

// FingerprintOf derives the fingerprint of a Lunch Money transaction from
// its signed wire amount.
func FingerprintOf(txn lunchmoney.Transaction) (Fingerprint, error) {
	txnType, err := txn.Type()
	if err != nil {
		return Fingerprint{}, err
	}

	cents, err := txn.AmountCents()
	if err != nil {
		return Fingerprint{}, err
	}
	if cents < 0 {
		cents = -cents
	}

	return Fingerprint{Type: txnType, AmountCents: cents}, nil
}

// Pool holds the unmatched dedup records available for matching within one
// run. Records are expected newest first (the order UnmatchedRecords
// returns); Take consumes at most one record per call and each record is
// handed out at most once.
type Pool struct {
	records []storage.SeenTransaction
	taken   map[int64]bool
}

// NewPool creates a pool over the given records
func NewPool(records []storage.SeenTransaction) *Pool {
	return &Pool{
		records: records,
		taken:   make(map[int64]bool),
	}
}

// Take returns the first available record matching the fingerprint and
// removes it from further matching. Returns false when nothing matches.
func (p *Pool) Take(fp Fingerprint) (storage.SeenTransaction, bool) {
	for _, record := range p.records {
		if p.taken[record.ID] {
			continue
		}
		if record.TransactionType != fp.Type || record.AmountCents != fp.AmountCents {
			continue
		}

		p.taken[record.ID] = true
		return record, true
	}

	return storage.SeenTransaction{}, false
}

// Remaining reports how many records are still available.
func (p *Pool) Remaining() int {
	return len(p.records) - len(p.taken)
}
