package lunchmoney

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/venmo-auto-cashout/internal/domain/transaction"
)

// Category is a Lunch Money transaction category.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Transaction is a Lunch Money transaction as returned by the API. Amounts
// come over the wire as decimal strings ("12.3400"); sign is Lunch Money's
// convention: positive is a debit out of the account, negative a credit in.
type Transaction struct {
	ID      int64  `json:"id"`
	Date    string `json:"date"`
	Payee   string `json:"payee"`
	Amount  string `json:"amount"`
	Notes   string `json:"notes"`
	GroupID *int64 `json:"group_id"`
}

// IsUnprocessed reports whether the transaction is still waiting for
// enrichment: not part of a transaction group, and no notes yet. A note is
// the signal that a transaction was already annotated on a past run.
func (t Transaction) IsUnprocessed() bool {
	return t.GroupID == nil && t.Notes == ""
}

// AmountCents parses the wire amount into signed minor units.
func (t Transaction) AmountCents() (int64, error) {
	amount, err := decimal.NewFromString(t.Amount)
	if err != nil {
		return 0, fmt.Errorf("failed to parse amount %q: %w", t.Amount, err)
	}
	return amount.Shift(2).Round(0).IntPart(), nil
}

// Type derives the transaction direction from the sign of the amount, from
// the account owner's perspective: a positive (debit) amount is an expense,
// a negative (credit) amount is income. This is pinned to Lunch Money's
// default sign convention; accounts configured with "debit as negative"
// would need the mapping flipped.
func (t Transaction) Type() (transaction.Type, error) {
	cents, err := t.AmountCents()
	if err != nil {
		return "", err
	}
	if cents > 0 {
		return transaction.TypeExpense, nil
	}
	return transaction.TypeIncome, nil
}

// InsertTransaction is a new transaction to create in Lunch Money.
// ExternalID is the remote Venmo transaction id; Lunch Money skips inserts
// whose external id already exists on the asset, so resubmitting is safe.
type InsertTransaction struct {
	Date       string `json:"date"`
	Payee      string `json:"payee"`
	Amount     string `json:"amount"`
	Notes      string `json:"notes,omitempty"`
	AssetID    int64  `json:"asset_id"`
	ExternalID string `json:"external_id"`
}

// FormatAmount renders minor units as a Lunch Money wire amount,
// e.g. -1234 -> "-12.34".
func FormatAmount(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
