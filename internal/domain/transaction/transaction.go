// Package transaction defines the common representation of a money movement
// shared between the Venmo and Lunch Money sides of the sync.
package transaction

import (
	"fmt"
	"time"
)

// Type describes the direction of a transaction from the account owner's
// perspective.
type Type string

const (
	// TypeIncome is money coming into the account from a counterparty.
	TypeIncome Type = "income"
	// TypeExpense is money paid out of the account to a counterparty.
	TypeExpense Type = "expense"
)

// Transaction is a normalized, ledger-agnostic transaction. AmountCents is
// always positive; direction is carried by Type, never by a negative amount.
type Transaction struct {
	ID          string
	Type        Type
	CreatedAt   time.Time
	Payer       string
	Payee       string
	AmountCents int64
	Note        string
}

// OtherParty returns the counterparty display name: the payer for income,
// the payee for expenses.
func (t Transaction) OtherParty() string {
	if t.Type == TypeIncome {
		return t.Payer
	}
	return t.Payee
}

// FormatCents renders an amount in minor units as a dollar string,
// e.g. 123456 -> "$1,234.56".
func FormatCents(cents int64) string {
	negative := cents < 0
	if negative {
		cents = -cents
	}

	dollars := cents / 100
	remainder := cents % 100

	// Insert thousands separators
	s := fmt.Sprintf("%d", dollars)
	var grouped []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			grouped = append(grouped, ',')
		}
		grouped = append(grouped, c)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%s$%s.%02d", sign, grouped, remainder)
}
