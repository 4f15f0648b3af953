// Package classifier partitions a stream of Venmo transactions into the
// income that fits inside the current account balance, the expenses we want
// to record, and whatever balance is left over.
package classifier

import (
	"github.com/eshaffer321/venmo-auto-cashout/internal/domain/transaction"
)

// Result holds the outcome of classifying a transaction stream.
type Result struct {
	// Income transactions accepted as cashable, in the order supplied.
	Income []transaction.Transaction
	// Expenses is every expense transaction supplied, in order.
	Expenses []transaction.Transaction
	// RemainderCents is the starting balance minus the sum of accepted
	// income amounts.
	RemainderCents int64
}

// Classify walks the transaction stream once, in the order given, and
// decides which income transactions fit inside the remaining balance.
//
// Every supplied transaction is evaluated exactly once. An income
// transaction larger than the remaining balance is excluded without
// stopping the scan, so smaller transactions appearing later in the
// ledger order are still considered. Expenses are bucketed
// unconditionally; they do not consume balance.
func Classify(txns []transaction.Transaction, balanceCents int64) Result {
	result := Result{RemainderCents: balanceCents}

	for _, txn := range txns {
		if txn.Type == transaction.TypeExpense {
			result.Expenses = append(result.Expenses, txn)
			continue
		}

		if txn.AmountCents > result.RemainderCents {
			continue
		}

		result.RemainderCents -= txn.AmountCents
		result.Income = append(result.Income, txn)
	}

	return result
}
