package cli

import (
	"fmt"

	"github.com/eshaffer321/venmo-auto-cashout/internal/application/cashout"
	"github.com/eshaffer321/venmo-auto-cashout/internal/domain/transaction"
)

// Printer writes the human readable run report. In quiet mode nothing is
// printed unless the run actually did something, which keeps cron mails
// empty on idle days.
type Printer struct {
	Quiet bool
}

// PrintRunReport prints the outcome of a cashout run
func (p Printer) PrintRunReport(result *cashout.Result) {
	if p.Quiet && result.TransfersIssued == 0 && result.RecordsInserted == 0 && len(result.Income) == 0 {
		return
	}

	if result.DryRun {
		fmt.Println("Dry run: no transfers will be made")
	}

	fmt.Printf("You have a balance of %s\n", transaction.FormatCents(result.BalanceCents))

	if result.NothingToDo {
		fmt.Println("Nothing to do")
		return
	}

	for _, txn := range result.Income {
		fmt.Printf(" -> Transfer: %s -- %s (%s)\n",
			transaction.FormatCents(txn.AmountCents),
			txn.OtherParty(),
			txn.Note)
	}

	for _, txn := range result.Expenses {
		fmt.Printf(" -> Expense:  %s -- %s (%s)\n",
			transaction.FormatCents(txn.AmountCents),
			txn.OtherParty(),
			txn.Note)
	}

	if result.RemainderCents > 0 {
		if result.RemainderCashedOut {
			fmt.Printf(" -> Transfer: %s -- remaining balance\n",
				transaction.FormatCents(result.RemainderCents))
		} else {
			fmt.Printf(" -> NOT transferring remaining %s\n",
				transaction.FormatCents(result.RemainderCents))
		}
	}

	if result.TransfersIssued > 0 {
		fmt.Printf("\nIssued %d transfer(s) totaling %s\n",
			result.TransfersIssued,
			transaction.FormatCents(result.TransferredCents))
	}

	if result.MatchedCount > 0 || result.UnprocessedEntries > 0 {
		fmt.Printf("Lunch Money: matched %d of %d unprocessed transaction(s)\n",
			result.MatchedCount,
			result.UnprocessedEntries)
	}

	if result.ImportedExpenses > 0 || result.SkippedImports > 0 {
		fmt.Printf("Lunch Money: imported %d expense(s), %d duplicate(s) skipped\n",
			result.ImportedExpenses,
			result.SkippedImports)
	}
}
