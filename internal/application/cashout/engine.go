package cashout

import (
	"context"
	"fmt"
	"time"

	"github.com/eshaffer321/venmo-auto-cashout/internal/adapters/venmo"
	"github.com/eshaffer321/venmo-auto-cashout/internal/domain/classifier"
	"github.com/eshaffer321/venmo-auto-cashout/internal/domain/transaction"
	"github.com/eshaffer321/venmo-auto-cashout/internal/infrastructure/storage"
)

// Run executes a single cashout: fetch profile and transactions, classify,
// issue transfers, record the dedup ledger, and optionally enrich Lunch
// Money. Profile and transaction fetch failures abort before any mutation.
func (e *Engine) Run(ctx context.Context, opts Options) (*Result, error) {
	result := &Result{DryRun: opts.DryRun}

	e.logger.Debug("Starting cashout run",
		"dry_run", opts.DryRun,
		"lookback_days", opts.LookbackDays,
		"cash_out_remainder", opts.CashOutRemainder,
	)

	profile, err := e.venmo.MyProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load venmo profile: %w", err)
	}
	result.BalanceCents = profile.BalanceCents

	// With no dedup tracking there is nothing to record either, so a zero
	// balance means the whole run is a no-op.
	if profile.BalanceCents == 0 && e.store == nil {
		e.logger.Info("Venmo balance is zero, nothing to do")
		result.NothingToDo = true
		return result, nil
	}

	now := time.Now().UTC()
	window := venmo.Window{
		Start: now.AddDate(0, 0, -opts.LookbackDays),
		End:   now,
	}

	txns, err := e.venmo.LoadTransactions(ctx, profile, window)
	if err != nil {
		return nil, fmt.Errorf("failed to load venmo transactions: %w", err)
	}

	// Drop anything already recorded on a previous run
	fresh := make([]transaction.Transaction, 0, len(txns))
	for _, txn := range txns {
		if e.store != nil && e.store.IsSeen(txn.ID) {
			e.logger.Debug("Skipping already processed transaction",
				"transaction_id", txn.ID,
				"amount", transaction.FormatCents(txn.AmountCents),
			)
			continue
		}
		fresh = append(fresh, txn)
	}

	classified := classifier.Classify(fresh, profile.BalanceCents)
	result.Income = classified.Income
	result.Expenses = classified.Expenses
	result.RemainderCents = classified.RemainderCents

	e.logger.Info("Classified venmo transactions",
		"balance", transaction.FormatCents(profile.BalanceCents),
		"fetched", len(txns),
		"new", len(fresh),
		"income", len(result.Income),
		"expenses", len(result.Expenses),
		"remainder", transaction.FormatCents(result.RemainderCents),
	)

	if len(result.Income) == 0 && len(result.Expenses) == 0 && result.BalanceCents == 0 {
		result.NothingToDo = true
		return result, nil
	}

	// Nothing mutating happens in a dry run; the result still carries the
	// would-be actions for reporting.
	if opts.DryRun {
		e.logger.Info("Dry run, not initiating transfers")
		return result, nil
	}

	var runID int64
	if e.store != nil {
		runID, err = e.store.StartRun(opts.LookbackDays, opts.DryRun)
		if err != nil {
			// Run bookkeeping failure should not block the cashout
			e.logger.Warn("Failed to start run tracking", "error", err)
		}
	}

	transferred, transferErr := e.issueTransfers(ctx, result, opts)

	// Record what actually happened: income we transferred, plus every new
	// expense observed. Transactions whose transfer failed are not
	// recorded, so they are retried on the next run.
	if e.store != nil {
		records := make([]storage.SeenTransaction, 0, len(transferred)+len(result.Expenses))
		for _, txn := range transferred {
			records = append(records, toSeenRecord(txn))
		}
		for _, txn := range result.Expenses {
			records = append(records, toSeenRecord(txn))
		}

		if len(records) > 0 {
			if err := e.store.InsertSeen(records); err != nil {
				e.completeRun(runID, result, 1)
				return result, fmt.Errorf("failed to record seen transactions: %w", err)
			}
			result.RecordsInserted = len(records)
		}
	}

	if transferErr != nil {
		e.completeRun(runID, result, 1)
		return result, transferErr
	}

	if opts.ImportExpenses && opts.AssetID > 0 && e.lunch != nil {
		if err := e.importExpenses(ctx, result, opts); err != nil {
			e.completeRun(runID, result, 1)
			return result, err
		}
	}

	if opts.Enrich && e.lunch != nil && e.store != nil {
		if err := e.enrich(ctx, result, opts); err != nil {
			e.completeRun(runID, result, 1)
			return result, err
		}
	}

	e.completeRun(runID, result, 0)
	return result, nil
}

// issueTransfers initiates one bank transfer per accepted income
// transaction, then the remainder when the policy allows it. On the first
// failure it stops issuing: transfers already confirmed stay confirmed, and
// only those are reported back for recording.
func (e *Engine) issueTransfers(ctx context.Context, result *Result, opts Options) ([]transaction.Transaction, error) {
	var transferred []transaction.Transaction

	for _, txn := range result.Income {
		e.logger.Info("Initiating transfer",
			"amount", transaction.FormatCents(txn.AmountCents),
			"from", txn.OtherParty(),
			"note", txn.Note,
		)

		if err := e.venmo.Transfer(ctx, txn.AmountCents); err != nil {
			return transferred, fmt.Errorf("transfer of %s for transaction %s failed: %w",
				transaction.FormatCents(txn.AmountCents), txn.ID, err)
		}

		transferred = append(transferred, txn)
		result.TransfersIssued++
		result.TransferredCents += txn.AmountCents
	}

	if opts.CashOutRemainder && result.RemainderCents > 0 {
		e.logger.Info("Initiating remainder transfer",
			"amount", transaction.FormatCents(result.RemainderCents),
		)

		if err := e.venmo.Transfer(ctx, result.RemainderCents); err != nil {
			return transferred, fmt.Errorf("remainder transfer of %s failed: %w",
				transaction.FormatCents(result.RemainderCents), err)
		}

		result.TransfersIssued++
		result.TransferredCents += result.RemainderCents
		result.RemainderCashedOut = true
	}

	return transferred, nil
}

func (e *Engine) completeRun(runID int64, result *Result, errs int) {
	if e.store == nil || runID == 0 {
		return
	}
	err := e.store.CompleteRun(runID, result.TransfersIssued, result.RecordsInserted, result.MatchedCount, errs)
	if err != nil {
		e.logger.Warn("Failed to complete run tracking", "error", err)
	}
}

func toSeenRecord(txn transaction.Transaction) storage.SeenTransaction {
	return storage.SeenTransaction{
		TransactionType: txn.Type,
		TransactionID:   txn.ID,
		AmountCents:     txn.AmountCents,
		Note:            txn.Note,
		TargetActor:     txn.OtherParty(),
	}
}
