package cashout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eshaffer321/venmo-auto-cashout/internal/adapters/lunchmoney"
	"github.com/eshaffer321/venmo-auto-cashout/internal/domain/matcher"
	"github.com/eshaffer321/venmo-auto-cashout/internal/domain/transaction"
)

// enrich matches unannotated Lunch Money transactions in the configured
// category against recorded Venmo transactions that have no Lunch Money
// association yet, writes payee/notes to the matched entries, and back-fills
// the association. A missing category is logged and skipped, never fatal.
func (e *Engine) enrich(ctx context.Context, result *Result, opts Options) error {
	category, err := e.lunch.CategoryByName(ctx, opts.Category)
	if err != nil {
		if errors.Is(err, lunchmoney.ErrCategoryNotFound) {
			e.logger.Warn("Lunch money category not found, skipping enrichment",
				"category", opts.Category,
			)
			return nil
		}
		return err
	}

	cutoffDays := opts.cutoffDays()
	now := time.Now().UTC()

	entries, err := e.lunch.Transactions(ctx, category.ID, now.AddDate(0, 0, -cutoffDays), now)
	if err != nil {
		return fmt.Errorf("failed to load lunch money transactions: %w", err)
	}

	// Grouped transactions and transactions that already carry a note were
	// handled on a previous run.
	unprocessed := make([]lunchmoney.Transaction, 0, len(entries))
	for _, entry := range entries {
		if entry.IsUnprocessed() {
			unprocessed = append(unprocessed, entry)
		}
	}
	result.UnprocessedEntries = len(unprocessed)

	records, err := e.store.UnmatchedRecords(cutoffDays)
	if err != nil {
		return fmt.Errorf("failed to load unmatched records: %w", err)
	}

	pool := matcher.NewPool(records)

	for _, entry := range unprocessed {
		fp, err := matcher.FingerprintOf(entry)
		if err != nil {
			e.logger.Warn("Skipping lunch money transaction with bad amount",
				"lunchmoney_id", entry.ID,
				"error", err,
			)
			continue
		}

		record, ok := pool.Take(fp)
		if !ok {
			// A lunch money venmo transaction with no recorded
			// counterpart. Should basically never happen; leave it for
			// a future run.
			e.logger.Debug("No matching venmo record",
				"lunchmoney_id", entry.ID,
				"amount", transaction.FormatCents(fp.AmountCents),
				"type", string(fp.Type),
			)
			continue
		}

		if err := e.lunch.UpdateTransaction(ctx, entry.ID, record.TargetActor, record.Note); err != nil {
			return fmt.Errorf("failed to annotate lunch money transaction %d: %w", entry.ID, err)
		}

		if err := e.store.LinkLunchMoney(record.ID, entry.ID); err != nil {
			return fmt.Errorf("failed to link record %d: %w", record.ID, err)
		}

		result.MatchedCount++
		e.logger.Info("Matched lunch money transaction",
			"lunchmoney_id", entry.ID,
			"target_actor", record.TargetActor,
			"amount", transaction.FormatCents(record.AmountCents),
		)
	}

	e.logger.Info("Lunch money enrichment complete",
		"matched", result.MatchedCount,
		"unprocessed", result.UnprocessedEntries,
	)

	return nil
}

// importExpenses inserts this run's newly observed expense transactions into
// Lunch Money under the configured asset. Lunch Money skips inserts whose
// external id already exists, so the skipped count is the difference between
// what we submitted and what came back.
func (e *Engine) importExpenses(ctx context.Context, result *Result, opts Options) error {
	if len(result.Expenses) == 0 {
		return nil
	}

	inserts := make([]lunchmoney.InsertTransaction, 0, len(result.Expenses))
	for _, txn := range result.Expenses {
		inserts = append(inserts, lunchmoney.InsertTransaction{
			Date:       txn.CreatedAt.Format("2006-01-02"),
			Payee:      txn.OtherParty(),
			Amount:     lunchmoney.FormatAmount(txn.AmountCents),
			Notes:      txn.Note,
			AssetID:    opts.AssetID,
			ExternalID: txn.ID,
		})
	}

	ids, err := e.lunch.InsertTransactions(ctx, inserts)
	if err != nil {
		return fmt.Errorf("failed to import expenses: %w", err)
	}

	result.ImportedExpenses = len(ids)
	result.SkippedImports = len(inserts) - len(ids)

	e.logger.Info("Imported expenses into lunch money",
		"submitted", len(inserts),
		"inserted", result.ImportedExpenses,
		"skipped_duplicates", result.SkippedImports,
	)

	return nil
}
