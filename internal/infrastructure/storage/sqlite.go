package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/eshaffer321/venmo-auto-cashout/internal/domain/transaction"
)

// ErrLinkConflict is returned when a seen transaction is already linked to a
// different Lunch Money transaction.
var ErrLinkConflict = errors.New("record already linked to a different lunch money transaction")

// Storage provides SQLite database access for the dedup ledger.
// It implements the Repository interface.
type Storage struct {
	db *sql.DB
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage creates a new storage instance with SQLite database
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Storage{db: db}

	// Run all pending migrations
	if err := s.runMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// IsSeen reports whether a remote Venmo transaction id is already recorded
func (s *Storage) IsSeen(remoteID string) bool {
	var count int
	query := `SELECT COUNT(*) FROM seen_transactions WHERE transaction_id = ?`
	err := s.db.QueryRow(query, remoteID).Scan(&count)
	return err == nil && count > 0
}

// InsertSeen appends all records in one transaction. Either every record is
// committed or none are; a duplicate transaction_id aborts the whole batch.
func (s *Storage) InsertSeen(records []SeenTransaction) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	query := `
		INSERT INTO seen_transactions
		(transaction_type, transaction_id, amount, note, target_actor, date_created)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	for _, record := range records {
		created := record.DateCreated
		if created.IsZero() {
			created = time.Now().UTC()
		}

		_, err := tx.Exec(query,
			string(record.TransactionType),
			record.TransactionID,
			record.AmountCents,
			record.Note,
			record.TargetActor,
			created,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert seen transaction %s: %w", record.TransactionID, err)
		}
	}

	return tx.Commit()
}

// UnmatchedRecords returns seen transactions that have no Lunch Money
// association and whose age exceeds the cutoff, newest first.
func (s *Storage) UnmatchedRecords(olderThanDays int) ([]SeenTransaction, error) {
	query := `
		SELECT id, transaction_type, transaction_id, amount, note, target_actor,
		       lunchmoney_transaction_id, date_created
		FROM seen_transactions
		WHERE
			lunchmoney_transaction_id IS NULL AND
			date_created < datetime('now', ?)
		ORDER BY date_created DESC
	`

	rows, err := s.db.Query(query, fmt.Sprintf("-%d days", olderThanDays))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var records []SeenTransaction
	for rows.Next() {
		record, err := scanSeenTransaction(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// LinkLunchMoney sets the Lunch Money association for a record. The update
// only applies when the row is unlinked or already linked to the same id;
// anything else is a conflict.
func (s *Storage) LinkLunchMoney(localID, lunchMoneyID int64) error {
	query := `
		UPDATE seen_transactions
		SET lunchmoney_transaction_id = ?
		WHERE id = ? AND
		      (lunchmoney_transaction_id IS NULL OR lunchmoney_transaction_id = ?)
	`

	result, err := s.db.Exec(query, lunchMoneyID, localID, lunchMoneyID)
	if err != nil {
		return fmt.Errorf("failed to link lunch money transaction: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	// No row updated: either the record does not exist or it is linked to
	// a different Lunch Money transaction.
	var exists int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM seen_transactions WHERE id = ?`, localID,
	).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("seen transaction %d not found", localID)
	}

	return ErrLinkConflict
}

// GetSeen retrieves a record by remote transaction id. Returns nil when the
// id has not been recorded.
func (s *Storage) GetSeen(remoteID string) (*SeenTransaction, error) {
	query := `
		SELECT id, transaction_type, transaction_id, amount, note, target_actor,
		       lunchmoney_transaction_id, date_created
		FROM seen_transactions
		WHERE transaction_id = ?
	`

	rows, err := s.db.Query(query, remoteID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	if !rows.Next() {
		return nil, rows.Err()
	}

	record, err := scanSeenTransaction(rows)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// StartRun records the start of a cashout run
func (s *Storage) StartRun(lookbackDays int, dryRun bool) (int64, error) {
	query := `
		INSERT INTO cashout_runs (lookback_days, dry_run, status)
		VALUES (?, ?, 'running')
	`

	result, err := s.db.Exec(query, lookbackDays, dryRun)
	if err != nil {
		return 0, err
	}

	return result.LastInsertId()
}

// CompleteRun records the completion of a cashout run
func (s *Storage) CompleteRun(runID int64, transfers, recorded, matched, errors int) error {
	query := `
		UPDATE cashout_runs
		SET completed_at = CURRENT_TIMESTAMP,
		    transfers = ?,
		    recorded = ?,
		    matched = ?,
		    errors = ?,
		    status = CASE WHEN ? > 0 THEN 'completed_with_errors' ELSE 'completed' END
		WHERE id = ?
	`

	_, err := s.db.Exec(query, transfers, recorded, matched, errors, errors, runID)
	return err
}

func scanSeenTransaction(rows *sql.Rows) (SeenTransaction, error) {
	var record SeenTransaction
	var txnType string
	var lunchMoneyID sql.NullInt64

	err := rows.Scan(
		&record.ID,
		&txnType,
		&record.TransactionID,
		&record.AmountCents,
		&record.Note,
		&record.TargetActor,
		&lunchMoneyID,
		&record.DateCreated,
	)
	if err != nil {
		return SeenTransaction{}, err
	}

	record.TransactionType = transaction.Type(txnType)
	if lunchMoneyID.Valid {
		record.LunchMoney = LinkedTo(lunchMoneyID.Int64)
	}

	return record, nil
}
