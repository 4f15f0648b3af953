package storage

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents a database schema migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// allMigrations defines all migrations in order
var allMigrations = []Migration{
	{
		Version: 1,
		Name:    "create_seen_transactions",
		Up:      migration001SeenTransactions,
	},
	{
		Version: 2,
		Name:    "create_cashout_runs",
		Up:      migration002CashoutRuns,
	},
}

// runMigrations executes all pending migrations
func (s *Storage) runMigrations() error {
	// Ensure migrations table exists
	if err := s.ensureMigrationsTable(); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	// Get applied migrations
	applied, err := s.getAppliedMigrations()
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}

	// Run pending migrations
	for _, migration := range allMigrations {
		if applied[migration.Version] {
			continue // Already applied
		}

		log.Printf("Running migration %d: %s", migration.Version, migration.Name)

		// Run migration in transaction
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		// Execute migration
		if err := migration.Up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		// Record migration
		_, err = tx.Exec(`
			INSERT INTO schema_migrations (version, name) VALUES (?, ?)
		`, migration.Version, migration.Name)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		// Commit
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// ensureMigrationsTable creates the schema_migrations table
func (s *Storage) ensureMigrationsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

	_, err := s.db.Exec(query)
	return err
}

// getAppliedMigrations returns a set of applied migration versions
func (s *Storage) getAppliedMigrations() (map[int]bool, error) {
	applied := make(map[int]bool)

	rows, err := s.db.Query(`SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}

	return applied, rows.Err()
}

// migration001SeenTransactions creates the seen_transactions dedup ledger.
// transaction_id is the remote Venmo transaction id and carries a UNIQUE
// constraint: an id already present means "already processed, skip".
func migration001SeenTransactions(db *sql.Tx) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS seen_transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			transaction_type TEXT NOT NULL,
			transaction_id TEXT UNIQUE NOT NULL,
			amount INTEGER NOT NULL,
			note TEXT,
			target_actor TEXT,
			lunchmoney_transaction_id INTEGER,
			date_created TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_seen_transactions_transaction_id
		 ON seen_transactions(transaction_id)`,

		`CREATE INDEX IF NOT EXISTS idx_seen_transactions_unmatched
		 ON seen_transactions(date_created DESC)
		 WHERE lunchmoney_transaction_id IS NULL`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

// migration002CashoutRuns creates the cashout_runs tracking table
func migration002CashoutRuns(db *sql.Tx) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS cashout_runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			completed_at TIMESTAMP,
			lookback_days INTEGER,
			dry_run BOOLEAN DEFAULT 0,
			transfers INTEGER DEFAULT 0,
			recorded INTEGER DEFAULT 0,
			matched INTEGER DEFAULT 0,
			errors INTEGER DEFAULT 0,
			status TEXT DEFAULT 'running'
		)`,

		`CREATE INDEX IF NOT EXISTS idx_cashout_runs_started
		 ON cashout_runs(started_at DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}
