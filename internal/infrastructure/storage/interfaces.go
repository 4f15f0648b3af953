package storage

// Repository defines the complete storage interface.
// This interface allows swapping implementations (SQLite, PostgreSQL, etc.)
// and makes testing with mocks straightforward.
type Repository interface {
	SeenRepository
	RunRepository
	Close() error
}

// SeenRepository handles the seen_transactions dedup ledger.
type SeenRepository interface {
	// IsSeen reports whether a remote Venmo transaction id has already
	// been recorded. Seen transactions are never reprocessed.
	IsSeen(remoteID string) bool

	// InsertSeen appends records in a single transaction, all-or-nothing,
	// assigning a fresh local id to each. A record whose DateCreated is
	// zero is stamped with the current time.
	InsertSeen(records []SeenTransaction) error

	// UnmatchedRecords returns records with no Lunch Money association
	// whose age exceeds the cutoff, most recently created first.
	UnmatchedRecords(olderThanDays int) ([]SeenTransaction, error)

	// LinkLunchMoney associates a record with a Lunch Money transaction.
	// Settable exactly once per record: calling again with the same id is
	// a no-op, calling with a different id returns ErrLinkConflict.
	LinkLunchMoney(localID, lunchMoneyID int64) error
}

// RunRepository tracks cashout run invocations.
type RunRepository interface {
	// StartRun records the start of a run and returns the run ID
	StartRun(lookbackDays int, dryRun bool) (int64, error)

	// CompleteRun records the completion of a run
	CompleteRun(runID int64, transfers, recorded, matched, errors int) error
}
