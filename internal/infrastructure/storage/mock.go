package storage

import (
	"fmt"
	"sort"
	"time"
)

// MockRepository is an in-memory implementation of Repository for testing.
// It stores all data in maps and slices, making tests fast and isolated.
type MockRepository struct {
	seen      []SeenTransaction
	runs      map[int64]*mockRun
	nextID    int64
	nextRunID int64

	// Hooks for test assertions
	InsertSeenCalled bool
	LastInserted     []SeenTransaction
	LinkCalled       bool
	StartRunCalled   bool

	// Error injection for testing error paths
	InsertSeenErr error
	UnmatchedErr  error
	LinkErr       error
	StartRunErr   error
}

type mockRun struct {
	id           int64
	lookbackDays int
	dryRun       bool
	transfers    int
	recorded     int
	matched      int
	errors       int
	completed    bool
}

// NewMockRepository creates a new mock repository for testing
func NewMockRepository() *MockRepository {
	return &MockRepository{
		runs:      make(map[int64]*mockRun),
		nextID:    1,
		nextRunID: 1,
	}
}

// Compile-time check that MockRepository implements Repository
var _ Repository = (*MockRepository)(nil)

// Close does nothing for mock
func (m *MockRepository) Close() error {
	return nil
}

// IsSeen reports whether a remote transaction id has been inserted
func (m *MockRepository) IsSeen(remoteID string) bool {
	for _, record := range m.seen {
		if record.TransactionID == remoteID {
			return true
		}
	}
	return false
}

// InsertSeen appends records, enforcing the unique transaction_id constraint.
// Like the SQLite implementation the batch is all-or-nothing.
func (m *MockRepository) InsertSeen(records []SeenTransaction) error {
	m.InsertSeenCalled = true
	m.LastInserted = records
	if m.InsertSeenErr != nil {
		return m.InsertSeenErr
	}

	for _, record := range records {
		if m.IsSeen(record.TransactionID) {
			return fmt.Errorf("duplicate transaction_id %s", record.TransactionID)
		}
	}

	for _, record := range records {
		record.ID = m.nextID
		m.nextID++
		if record.DateCreated.IsZero() {
			record.DateCreated = time.Now().UTC()
		}
		m.seen = append(m.seen, record)
	}
	return nil
}

// UnmatchedRecords returns unlinked records older than the cutoff, newest first
func (m *MockRepository) UnmatchedRecords(olderThanDays int) ([]SeenTransaction, error) {
	if m.UnmatchedErr != nil {
		return nil, m.UnmatchedErr
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays)

	var result []SeenTransaction
	for _, record := range m.seen {
		if record.LunchMoney.IsLinked() {
			continue
		}
		if !record.DateCreated.Before(cutoff) {
			continue
		}
		result = append(result, record)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].DateCreated.After(result[j].DateCreated)
	})

	return result, nil
}

// LinkLunchMoney associates a record with a Lunch Money transaction
func (m *MockRepository) LinkLunchMoney(localID, lunchMoneyID int64) error {
	m.LinkCalled = true
	if m.LinkErr != nil {
		return m.LinkErr
	}

	for i, record := range m.seen {
		if record.ID != localID {
			continue
		}
		if record.LunchMoney.IsLinked() {
			if record.LunchMoney.LunchMoneyID() == lunchMoneyID {
				return nil
			}
			return ErrLinkConflict
		}
		m.seen[i].LunchMoney = LinkedTo(lunchMoneyID)
		return nil
	}

	return fmt.Errorf("seen transaction %d not found", localID)
}

// StartRun creates a new run and returns its ID
func (m *MockRepository) StartRun(lookbackDays int, dryRun bool) (int64, error) {
	m.StartRunCalled = true
	if m.StartRunErr != nil {
		return 0, m.StartRunErr
	}

	id := m.nextRunID
	m.nextRunID++

	m.runs[id] = &mockRun{
		id:           id,
		lookbackDays: lookbackDays,
		dryRun:       dryRun,
	}

	return id, nil
}

// CompleteRun marks a run as complete
func (m *MockRepository) CompleteRun(runID int64, transfers, recorded, matched, errors int) error {
	run, ok := m.runs[runID]
	if !ok {
		return nil
	}

	run.transfers = transfers
	run.recorded = recorded
	run.matched = matched
	run.errors = errors
	run.completed = true

	return nil
}

// Helper methods for test setup

// AddSeen adds a record directly with an assigned id (for test setup)
func (m *MockRepository) AddSeen(record SeenTransaction) SeenTransaction {
	record.ID = m.nextID
	m.nextID++
	if record.DateCreated.IsZero() {
		record.DateCreated = time.Now().UTC()
	}
	m.seen = append(m.seen, record)
	return record
}

// AllSeen returns all stored records (for assertions)
func (m *MockRepository) AllSeen() []SeenTransaction {
	return append([]SeenTransaction(nil), m.seen...)
}
