package cashout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/venmo-auto-cashout/internal/adapters/lunchmoney"
	"github.com/eshaffer321/venmo-auto-cashout/internal/domain/transaction"
	"github.com/eshaffer321/venmo-auto-cashout/internal/infrastructure/storage"
)

func agedRecord(ttype transaction.Type, cents int64, ageDays int, actor, note string) storage.SeenTransaction {
	return storage.SeenTransaction{
		TransactionType: ttype,
		TransactionID:   "venmo-" + note,
		AmountCents:     cents,
		Note:            note,
		TargetActor:     actor,
		DateCreated:     time.Now().UTC().AddDate(0, 0, -ageDays),
	}
}

func venmoCategory() []lunchmoney.Category {
	return []lunchmoney.Category{{ID: 7, Name: "Venmo"}}
}

func enrichOptions() Options {
	return Options{Enrich: true, Category: "Venmo"}
}

func TestEngine_Enrich_MatchesAndAnnotates(t *testing.T) {
	store := storage.NewMockRepository()
	store.AddSeen(agedRecord(transaction.TypeIncome, 400, 45, "Alice", "lunch"))

	lm := &fakeLunchMoney{
		categories: venmoCategory(),
		entries: []lunchmoney.Transaction{
			{ID: 900, Date: "2026-08-01", Payee: "Venmo", Amount: "-4.00"},
		},
	}
	engine := NewEngine(nil, lm, store, testLogger())

	result := &Result{}
	require.NoError(t, engine.enrich(context.Background(), result, enrichOptions()))

	assert.Equal(t, 1, result.MatchedCount)
	assert.Equal(t, 1, result.UnprocessedEntries)

	require.Contains(t, lm.updates, int64(900))
	assert.Equal(t, [2]string{"Alice", "lunch"}, lm.updates[900])

	records := store.AllSeen()
	require.Len(t, records, 1)
	assert.True(t, records[0].LunchMoney.IsLinked())
	assert.Equal(t, int64(900), records[0].LunchMoney.LunchMoneyID())
}

func TestEngine_Enrich_MostRecentRecordWins(t *testing.T) {
	store := storage.NewMockRepository()
	store.AddSeen(agedRecord(transaction.TypeIncome, 400, 60, "Old Alice", "older"))
	newer := store.AddSeen(agedRecord(transaction.TypeIncome, 400, 40, "New Alice", "newer"))

	lm := &fakeLunchMoney{
		categories: venmoCategory(),
		entries: []lunchmoney.Transaction{
			{ID: 901, Amount: "-4.00"},
		},
	}
	engine := NewEngine(nil, lm, store, testLogger())

	result := &Result{}
	require.NoError(t, engine.enrich(context.Background(), result, enrichOptions()))

	require.Contains(t, lm.updates, int64(901))
	assert.Equal(t, "New Alice", lm.updates[901][0])

	for _, record := range store.AllSeen() {
		if record.ID == newer.ID {
			assert.True(t, record.LunchMoney.IsLinked())
		} else {
			assert.False(t, record.LunchMoney.IsLinked())
		}
	}
}

func TestEngine_Enrich_CategoryMissingIsNotFatal(t *testing.T) {
	store := storage.NewMockRepository()
	lm := &fakeLunchMoney{} // no categories configured
	engine := NewEngine(nil, lm, store, testLogger())

	result := &Result{}
	require.NoError(t, engine.enrich(context.Background(), result, enrichOptions()))

	assert.Zero(t, result.MatchedCount)
	assert.Empty(t, lm.updates)
}

func TestEngine_Enrich_SkipsProcessedEntries(t *testing.T) {
	store := storage.NewMockRepository()
	store.AddSeen(agedRecord(transaction.TypeIncome, 400, 45, "Alice", "lunch"))

	groupID := int64(5)
	lm := &fakeLunchMoney{
		categories: venmoCategory(),
		entries: []lunchmoney.Transaction{
			{ID: 902, Amount: "-4.00", Notes: "already annotated"},
			{ID: 903, Amount: "-4.00", GroupID: &groupID},
		},
	}
	engine := NewEngine(nil, lm, store, testLogger())

	result := &Result{}
	require.NoError(t, engine.enrich(context.Background(), result, enrichOptions()))

	assert.Zero(t, result.MatchedCount)
	assert.Zero(t, result.UnprocessedEntries)
	assert.Empty(t, lm.updates)
}

func TestEngine_Enrich_RecordConsumedAtMostOnce(t *testing.T) {
	store := storage.NewMockRepository()
	store.AddSeen(agedRecord(transaction.TypeIncome, 400, 45, "Alice", "lunch"))

	lm := &fakeLunchMoney{
		categories: venmoCategory(),
		entries: []lunchmoney.Transaction{
			{ID: 904, Amount: "-4.00"},
			{ID: 905, Amount: "-4.00"},
		},
	}
	engine := NewEngine(nil, lm, store, testLogger())

	result := &Result{}
	require.NoError(t, engine.enrich(context.Background(), result, enrichOptions()))

	// One record, two candidate entries: only the first entry matches
	assert.Equal(t, 1, result.MatchedCount)
	assert.Contains(t, lm.updates, int64(904))
	assert.NotContains(t, lm.updates, int64(905))
}

func TestEngine_Enrich_TypeMustMatch(t *testing.T) {
	store := storage.NewMockRepository()
	store.AddSeen(agedRecord(transaction.TypeExpense, 400, 45, "Bob", "dinner"))

	lm := &fakeLunchMoney{
		categories: venmoCategory(),
		entries: []lunchmoney.Transaction{
			// Negative amount is income; the stored record is an expense
			{ID: 906, Amount: "-4.00"},
		},
	}
	engine := NewEngine(nil, lm, store, testLogger())

	result := &Result{}
	require.NoError(t, engine.enrich(context.Background(), result, enrichOptions()))

	assert.Zero(t, result.MatchedCount)
	assert.Empty(t, lm.updates)
}

func TestEngine_Enrich_RecentRecordsNotCandidates(t *testing.T) {
	store := storage.NewMockRepository()
	store.AddSeen(agedRecord(transaction.TypeIncome, 400, 3, "Alice", "lunch"))

	lm := &fakeLunchMoney{
		categories: venmoCategory(),
		entries: []lunchmoney.Transaction{
			{ID: 907, Amount: "-4.00"},
		},
	}
	engine := NewEngine(nil, lm, store, testLogger())

	result := &Result{}
	require.NoError(t, engine.enrich(context.Background(), result, enrichOptions()))

	assert.Zero(t, result.MatchedCount)
	assert.Empty(t, lm.updates)
}

func TestEngine_Enrich_BadAmountSkipped(t *testing.T) {
	store := storage.NewMockRepository()
	store.AddSeen(agedRecord(transaction.TypeIncome, 400, 45, "Alice", "lunch"))

	lm := &fakeLunchMoney{
		categories: venmoCategory(),
		entries: []lunchmoney.Transaction{
			{ID: 908, Amount: "not-a-number"},
			{ID: 909, Amount: "-4.00"},
		},
	}
	engine := NewEngine(nil, lm, store, testLogger())

	result := &Result{}
	require.NoError(t, engine.enrich(context.Background(), result, enrichOptions()))

	assert.Equal(t, 1, result.MatchedCount)
	assert.Contains(t, lm.updates, int64(909))
}

func TestEngine_Enrich_UpdateFailurePropagates(t *testing.T) {
	store := storage.NewMockRepository()
	store.AddSeen(agedRecord(transaction.TypeIncome, 400, 45, "Alice", "lunch"))

	lm := &fakeLunchMoney{
		categories: venmoCategory(),
		updateErr:  errors.New("api rejected the update"),
		entries: []lunchmoney.Transaction{
			{ID: 910, Amount: "-4.00"},
		},
	}
	engine := NewEngine(nil, lm, store, testLogger())

	result := &Result{}
	err := engine.enrich(context.Background(), result, enrichOptions())
	require.Error(t, err)

	// The record stays unlinked so the next run can retry
	records := store.AllSeen()
	require.Len(t, records, 1)
	assert.False(t, records[0].LunchMoney.IsLinked())
}
