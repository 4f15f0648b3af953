package venmo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/venmo-auto-cashout/internal/domain/transaction"
)

// fakeSource serves canned pages of payments
type fakeSource struct {
	pages   [][]Payment
	cursors []string
	calls   int
	err     error
}

func (f *fakeSource) Payments(ctx context.Context, userID, beforeID string) ([]Payment, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	if f.calls >= len(f.pages) {
		return nil, "", nil
	}
	page := f.pages[f.calls]
	cursor := f.cursors[f.calls]
	f.calls++
	return page, cursor, nil
}

func testProfile() *Profile {
	return &Profile{
		UserID:       "user-1",
		Username:     "me-user",
		DisplayName:  "Me",
		BalanceCents: 10000,
	}
}

func payment(id string, created time.Time, amount int64, payerUser, payeeUser string) Payment {
	return Payment{
		ID:          id,
		AmountCents: amount,
		Note:        "note-" + id,
		DateCreated: created.Unix(),
		Payer:       Actor{Username: payerUser, DisplayName: "Payer " + id},
		Payee:       Actor{Username: payeeUser, DisplayName: "Payee " + id},
	}
}

func testReader(source paymentSource) *Reader {
	return NewReader(source, time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestReader_NormalizesDirection(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	source := &fakeSource{
		pages: [][]Payment{{
			payment("in", now, 500, "alice", "me-user"),
			payment("out", now.Add(-time.Minute), 700, "me-user", "bob"),
		}},
		cursors: []string{""},
	}

	window := Window{Start: now.AddDate(0, 0, -7), End: now.Add(time.Hour)}
	txns, err := testReader(source).Load(context.Background(), testProfile(), window)
	require.NoError(t, err)
	require.Len(t, txns, 2)

	assert.Equal(t, transaction.TypeIncome, txns[0].Type)
	assert.Equal(t, "Payer in", txns[0].Payer)
	assert.Equal(t, int64(500), txns[0].AmountCents)

	assert.Equal(t, transaction.TypeExpense, txns[1].Type)
	assert.Equal(t, "Payee out", txns[1].Payee)
}

func TestReader_StopsAtWindowStart(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	start := now.AddDate(0, 0, -7)

	source := &fakeSource{
		pages: [][]Payment{
			{
				payment("p1", now, 100, "alice", "me-user"),
				payment("p2", start.Add(-time.Hour), 200, "alice", "me-user"),
			},
			// Never reached: pagination must stop at p2
			{
				payment("p3", start.Add(-48*time.Hour), 300, "alice", "me-user"),
			},
		},
		cursors: []string{"cursor-1", ""},
	}

	window := Window{Start: start, End: now.Add(time.Hour)}
	txns, err := testReader(source).Load(context.Background(), testProfile(), window)
	require.NoError(t, err)

	require.Len(t, txns, 1)
	assert.Equal(t, "p1", txns[0].ID)
	assert.Equal(t, 1, source.calls, "should not fetch past the window start")
}

func TestReader_SkipsPaymentsPastWindowEnd(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	end := now.Add(-time.Hour)

	source := &fakeSource{
		pages: [][]Payment{{
			payment("too-new", now, 100, "alice", "me-user"),
			payment("in-window", end.Add(-time.Minute), 200, "alice", "me-user"),
		}},
		cursors: []string{""},
	}

	window := Window{Start: now.AddDate(0, 0, -7), End: end}
	txns, err := testReader(source).Load(context.Background(), testProfile(), window)
	require.NoError(t, err)

	require.Len(t, txns, 1)
	assert.Equal(t, "in-window", txns[0].ID)
}

func TestReader_FollowsPagination(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	source := &fakeSource{
		pages: [][]Payment{
			{payment("p1", now, 100, "alice", "me-user")},
			{payment("p2", now.Add(-time.Hour), 200, "alice", "me-user")},
		},
		cursors: []string{"cursor-1", ""},
	}

	window := Window{Start: now.AddDate(0, 0, -7), End: now.Add(time.Hour)}
	txns, err := testReader(source).Load(context.Background(), testProfile(), window)
	require.NoError(t, err)

	require.Len(t, txns, 2)
	assert.Equal(t, 2, source.calls)
}

func TestReader_PropagatesFetchError(t *testing.T) {
	source := &fakeSource{err: errors.New("venmo is down")}

	window := Window{Start: time.Now().AddDate(0, 0, -7), End: time.Now()}
	_, err := testReader(source).Load(context.Background(), testProfile(), window)
	assert.Error(t, err)
}

func TestReader_ContextCancelledDuringSettle(t *testing.T) {
	source := &fakeSource{}
	reader := NewReader(source, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	window := Window{Start: time.Now().AddDate(0, 0, -7), End: time.Now()}
	_, err := reader.Load(ctx, testProfile(), window)
	assert.ErrorIs(t, err, context.Canceled)
}
