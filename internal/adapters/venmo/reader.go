package venmo

import (
	"context"
	"log/slog"
	"time"

	"github.com/eshaffer321/venmo-auto-cashout/internal/domain/transaction"
)

// DefaultSettleDelay is how long the reader waits before each feed fetch.
// Venmo's feed lags its own balance after a payment lands; without the wait
// a fresh payment can be counted in the balance but missing from the feed.
const DefaultSettleDelay = 5 * time.Second

// paymentSource is the slice of the API client the reader needs.
type paymentSource interface {
	Payments(ctx context.Context, userID, beforeID string) ([]Payment, string, error)
}

// Reader loads a bounded window of payments from the Venmo feed and
// normalizes them into the common transaction model. The load is finite:
// pagination stops as soon as a payment older than the window start is seen,
// so the feed is never walked further back than the caller asked for.
type Reader struct {
	source      paymentSource
	settleDelay time.Duration
	logger      *slog.Logger
}

// NewReader creates a reader on top of an API client
func NewReader(source paymentSource, settleDelay time.Duration, logger *slog.Logger) *Reader {
	if settleDelay <= 0 {
		settleDelay = DefaultSettleDelay
	}
	return &Reader{
		source:      source,
		settleDelay: settleDelay,
		logger:      logger,
	}
}

// Load fetches every payment in the window, newest first, as normalized
// transactions. The profile supplies both the feed owner and the username
// used to derive transaction direction.
func (r *Reader) Load(ctx context.Context, profile *Profile, window Window) ([]transaction.Transaction, error) {
	var transactions []transaction.Transaction

	beforeID := ""
	for {
		r.logger.Debug("Waiting before fetching venmo transactions",
			"delay", r.settleDelay.String(),
		)
		if err := sleep(ctx, r.settleDelay); err != nil {
			return nil, err
		}

		payments, next, err := r.source.Payments(ctx, profile.UserID, beforeID)
		if err != nil {
			return nil, err
		}

		r.logger.Debug("Fetched venmo transaction page",
			"count", len(payments),
			"before_id", beforeID,
		)

		for _, payment := range payments {
			created := payment.CreatedAt()

			// The feed is newest first: once we are past the window
			// start there is nothing older worth paginating for.
			if created.Before(window.Start) {
				return transactions, nil
			}
			if !window.Contains(created) {
				continue
			}

			transactions = append(transactions, normalize(payment, profile))
		}

		if next == "" {
			return transactions, nil
		}
		beforeID = next
	}
}

// normalize converts a raw payment into the common model. The payment is
// income when the authenticated user is the payee, an expense otherwise.
func normalize(payment Payment, profile *Profile) transaction.Transaction {
	txnType := transaction.TypeExpense
	if payment.Payee.Username == profile.Username {
		txnType = transaction.TypeIncome
	}

	return transaction.Transaction{
		ID:          payment.ID,
		Type:        txnType,
		CreatedAt:   payment.CreatedAt(),
		Payer:       payment.Payer.DisplayName,
		Payee:       payment.Payee.DisplayName,
		AmountCents: payment.AmountCents,
		Note:        payment.Note,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
