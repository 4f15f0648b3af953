package venmo

import (
	"context"
	"log/slog"
	"time"

	"github.com/eshaffer321/venmo-auto-cashout/internal/domain/transaction"
)

// Service bundles the API client and the bounded reader behind one type,
// which is what the cashout engine consumes.
type Service struct {
	client *Client
	reader *Reader
}

// NewService creates a Service from an API token
func NewService(token string, settleDelay time.Duration, logger *slog.Logger) *Service {
	client := NewClient(token)
	return &Service{
		client: client,
		reader: NewReader(client, settleDelay, logger),
	}
}

// MyProfile fetches the authenticated user's profile and balance
func (s *Service) MyProfile(ctx context.Context) (*Profile, error) {
	return s.client.MyProfile(ctx)
}

// LoadTransactions loads the normalized transactions in the window
func (s *Service) LoadTransactions(ctx context.Context, profile *Profile, window Window) ([]transaction.Transaction, error) {
	return s.reader.Load(ctx, profile, window)
}

// Transfer initiates a bank transfer out of the Venmo balance
func (s *Service) Transfer(ctx context.Context, amountCents int64) error {
	return s.client.Transfer(ctx, amountCents)
}
