package venmo

import "time"

// Profile is the authenticated user's account state.
type Profile struct {
	UserID       string
	Username     string
	DisplayName  string
	BalanceCents int64
}

// Actor is one side of a payment.
type Actor struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

// Payment is a raw Venmo payment as returned by the transactions feed.
// Amounts are in minor units and always positive; direction is derived from
// which side of the payment the authenticated user is on.
type Payment struct {
	ID          string `json:"id"`
	AmountCents int64  `json:"amount"`
	Note        string `json:"note"`
	DateCreated int64  `json:"date_created"` // unix seconds
	Payer       Actor  `json:"actor"`
	Payee       Actor  `json:"target"`
}

// CreatedAt returns the payment creation time.
func (p Payment) CreatedAt() time.Time {
	return time.Unix(p.DateCreated, 0).UTC()
}

// Window bounds a transaction load: [Start, End). Payments created before
// Start end pagination; payments at or after End are skipped.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether a creation time falls inside the window.
func (w Window) Contains(ts time.Time) bool {
	return !ts.Before(w.Start) && ts.Before(w.End)
}
