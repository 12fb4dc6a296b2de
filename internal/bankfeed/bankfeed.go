// Package bankfeed reads bank statement lines from aggregation providers and
// from CSV exports.
package bankfeed

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one statement line as the bank reports it. Amount is signed,
// positive for money in. ExternalID is stable across fetches of the same line.
type Transaction struct {
	ExternalID  string
	Date        time.Time
	Amount      decimal.Decimal
	Description string
}

// Provider fetches statement lines for one bank account between from and to inclusive.
type Provider interface {
	Fetch(ctx context.Context, externalRef string, from, to time.Time) ([]Transaction, error)
}

// ErrNotConfigured is returned when no provider endpoint is set.
var ErrNotConfigured = errors.New("bank feed provider is not configured")

// Disabled is the provider used when no endpoint is configured.
type Disabled struct{}

func (Disabled) Fetch(context.Context, string, time.Time, time.Time) ([]Transaction, error) {
	return nil, ErrNotConfigured
}
