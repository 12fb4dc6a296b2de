// Package extract pulls expense fields out of receipt text.
package extract

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Receipt holds the fields found on a receipt. Zero values mean not found.
type Receipt struct {
	Vendor    string
	Date      time.Time
	Total     decimal.Decimal
	TaxAmount decimal.Decimal
	Currency  string
	// Confidence is the share of vendor, date and total that were found.
	Confidence float64
	Source     string
}

// Extractor reads receipt fields from OCR text.
type Extractor interface {
	Extract(ctx context.Context, text string) (*Receipt, error)
}

func confidence(r *Receipt) float64 {
	found := 0
	if r.Vendor != "" {
		found++
	}
	if !r.Date.IsZero() {
		found++
	}
	if r.Total.IsPositive() {
		found++
	}
	return float64(found) / 3
}

// Fallback uses Primary and falls back to Secondary when Primary fails.
type Fallback struct {
	Primary   Extractor
	Secondary Extractor
	Logger    *logrus.Logger
}

func (f *Fallback) Extract(ctx context.Context, text string) (*Receipt, error) {
	r, err := f.Primary.Extract(ctx, text)
	if err == nil {
		return r, nil
	}
	if ctx.Err() != nil {
		return nil, err
	}
	if f.Logger != nil {
		f.Logger.WithError(err).Warn("extract.Fallback.primary")
	}
	return f.Secondary.Extract(ctx, text)
}
