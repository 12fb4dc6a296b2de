package ledger

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// PaymentDirection tells whether a payment was received from a client or made to a supplier.
type PaymentDirection string

const (
	PaymentReceived PaymentDirection = "received"
	PaymentMade     PaymentDirection = "made"
)

// SourceDocument carries the fields of an invoice, bill, expense or payment that
// matter for posting.
type SourceDocument struct {
	CompanyID  uuid.UUID
	SourceType SourceType
	SourceID   uuid.UUID
	Date       time.Time
	// Amount is the gross document total, tax included.
	Amount decimal.Decimal
	// TaxAmount and TaxRate are mutually exclusive; TaxRate is a fraction (0.15 for 15%).
	TaxAmount decimal.Decimal
	TaxRate   decimal.Decimal
	// AccountCode overrides the counterpart account of the posting rule.
	AccountCode string
	// BankAccountCode is the settlement account for expenses and payments.
	BankAccountCode string
	Direction       PaymentDirection
	Memo            string
}

func (d SourceDocument) validate(places int32) error {
	if d.CompanyID == uuid.Nil {
		return NewValidationError("company id is required")
	}
	if d.SourceID == uuid.Nil {
		return NewValidationError("source id is required for %s documents", d.SourceType)
	}
	if d.Date.IsZero() {
		return NewValidationError("document date is required")
	}
	if !d.Amount.IsPositive() {
		return NewValidationError("amount must be positive, got %s", d.Amount.String())
	}
	if d.TaxAmount.IsNegative() {
		return NewValidationError("tax amount must not be negative, got %s", d.TaxAmount.String())
	}
	if d.TaxRate.IsNegative() || d.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return NewValidationError("tax rate must be between 0 and 1, got %s", d.TaxRate.String())
	}
	if !HasMaxPlaces(d.Amount, places) || !HasMaxPlaces(d.TaxAmount, places) {
		return NewValidationError("amounts may have at most %d decimal places, got %s and tax %s",
			places, d.Amount.String(), d.TaxAmount.String())
	}
	if !d.TaxAmount.IsZero() && !d.TaxRate.IsZero() {
		return NewValidationError("set either tax amount or tax rate, not both")
	}
	if d.SourceType == SourcePayment {
		if !d.TaxAmount.IsZero() || !d.TaxRate.IsZero() {
			return NewValidationError("payments carry no tax")
		}
		if d.Direction != PaymentReceived && d.Direction != PaymentMade {
			return NewValidationError("payment direction must be %q or %q, got %q", PaymentReceived, PaymentMade, d.Direction)
		}
	}
	return nil
}

// ManualEntry is a journal entry typed in by hand, line by line.
type ManualEntry struct {
	CompanyID uuid.UUID
	Date      time.Time
	Memo      string
	// SourceID is optional; when set it makes re-posting the same manual entry a duplicate.
	SourceID uuid.UUID
	Lines    []ManualLine
}

// ManualLine references its account by code.
type ManualLine struct {
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

func (m ManualEntry) validate(places int32) error {
	if m.CompanyID == uuid.Nil {
		return NewValidationError("company id is required")
	}
	if m.Date.IsZero() {
		return NewValidationError("entry date is required")
	}
	if len(m.Lines) < 2 {
		return NewValidationError("manual entry needs at least two lines, has %d", len(m.Lines))
	}
	for i, l := range m.Lines {
		if l.AccountCode == "" {
			return NewValidationError("line %d has no account code", i+1)
		}
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return NewValidationError("line %d has a negative amount", i+1)
		}
		if l.Debit.IsZero() == l.Credit.IsZero() {
			return NewValidationError("line %d must have exactly one of debit or credit", i+1)
		}
		if !HasMaxPlaces(l.Debit, places) || !HasMaxPlaces(l.Credit, places) {
			return NewValidationError("line %d has more than %d decimal places", i+1, places)
		}
	}
	return nil
}
