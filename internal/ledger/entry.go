package ledger

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// SourceType names the kind of document a journal entry was posted from.
type SourceType string

const (
	SourceInvoice  SourceType = "invoice"
	SourceBill     SourceType = "bill"
	SourceExpense  SourceType = "expense"
	SourcePayment  SourceType = "payment"
	SourceManual   SourceType = "manual"
	SourceReversal SourceType = "reversal"
)

// JournalEntry is a balanced, immutable set of lines posted on one date.
type JournalEntry struct {
	ID         uuid.UUID
	CompanyID  uuid.UUID
	Date       time.Time
	SourceType SourceType
	// SourceID is uuid.Nil for manual entries posted without a source document.
	SourceID   uuid.UUID
	Memo       string
	ReversesID uuid.UUID
	CreatedAt  time.Time
	// Currency is the company's base currency. It is not stored with the entry.
	Currency string
	Lines    []Line
}

// Line is one side of a journal entry against a single account.
type Line struct {
	ID          uuid.UUID
	LineNo      int
	AccountID   uuid.UUID
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// Totals returns the summed debits and credits of the entry.
func (e *JournalEntry) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// Validate checks the posting invariants: at least two lines, one side per line,
// no negative amounts and equal debit and credit totals.
func (e *JournalEntry) Validate() error {
	if len(e.Lines) < 2 {
		return NewIntegrityError("journal entry needs at least two lines, has %d", len(e.Lines))
	}
	for i, l := range e.Lines {
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return NewIntegrityError("line %d has a negative amount", i+1)
		}
		if l.Debit.IsZero() == l.Credit.IsZero() {
			return NewIntegrityError("line %d must have exactly one of debit or credit", i+1)
		}
		if l.AccountID == uuid.Nil {
			return NewIntegrityError("line %d has no account", i+1)
		}
	}
	debit, credit := e.Totals()
	if !debit.Equal(credit) {
		return NewIntegrityError("debits (%s) != credits (%s)", debit.String(), credit.String())
	}
	return nil
}

// Reverse builds the correcting entry for e: every line swaps sides.
func Reverse(e *JournalEntry, date time.Time, memo string) (*JournalEntry, error) {
	if e.SourceType == SourceReversal {
		return nil, NewValidationError("journal %s is itself a reversal and cannot be reversed", e.ID)
	}
	if date.IsZero() {
		date = e.Date
	}
	if date.Before(e.Date) {
		return nil, NewValidationError("reversal date %s is before the original entry date %s",
			date.Format(time.DateOnly), e.Date.Format(time.DateOnly))
	}
	if memo == "" {
		memo = "Reversal of " + e.ID.String()
	}

	reversed := &JournalEntry{
		CompanyID:  e.CompanyID,
		Date:       date,
		SourceType: SourceReversal,
		SourceID:   e.ID,
		Memo:       memo,
		ReversesID: e.ID,
		Currency:   e.Currency,
		Lines:      make([]Line, len(e.Lines)),
	}
	for i, l := range e.Lines {
		reversed.Lines[i] = Line{
			LineNo:      i + 1,
			AccountID:   l.AccountID,
			AccountCode: l.AccountCode,
			Debit:       l.Credit,
			Credit:      l.Debit,
			Description: l.Description,
		}
	}
	if err := reversed.Validate(); err != nil {
		return nil, err
	}
	return reversed, nil
}
