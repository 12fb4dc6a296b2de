package journal

import (
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/handlers/params"
	"github.com/carson-networks/ledger-server/internal/ledger"
)

// Line is the API model for one journal line.
type Line struct {
	LineNo      int    `json:"lineNo"`
	AccountID   string `json:"accountID"`
	AccountCode string `json:"accountCode"`
	Debit       string `json:"debit" doc:"Decimal debit amount, 0 when the line is a credit"`
	Credit      string `json:"credit" doc:"Decimal credit amount, 0 when the line is a debit"`
	Description string `json:"description,omitempty"`
}

// JournalEntry is the API response model for a posted entry.
type JournalEntry struct {
	ID          string `json:"id" doc:"Journal UUID"`
	CompanyID   string `json:"companyID"`
	Date        string `json:"date" format:"date"`
	SourceType  string `json:"sourceType" doc:"invoice, bill, expense, payment, manual or reversal"`
	SourceID    string `json:"sourceID,omitempty" doc:"Posted document, absent for manual entries without one"`
	Memo        string `json:"memo,omitempty"`
	ReversesID  string `json:"reversesID,omitempty" doc:"Entry this one reverses"`
	CreatedAt   string `json:"createdAt" format:"date-time"`
	TotalDebit  string `json:"totalDebit"`
	TotalCredit string `json:"totalCredit"`
	Lines       []Line `json:"lines,omitempty" doc:"Lines ordered by lineNo, absent in listings"`
}

func optionalID(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

// ToJournalEntry converts a ledger entry to its API model.
func ToJournalEntry(e *ledger.JournalEntry) JournalEntry {
	debit, credit := e.Totals()
	out := JournalEntry{
		ID:          e.ID.String(),
		CompanyID:   e.CompanyID.String(),
		Date:        params.FormatDate(e.Date),
		SourceType:  string(e.SourceType),
		SourceID:    optionalID(e.SourceID),
		Memo:        e.Memo,
		ReversesID:  optionalID(e.ReversesID),
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
		TotalDebit:  ledger.FormatDecimal(debit, e.Currency),
		TotalCredit: ledger.FormatDecimal(credit, e.Currency),
	}
	for _, l := range e.Lines {
		out.Lines = append(out.Lines, Line{
			LineNo:      l.LineNo,
			AccountID:   l.AccountID.String(),
			AccountCode: l.AccountCode,
			Debit:       ledger.FormatDecimal(l.Debit, e.Currency),
			Credit:      ledger.FormatDecimal(l.Credit, e.Currency),
			Description: l.Description,
		})
	}
	return out
}

// EntryOutput is the Huma output for a single entry.
type EntryOutput struct {
	Status int
	Body   JournalEntry
}
