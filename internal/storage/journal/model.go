package journal

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

type journalRow struct {
	ID                uuid.UUID     `db:"id"`
	CompanyID         uuid.UUID     `db:"company_id"`
	EntryDate         time.Time     `db:"entry_date"`
	SourceType        string        `db:"source_type"`
	SourceID          uuid.NullUUID `db:"source_id"`
	Memo              string        `db:"memo"`
	ReversesJournalID uuid.NullUUID `db:"reverses_journal_id"`
	CreatedAt         time.Time     `db:"created_at"`
}

var columns = []any{
	"id", "company_id", "entry_date", "source_type", "source_id",
	"memo", "reverses_journal_id", "created_at",
}

type lineRow struct {
	ID           uuid.UUID       `db:"id"`
	JournalID    uuid.UUID       `db:"journal_id"`
	LineNo       int             `db:"line_no"`
	AccountID    uuid.UUID       `db:"account_id"`
	AccountCode  string          `db:"account_code"`
	DebitAmount  decimal.Decimal `db:"debit_amount"`
	CreditAmount decimal.Decimal `db:"credit_amount"`
	Description  string          `db:"description"`
}

type totalsRow struct {
	AccountID uuid.UUID       `db:"account_id"`
	Debit     decimal.Decimal `db:"debit"`
	Credit    decimal.Decimal `db:"credit"`
}

type movementRow struct {
	JournalID uuid.UUID       `db:"journal_id"`
	EntryDate time.Time       `db:"entry_date"`
	Memo      string          `db:"memo"`
	Amount    decimal.Decimal `db:"amount"`
}

// JournalFilter specifies filters for listing journal entries of one company.
type JournalFilter struct {
	CompanyID       uuid.UUID
	SourceType      *ledger.SourceType
	From            *time.Time
	To              *time.Time
	Limit           int
	Offset          int
	MaxCreationTime *time.Time
}

// JournalCursor identifies a position in a paginated result set and carries the
// limit and maxCreationTime so subsequent pages are consistent.
type JournalCursor struct {
	Position        int
	Limit           int
	MaxCreationTime time.Time
}

// JournalListResult contains a page of entries and an optional next cursor.
type JournalListResult struct {
	Journals   []*ledger.JournalEntry
	NextCursor *JournalCursor
}

// IReader defines the read operations on the journal.
type IReader interface {
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*ledger.JournalEntry, error)
	FindBySource(ctx context.Context, companyID uuid.UUID, sourceType ledger.SourceType, sourceID uuid.UUID) (*ledger.JournalEntry, error)
	List(ctx context.Context, filter *JournalFilter) (*JournalListResult, error)
	AccountTotals(ctx context.Context, companyID uuid.UUID, asOf *time.Time) ([]ledger.AccountTotals, error)
	CashMovements(ctx context.Context, companyID, accountID uuid.UUID, from, to time.Time) ([]ledger.CashMovement, error)
}

// IWriter adds the single write the journal allows: appending a balanced entry.
type IWriter interface {
	IReader
	Insert(ctx context.Context, entry *ledger.JournalEntry) error
}

func rowToEntry(row journalRow) *ledger.JournalEntry {
	return &ledger.JournalEntry{
		ID:         row.ID,
		CompanyID:  row.CompanyID,
		Date:       row.EntryDate,
		SourceType: ledger.SourceType(row.SourceType),
		SourceID:   row.SourceID.UUID,
		Memo:       row.Memo,
		ReversesID: row.ReversesJournalID.UUID,
		CreatedAt:  row.CreatedAt,
	}
}

func rowToLine(row lineRow) ledger.Line {
	return ledger.Line{
		ID:          row.ID,
		LineNo:      row.LineNo,
		AccountID:   row.AccountID,
		AccountCode: row.AccountCode,
		Debit:       row.DebitAmount,
		Credit:      row.CreditAmount,
		Description: row.Description,
	}
}
