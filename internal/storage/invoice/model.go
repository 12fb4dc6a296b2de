package invoice

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/billing"
)

// Status of an issued invoice.
type Status string

const (
	StatusIssued Status = "issued"
	StatusPaid   Status = "paid"
)

// Invoice is a sales invoice. Its journal entry is posted in the same transaction.
type Invoice struct {
	ID                 uuid.UUID       `db:"id"`
	CompanyID          uuid.UUID       `db:"company_id"`
	ClientID           uuid.UUID       `db:"client_id"`
	RecurringProfileID uuid.NullUUID   `db:"recurring_profile_id"`
	IssueDate          time.Time       `db:"issue_date"`
	DueDate            time.Time       `db:"due_date"`
	Subtotal           decimal.Decimal `db:"subtotal"`
	TaxAmount          decimal.Decimal `db:"tax_amount"`
	Total              decimal.Decimal `db:"total"`
	Status             Status          `db:"status"`
	Items              billing.Items   `db:"items"`
	JournalID          uuid.NullUUID   `db:"journal_id"`
	CreatedAt          time.Time       `db:"created_at"`
	Currency           string          `db:"-"`
}

var columns = []any{
	"id", "company_id", "client_id", "recurring_profile_id", "issue_date", "due_date",
	"subtotal", "tax_amount", "total", "status", "items", "journal_id", "created_at",
}

// IReader defines the read operations on invoices.
type IReader interface {
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*Invoice, error)
	ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*Invoice, error)
}

// IWriter defines the write operations on invoices.
type IWriter interface {
	IReader
	Insert(ctx context.Context, inv *Invoice) error
}
