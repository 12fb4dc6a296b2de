package banking

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// Connection links a company to a bank feed. AccountCode is the ledger cash
// account the feed mirrors.
type Connection struct {
	ID           uuid.UUID  `db:"id"`
	CompanyID    uuid.UUID  `db:"company_id"`
	Provider     string     `db:"provider"`
	Name         string     `db:"name"`
	ExternalRef  string     `db:"external_ref"`
	AccountCode  string     `db:"account_code"`
	LastSyncedAt *time.Time `db:"last_synced_at"`
	CreatedAt    time.Time  `db:"created_at"`
}

// Transaction is an imported bank statement line. Amount is signed: positive
// for money in.
type Transaction struct {
	ID               uuid.UUID       `db:"id"`
	CompanyID        uuid.UUID       `db:"company_id"`
	BankConnectionID uuid.UUID       `db:"bank_connection_id"`
	ExternalID       string          `db:"external_id"`
	Date             time.Time       `db:"txn_date"`
	Amount           decimal.Decimal `db:"amount"`
	Description      string          `db:"description"`
	IsReconciled     bool            `db:"is_reconciled"`
	ReconciledAt     *time.Time      `db:"reconciled_at"`
	JournalID        uuid.NullUUID   `db:"journal_id"`
	CreatedAt        time.Time       `db:"created_at"`
	// Currency is the company's base currency, filled in by the service layer.
	Currency string `db:"-"`
}

var connectionColumns = []any{
	"id", "company_id", "provider", "name", "external_ref", "account_code", "last_synced_at", "created_at",
}

var transactionColumns = []any{
	"id", "company_id", "bank_connection_id", "external_id", "txn_date", "amount",
	"description", "is_reconciled", "reconciled_at", "journal_id", "created_at",
}

// IReader defines the read operations on bank connections and transactions.
type IReader interface {
	FindConnection(ctx context.Context, companyID, id uuid.UUID) (*Connection, error)
	ListConnections(ctx context.Context, companyID uuid.UUID) ([]*Connection, error)
	FindTransaction(ctx context.Context, companyID, id uuid.UUID) (*Transaction, error)
	ListUnreconciled(ctx context.Context, companyID uuid.UUID) ([]*Transaction, error)
}

// IWriter defines the write operations on bank connections and transactions.
type IWriter interface {
	IReader
	InsertConnection(ctx context.Context, c *Connection) error
	MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error
	InsertTransactions(ctx context.Context, txns []*Transaction) (int64, error)
	FindTransactionForUpdate(ctx context.Context, companyID, id uuid.UUID) (*Transaction, error)
	MarkReconciled(ctx context.Context, id uuid.UUID, journalID uuid.UUID, at time.Time) error
}
