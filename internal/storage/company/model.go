package company

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
)

// Company is a tenant of the ledger. BaseCurrency fixes posting precision.
type Company struct {
	ID           uuid.UUID `db:"id"`
	Name         string    `db:"name"`
	BaseCurrency string    `db:"base_currency"`
	CreatedAt    time.Time `db:"created_at"`
}

// IReader defines the read operations on companies.
type IReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)
	List(ctx context.Context) ([]*Company, error)
}

// IWriter defines the write operations on companies.
type IWriter interface {
	IReader
	Insert(ctx context.Context, c *Company) error
}

var columns = []any{"id", "name", "base_currency", "created_at"}
