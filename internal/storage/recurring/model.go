package recurring

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/billing"
)

// Profile issues an invoice to a client every interval.
type Profile struct {
	ID               uuid.UUID        `db:"id"`
	CompanyID        uuid.UUID        `db:"company_id"`
	ClientID         uuid.UUID        `db:"client_id"`
	Interval         billing.Interval `db:"frequency"`
	AnchorDay        int              `db:"anchor_day"`
	NextRunDate      time.Time        `db:"next_run_date"`
	TaxRate          decimal.Decimal  `db:"tax_rate"`
	RevenueCode      string           `db:"revenue_code"`
	PaymentTermsDays int              `db:"payment_terms_days"`
	Items            billing.Items    `db:"items"`
	IsActive         bool             `db:"is_active"`
	LastRunAt        *time.Time       `db:"last_run_at"`
	CreatedAt        time.Time        `db:"created_at"`
	Currency         string           `db:"-"`
}

var columns = []any{
	"id", "company_id", "client_id", "frequency", "anchor_day", "next_run_date", "tax_rate",
	"revenue_code", "payment_terms_days", "items", "is_active", "last_run_at", "created_at",
}

// IReader defines the read operations on recurring profiles.
type IReader interface {
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*Profile, error)
	ListDue(ctx context.Context, companyID uuid.UUID, today time.Time) ([]*Profile, error)
}

// IWriter defines the write operations on recurring profiles.
type IWriter interface {
	IReader
	Insert(ctx context.Context, p *Profile) error
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Profile, error)
	Advance(ctx context.Context, id uuid.UUID, next time.Time, ranAt time.Time) error
}
