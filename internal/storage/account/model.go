package account

import (
	"context"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

type accountRow struct {
	ID            uuid.UUID `db:"id"`
	CompanyID     uuid.UUID `db:"company_id"`
	Code          string    `db:"code"`
	Name          string    `db:"name"`
	AccountType   string    `db:"account_type"`
	NormalBalance string    `db:"normal_balance"`
	IsActive      bool      `db:"is_active"`
	Description   string    `db:"description"`
	CreatedAt     time.Time `db:"created_at"`
}

var columns = []any{
	"id", "company_id", "code", "name", "account_type",
	"normal_balance", "is_active", "description", "created_at",
}

// AccountUpdate carries the mutable fields of an account. Unset fields are left alone.
type AccountUpdate struct {
	Name        omit.Val[string]
	Description omit.Val[string]
	IsActive    omit.Val[bool]
}

// IsEmpty reports whether no field is set.
func (u AccountUpdate) IsEmpty() bool {
	return u.Name.IsUnset() && u.Description.IsUnset() && u.IsActive.IsUnset()
}

// IReader defines the read operations on the chart of accounts.
type IReader interface {
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]ledger.Account, error)
	FindByID(ctx context.Context, companyID, id uuid.UUID) (*ledger.Account, error)
	CountByCompany(ctx context.Context, companyID uuid.UUID) (int, error)
}

// IWriter defines the write operations on the chart of accounts.
type IWriter interface {
	IReader
	Insert(ctx context.Context, a ledger.Account) error
	InsertMissing(ctx context.Context, accounts []ledger.Account) (int64, error)
	Update(ctx context.Context, companyID, id uuid.UUID, update AccountUpdate) error
}

func rowToAccount(row accountRow) ledger.Account {
	return ledger.Account{
		ID:            row.ID,
		CompanyID:     row.CompanyID,
		Code:          row.Code,
		Name:          row.Name,
		Type:          ledger.AccountType(row.AccountType),
		NormalBalance: ledger.NormalBalance(row.NormalBalance),
		IsActive:      row.IsActive,
		Description:   row.Description,
		CreatedAt:     row.CreatedAt,
	}
}
