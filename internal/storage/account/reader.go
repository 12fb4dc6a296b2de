package account

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

type Reader struct {
	exec bob.Executor
}

var _ IReader = (*Reader)(nil)

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

// ListByCompany returns the company's chart ordered by code.
func (r *Reader) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]ledger.Account, error) {
	q := psql.Select(
		sm.Columns(columns...),
		sm.From(sqlconfig.TableAccounts),
		sm.Where(psql.Quote("company_id").EQ(psql.Arg(companyID))),
		sm.OrderBy("code").Asc(),
	)
	rows, err := bob.All(ctx, r.exec, q, scan.StructMapper[accountRow]())
	if err != nil {
		return nil, err
	}
	result := make([]ledger.Account, len(rows))
	for i, row := range rows {
		result[i] = rowToAccount(row)
	}
	return result, nil
}

// FindByID returns nil when no account with id belongs to the company.
func (r *Reader) FindByID(ctx context.Context, companyID, id uuid.UUID) (*ledger.Account, error) {
	q := psql.Select(
		sm.Columns(columns...),
		sm.From(sqlconfig.TableAccounts),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
		sm.Where(psql.Quote("company_id").EQ(psql.Arg(companyID))),
	)
	row, err := bob.One(ctx, r.exec, q, scan.StructMapper[accountRow]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a := rowToAccount(row)
	return &a, nil
}

func (r *Reader) CountByCompany(ctx context.Context, companyID uuid.UUID) (int, error) {
	q := psql.Select(
		sm.Columns(psql.Raw("count(*)")),
		sm.From(sqlconfig.TableAccounts),
		sm.Where(psql.Quote("company_id").EQ(psql.Arg(companyID))),
	)
	return bob.One(ctx, r.exec, q, scan.SingleColumnMapper[int])
}
