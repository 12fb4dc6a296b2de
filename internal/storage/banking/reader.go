package banking

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

type Reader struct {
	exec bob.Executor
}

var _ IReader = (*Reader)(nil)

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func (r *Reader) FindConnection(ctx context.Context, companyID, id uuid.UUID) (*Connection, error) {
	q := psql.Select(
		sm.Columns(connectionColumns...),
		sm.From(sqlconfig.TableBankConnections),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
		sm.Where(psql.Quote("company_id").EQ(psql.Arg(companyID))),
	)
	row, err := bob.One(ctx, r.exec, q, scan.StructMapper[Connection]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Reader) ListConnections(ctx context.Context, companyID uuid.UUID) ([]*Connection, error) {
	q := psql.Select(
		sm.Columns(connectionColumns...),
		sm.From(sqlconfig.TableBankConnections),
		sm.Where(psql.Quote("company_id").EQ(psql.Arg(companyID))),
		sm.OrderBy("created_at").Asc(),
	)
	rows, err := bob.All(ctx, r.exec, q, scan.StructMapper[Connection]())
	if err != nil {
		return nil, err
	}
	result := make([]*Connection, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}

func (r *Reader) FindTransaction(ctx context.Context, companyID, id uuid.UUID) (*Transaction, error) {
	return r.findTransaction(ctx, companyID, id)
}

func (r *Reader) findTransaction(ctx context.Context, companyID, id uuid.UUID, extra ...bob.Mod[*dialect.SelectQuery]) (*Transaction, error) {
	mods := append([]bob.Mod[*dialect.SelectQuery]{
		sm.Columns(transactionColumns...),
		sm.From(sqlconfig.TableTransactions),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
		sm.Where(psql.Quote("company_id").EQ(psql.Arg(companyID))),
	}, extra...)
	row, err := bob.One(ctx, r.exec, psql.Select(mods...), scan.StructMapper[Transaction]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListUnreconciled returns the company's open bank transactions, oldest first.
func (r *Reader) ListUnreconciled(ctx context.Context, companyID uuid.UUID) ([]*Transaction, error) {
	q := psql.Select(
		sm.Columns(transactionColumns...),
		sm.From(sqlconfig.TableTransactions),
		sm.Where(psql.Quote("company_id").EQ(psql.Arg(companyID))),
		sm.Where(psql.Quote("is_reconciled").EQ(psql.Arg(false))),
		sm.OrderBy("txn_date").Asc(),
		sm.OrderBy("id").Asc(),
	)
	rows, err := bob.All(ctx, r.exec, q, scan.StructMapper[Transaction]())
	if err != nil {
		return nil, err
	}
	result := make([]*Transaction, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}
