package invoice

import (
	"context"
	"database/sql"
	"errors"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
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

func (r *Reader) FindByID(ctx context.Context, companyID, id uuid.UUID) (*Invoice, error) {
	q := psql.Select(
		sm.Columns(columns...),
		sm.From(sqlconfig.TableInvoices),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
		sm.Where(psql.Quote("company_id").EQ(psql.Arg(companyID))),
	)
	row, err := bob.One(ctx, r.exec, q, scan.StructMapper[Invoice]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByProfile returns the invoices a recurring profile generated, oldest first.
func (r *Reader) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*Invoice, error) {
	q := psql.Select(
		sm.Columns(columns...),
		sm.From(sqlconfig.TableInvoices),
		sm.Where(psql.Quote("recurring_profile_id").EQ(psql.Arg(profileID))),
		sm.OrderBy("issue_date").Asc(),
	)
	rows, err := bob.All(ctx, r.exec, q, scan.StructMapper[Invoice]())
	if err != nil {
		return nil, err
	}
	result := make([]*Invoice, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}
