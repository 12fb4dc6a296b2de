package company

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

// FindByID returns nil when the company does not exist.
func (r *Reader) FindByID(ctx context.Context, id uuid.UUID) (*Company, error) {
	q := psql.Select(
		sm.Columns(columns...),
		sm.From(sqlconfig.TableCompanies),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	row, err := bob.One(ctx, r.exec, q, scan.StructMapper[Company]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Reader) List(ctx context.Context) ([]*Company, error) {
	q := psql.Select(
		sm.Columns(columns...),
		sm.From(sqlconfig.TableCompanies),
		sm.OrderBy("created_at").Asc(),
		sm.OrderBy("id").Asc(),
	)
	rows, err := bob.All(ctx, r.exec, q, scan.StructMapper[Company]())
	if err != nil {
		return nil, err
	}
	result := make([]*Company, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}
