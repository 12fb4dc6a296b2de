package recurring

import (
	"context"
	"database/sql"
	"errors"
	"time"

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

func (r *Reader) FindByID(ctx context.Context, companyID, id uuid.UUID) (*Profile, error) {
	return r.findOne(ctx,
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
		sm.Where(psql.Quote("company_id").EQ(psql.Arg(companyID))),
	)
}

func (r *Reader) findOne(ctx context.Context, mods ...bob.Mod[*dialect.SelectQuery]) (*Profile, error) {
	mods = append([]bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(sqlconfig.TableRecurringProfiles),
	}, mods...)
	row, err := bob.One(ctx, r.exec, psql.Select(mods...), scan.StructMapper[Profile]())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListDue returns active profiles whose next run date is on or before today.
// A nil companyID lists due profiles of every company.
func (r *Reader) ListDue(ctx context.Context, companyID uuid.UUID, today time.Time) ([]*Profile, error) {
	mods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From(sqlconfig.TableRecurringProfiles),
		sm.Where(psql.Quote("is_active").EQ(psql.Arg(true))),
		sm.Where(psql.Quote("next_run_date").LTE(psql.Arg(today))),
		sm.OrderBy("next_run_date").Asc(),
		sm.OrderBy("id").Asc(),
	}
	if companyID != uuid.Nil {
		mods = append(mods, sm.Where(psql.Quote("company_id").EQ(psql.Arg(companyID))))
	}
	rows, err := bob.All(ctx, r.exec, psql.Select(mods...), scan.StructMapper[Profile]())
	if err != nil {
		return nil, err
	}
	result := make([]*Profile, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}
