package recurring

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"

	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

type Writer struct {
	tx bob.Executor
	Reader
}

var _ IWriter = (*Writer)(nil)

func NewWriter(tx bob.Executor) *Writer {
	return &Writer{
		tx: tx,
		Reader: Reader{
			exec: tx,
		},
	}
}

func (w *Writer) Insert(ctx context.Context, p *Profile) error {
	q := psql.Insert(
		im.Into(sqlconfig.TableRecurringProfiles,
			"id", "company_id", "client_id", "frequency", "anchor_day", "next_run_date",
			"tax_rate", "revenue_code", "payment_terms_days", "items", "is_active"),
		im.Values(psql.Arg(
			p.ID, p.CompanyID, p.ClientID, string(p.Interval), p.AnchorDay, p.NextRunDate,
			p.TaxRate, p.RevenueCode, p.PaymentTermsDays, p.Items, p.IsActive,
		)),
	)
	_, err := q.Exec(ctx, w.tx)
	return err
}

// FindByIDForUpdate locks the profile row until the transaction ends.
func (w *Writer) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return w.findOne(ctx,
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
		sm.ForUpdate(),
	)
}

func (w *Writer) Advance(ctx context.Context, id uuid.UUID, next time.Time, ranAt time.Time) error {
	q := psql.Update(
		um.Table(sqlconfig.TableRecurringProfiles),
		um.SetCol("next_run_date").ToArg(next),
		um.SetCol("last_run_at").ToArg(ranAt),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	_, err := q.Exec(ctx, w.tx)
	return err
}
