package company

import (
	"context"
	"time"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/scan"

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

func (w *Writer) Insert(ctx context.Context, c *Company) error {
	q := psql.Insert(
		im.Into(sqlconfig.TableCompanies, "id", "name", "base_currency"),
		im.Values(psql.Arg(c.ID, c.Name, c.BaseCurrency)),
		im.Returning("created_at"),
	)
	createdAt, err := bob.One(ctx, w.tx, q, scan.SingleColumnMapper[time.Time])
	if err != nil {
		return err
	}
	c.CreatedAt = createdAt
	return nil
}
