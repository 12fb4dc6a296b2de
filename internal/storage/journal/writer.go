package journal

import (
	"context"
	"time"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/scan"

	"github.com/carson-networks/ledger-server/internal/ledger"
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

// Insert writes the header and every line. Ids must already be assigned. It must
// run inside a transaction: the balance trigger only fires at commit.
func (w *Writer) Insert(ctx context.Context, entry *ledger.JournalEntry) error {
	header := psql.Insert(
		im.Into(sqlconfig.TableJournals,
			"id", "company_id", "entry_date", "source_type", "source_id", "memo", "reverses_journal_id"),
		im.Values(psql.Arg(
			entry.ID,
			entry.CompanyID,
			entry.Date,
			string(entry.SourceType),
			sqlconfig.NullUUID(entry.SourceID),
			entry.Memo,
			sqlconfig.NullUUID(entry.ReversesID),
		)),
		im.Returning("created_at"),
	)
	createdAt, err := bob.One(ctx, w.tx, header, scan.SingleColumnMapper[time.Time])
	if err != nil {
		return err
	}
	entry.CreatedAt = createdAt

	mods := []bob.Mod[*dialect.InsertQuery]{
		im.Into(sqlconfig.TableJournalLines,
			"id", "journal_id", "line_no", "account_id", "debit_amount", "credit_amount", "description"),
	}
	for _, l := range entry.Lines {
		mods = append(mods, im.Values(psql.Arg(
			l.ID, entry.ID, l.LineNo, l.AccountID, l.Debit, l.Credit, l.Description,
		)))
	}
	_, err = psql.Insert(mods...).Exec(ctx, w.tx)
	return err
}
