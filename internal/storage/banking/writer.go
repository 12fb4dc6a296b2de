package banking

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
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

func (w *Writer) InsertConnection(ctx context.Context, c *Connection) error {
	q := psql.Insert(
		im.Into(sqlconfig.TableBankConnections, "id", "company_id", "provider", "name", "external_ref", "account_code"),
		im.Values(psql.Arg(c.ID, c.CompanyID, c.Provider, c.Name, c.ExternalRef, c.AccountCode)),
	)
	_, err := q.Exec(ctx, w.tx)
	return err
}

func (w *Writer) MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error {
	q := psql.Update(
		um.Table(sqlconfig.TableBankConnections),
		um.SetCol("last_synced_at").ToArg(at),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	_, err := q.Exec(ctx, w.tx)
	return err
}

// InsertTransactions stores new statement lines and skips those already imported
// for the same connection and external id. It returns the number of new rows.
func (w *Writer) InsertTransactions(ctx context.Context, txns []*Transaction) (int64, error) {
	if len(txns) == 0 {
		return 0, nil
	}
	mods := []bob.Mod[*dialect.InsertQuery]{
		im.Into(sqlconfig.TableTransactions,
			"id", "company_id", "bank_connection_id", "external_id", "txn_date", "amount", "description"),
	}
	for _, t := range txns {
		mods = append(mods, im.Values(psql.Arg(
			t.ID, t.CompanyID, t.BankConnectionID, t.ExternalID, t.Date, t.Amount, t.Description,
		)))
	}
	mods = append(mods, im.OnConflict("bank_connection_id", "external_id").DoNothing())

	res, err := psql.Insert(mods...).Exec(ctx, w.tx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (w *Writer) FindTransactionForUpdate(ctx context.Context, companyID, id uuid.UUID) (*Transaction, error) {
	return w.findTransaction(ctx, companyID, id, sm.ForUpdate())
}

// MarkReconciled flips the transaction to reconciled. journalID may be uuid.Nil.
func (w *Writer) MarkReconciled(ctx context.Context, id uuid.UUID, journalID uuid.UUID, at time.Time) error {
	q := psql.Update(
		um.Table(sqlconfig.TableTransactions),
		um.SetCol("is_reconciled").ToArg(true),
		um.SetCol("reconciled_at").ToArg(at),
		um.SetCol("journal_id").ToArg(sqlconfig.NullUUID(journalID)),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
		um.Where(psql.Quote("is_reconciled").EQ(psql.Arg(false))),
	)
	_, err := q.Exec(ctx, w.tx)
	return err
}
