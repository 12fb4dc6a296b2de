package account

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/um"

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

var insertColumns = []string{
	"id", "company_id", "code", "name", "account_type",
	"normal_balance", "is_active", "description",
}

func accountValues(a ledger.Account) bob.Mod[*dialect.InsertQuery] {
	return im.Values(psql.Arg(
		a.ID, a.CompanyID, a.Code, a.Name, string(a.Type),
		string(a.NormalBalance), a.IsActive, a.Description,
	))
}

// Insert adds one account. A duplicate code fails on accounts_company_code_key.
func (w *Writer) Insert(ctx context.Context, a ledger.Account) error {
	q := psql.Insert(
		im.Into(sqlconfig.TableAccounts, insertColumns...),
		accountValues(a),
	)
	_, err := q.Exec(ctx, w.tx)
	return err
}

// InsertMissing adds the accounts whose code the company does not have yet and
// returns how many rows were written.
func (w *Writer) InsertMissing(ctx context.Context, accounts []ledger.Account) (int64, error) {
	if len(accounts) == 0 {
		return 0, nil
	}
	mods := []bob.Mod[*dialect.InsertQuery]{
		im.Into(sqlconfig.TableAccounts, insertColumns...),
	}
	for _, a := range accounts {
		mods = append(mods, accountValues(a))
	}
	mods = append(mods, im.OnConflict("company_id", "code").DoNothing())

	res, err := psql.Insert(mods...).Exec(ctx, w.tx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Update applies the set fields of update. Code and type never change.
func (w *Writer) Update(ctx context.Context, companyID, id uuid.UUID, update AccountUpdate) error {
	if update.IsEmpty() {
		return nil
	}
	mods := []bob.Mod[*dialect.UpdateQuery]{
		um.Table(sqlconfig.TableAccounts),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
		um.Where(psql.Quote("company_id").EQ(psql.Arg(companyID))),
	}
	if v, ok := update.Name.Get(); ok {
		mods = append(mods, um.SetCol("name").ToArg(v))
	}
	if v, ok := update.Description.Get(); ok {
		mods = append(mods, um.SetCol("description").ToArg(v))
	}
	if v, ok := update.IsActive.Get(); ok {
		mods = append(mods, um.SetCol("is_active").ToArg(v))
	}
	_, err := psql.Update(mods...).Exec(ctx, w.tx)
	return err
}
