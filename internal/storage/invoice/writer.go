package invoice

import (
	"context"

	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"

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

func (w *Writer) Insert(ctx context.Context, inv *Invoice) error {
	status := inv.Status
	if status == "" {
		status = StatusIssued
	}
	q := psql.Insert(
		im.Into(sqlconfig.TableInvoices,
			"id", "company_id", "client_id", "recurring_profile_id", "issue_date", "due_date",
			"subtotal", "tax_amount", "total", "status", "items", "journal_id"),
		im.Values(psql.Arg(
			inv.ID, inv.CompanyID, inv.ClientID, inv.RecurringProfileID, inv.IssueDate, inv.DueDate,
			inv.Subtotal, inv.TaxAmount, inv.Total, string(status), inv.Items, inv.JournalID,
		)),
	)
	_, err := q.Exec(ctx, w.tx)
	if err != nil {
		return err
	}
	inv.Status = status
	return nil
}
