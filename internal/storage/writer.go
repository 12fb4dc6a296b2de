package storage

import (
	"context"

	"github.com/stephenafamo/bob"

	"github.com/carson-networks/ledger-server/internal/storage/account"
	"github.com/carson-networks/ledger-server/internal/storage/banking"
	"github.com/carson-networks/ledger-server/internal/storage/company"
	"github.com/carson-networks/ledger-server/internal/storage/invoice"
	"github.com/carson-networks/ledger-server/internal/storage/journal"
	"github.com/carson-networks/ledger-server/internal/storage/recurring"
)

// Committer ends a transaction. bob.Tx satisfies it.
type Committer interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Writer groups the table writers of one transaction.
type Writer struct {
	Tx        Committer
	Companies company.IWriter
	Accounts  account.IWriter
	Journals  journal.IWriter
	Banking   banking.IWriter
	Invoices  invoice.IWriter
	Recurring recurring.IWriter
}

func NewWriter(tx bob.Tx) *Writer {
	return &Writer{
		Tx:        tx,
		Companies: company.NewWriter(tx),
		Accounts:  account.NewWriter(tx),
		Journals:  journal.NewWriter(tx),
		Banking:   banking.NewWriter(tx),
		Invoices:  invoice.NewWriter(tx),
		Recurring: recurring.NewWriter(tx),
	}
}

func (w *Writer) Commit() error {
	return w.Tx.Commit(context.Background())
}

func (w *Writer) Rollback() error {
	return w.Tx.Rollback(context.Background())
}
