package storage

import (
	"github.com/stephenafamo/bob"

	"github.com/carson-networks/ledger-server/internal/storage/account"
	"github.com/carson-networks/ledger-server/internal/storage/banking"
	"github.com/carson-networks/ledger-server/internal/storage/company"
	"github.com/carson-networks/ledger-server/internal/storage/invoice"
	"github.com/carson-networks/ledger-server/internal/storage/journal"
	"github.com/carson-networks/ledger-server/internal/storage/recurring"
)

type Reader struct {
	Companies *company.Reader
	Accounts  *account.Reader
	Journals  *journal.Reader
	Banking   *banking.Reader
	Invoices  *invoice.Reader
	Recurring *recurring.Reader
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{
		Companies: company.NewReader(exec),
		Accounts:  account.NewReader(exec),
		Journals:  journal.NewReader(exec),
		Banking:   banking.NewReader(exec),
		Invoices:  invoice.NewReader(exec),
		Recurring: recurring.NewReader(exec),
	}
}
