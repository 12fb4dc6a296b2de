package service

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/bankfeed"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/account"
	"github.com/carson-networks/ledger-server/internal/storage/banking"
	"github.com/carson-networks/ledger-server/internal/storage/company"
	"github.com/carson-networks/ledger-server/internal/storage/invoice"
	"github.com/carson-networks/ledger-server/internal/storage/journal"
	"github.com/carson-networks/ledger-server/internal/storage/recurring"
)

const defaultMatchWindowDays = 7

// Processor runs an action in its own write transaction. *operator.OperatorDelegator implements it.
type Processor interface {
	Process(ctx context.Context, action actions.IAction) error
}

// Readers are the read paths the services use outside of write transactions.
type Readers struct {
	Companies company.IReader
	Accounts  account.IReader
	Journals  journal.IReader
	Banking   banking.IReader
	Invoices  invoice.IReader
	Recurring recurring.IReader
}

// NewReaders exposes the storage readers through their interfaces.
func NewReaders(r *storage.Reader) Readers {
	return Readers{
		Companies: r.Companies,
		Accounts:  r.Accounts,
		Journals:  r.Journals,
		Banking:   r.Banking,
		Invoices:  r.Invoices,
		Recurring: r.Recurring,
	}
}

// Options configures the services that talk to the outside world.
type Options struct {
	BankFeed        bankfeed.Provider
	CSVFormats      *bankfeed.Registry
	MatchWindowDays int
	Logger          *logrus.Logger
}

// Service holds all business logic services.
type Service struct {
	Company        *CompanyService
	Chart          *ChartService
	Journal        *JournalService
	Report         *ReportService
	Reconciliation *ReconciliationService
	BankSync       *BankSyncService
	Invoice        *InvoiceService
	Recurring      *RecurringService
}

// NewService wires every service to the processor and readers.
func NewService(processor Processor, readers Readers, opts Options) *Service {
	if opts.BankFeed == nil {
		opts.BankFeed = bankfeed.Disabled{}
	}
	if opts.CSVFormats == nil {
		opts.CSVFormats = bankfeed.DefaultRegistry()
	}
	if opts.MatchWindowDays <= 0 {
		opts.MatchWindowDays = defaultMatchWindowDays
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	return &Service{
		Company:        NewCompanyService(processor, readers),
		Chart:          NewChartService(processor, readers),
		Journal:        NewJournalService(processor, readers),
		Report:         NewReportService(readers),
		Reconciliation: NewReconciliationService(processor, readers, opts.MatchWindowDays),
		BankSync:       NewBankSyncService(processor, readers, opts.BankFeed, opts.CSVFormats, opts.Logger),
		Invoice:        NewInvoiceService(processor, readers),
		Recurring:      NewRecurringService(processor, readers, opts.Logger),
	}
}

// requireCompany returns NotFound for an unknown company.
func requireCompany(ctx context.Context, companies company.IReader, companyID uuid.UUID) (*company.Company, error) {
	c, err := companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, ledger.Classify("company.FindByID", err)
	}
	if c == nil {
		return nil, ledger.NewNotFoundError("company %s not found", companyID)
	}
	return c, nil
}
