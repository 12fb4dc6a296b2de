package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/billing"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage/invoice"
)

// InvoiceService issues one-off invoices.
type InvoiceService struct {
	processor Processor
	readers   Readers
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(processor Processor, readers Readers) *InvoiceService {
	return &InvoiceService{processor: processor, readers: readers}
}

// Invoice is the input for a one-off invoice.
type Invoice struct {
	ClientID  uuid.UUID
	IssueDate time.Time
	// DueDate defaults to IssueDate plus PaymentTermsDays.
	DueDate          time.Time
	PaymentTermsDays int
	TaxRate          decimal.Decimal
	RevenueCode      string
	Items            billing.Items
}

// CreateInvoice stores the invoice and posts its journal entry in one transaction.
func (s *InvoiceService) CreateInvoice(ctx context.Context, companyID uuid.UUID, in Invoice) (*invoice.Invoice, *ledger.JournalEntry, error) {
	action := &actions.CreateInvoice{
		CompanyID:        companyID,
		ClientID:         in.ClientID,
		IssueDate:        in.IssueDate,
		DueDate:          in.DueDate,
		PaymentTermsDays: in.PaymentTermsDays,
		TaxRate:          in.TaxRate,
		RevenueCode:      in.RevenueCode,
		Items:            in.Items,
	}
	if err := s.processor.Process(ctx, action); err != nil {
		return nil, nil, ledger.Classify("InvoiceService.CreateInvoice", err)
	}
	return action.Invoice, action.Entry, nil
}

// GetInvoice returns an invoice or a NotFound error.
func (s *InvoiceService) GetInvoice(ctx context.Context, companyID, invoiceID uuid.UUID) (*invoice.Invoice, error) {
	c, err := requireCompany(ctx, s.readers.Companies, companyID)
	if err != nil {
		return nil, err
	}
	inv, err := s.readers.Invoices.FindByID(ctx, companyID, invoiceID)
	if err != nil {
		return nil, ledger.Classify("invoice.FindByID", err)
	}
	if inv == nil {
		return nil, ledger.NewNotFoundError("invoice %s not found", invoiceID)
	}
	inv.Currency = c.BaseCurrency
	return inv, nil
}
