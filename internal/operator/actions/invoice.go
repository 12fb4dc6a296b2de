package actions

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/billing"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/invoice"
)

// CreateInvoice issues a one-off invoice and posts its journal entry.
type CreateInvoice struct {
	CompanyID uuid.UUID
	ClientID  uuid.UUID
	IssueDate time.Time
	// DueDate defaults to IssueDate plus PaymentTermsDays.
	DueDate          time.Time
	PaymentTermsDays int
	TaxRate          decimal.Decimal
	RevenueCode      string
	Items            billing.Items

	// Set by Perform.
	Invoice *invoice.Invoice
	Entry   *ledger.JournalEntry

	IAction
}

func (c *CreateInvoice) Perform(ctx context.Context, writer *storage.Writer) error {
	inv, entry, err := issueInvoice(ctx, writer, invoiceDraft{
		companyID:   c.CompanyID,
		clientID:    c.ClientID,
		issueDate:   c.IssueDate,
		dueDate:     c.DueDate,
		termsDays:   c.PaymentTermsDays,
		taxRate:     c.TaxRate,
		revenueCode: c.RevenueCode,
		items:       c.Items,
	})
	if err != nil {
		return err
	}
	c.Invoice = inv
	c.Entry = entry
	return nil
}

type invoiceDraft struct {
	companyID   uuid.UUID
	clientID    uuid.UUID
	profileID   uuid.UUID
	issueDate   time.Time
	dueDate     time.Time
	termsDays   int
	taxRate     decimal.Decimal
	revenueCode string
	items       billing.Items
}

func (d invoiceDraft) validate() error {
	if d.clientID == uuid.Nil {
		return ledger.NewValidationError("client id is required")
	}
	if d.issueDate.IsZero() {
		return ledger.NewValidationError("issue date is required")
	}
	if d.termsDays < 0 {
		return ledger.NewValidationError("payment terms must not be negative")
	}
	if d.taxRate.IsNegative() || d.taxRate.GreaterThan(decimal.NewFromInt(1)) {
		return ledger.NewValidationError("tax rate must be between 0 and 1, got %s", d.taxRate.String())
	}
	if err := d.items.Validate(); err != nil {
		return ledger.NewValidationError("%s", err.Error())
	}
	return nil
}

// issueInvoice posts the invoice journal, then stores the invoice pointing at it.
func issueInvoice(ctx context.Context, writer *storage.Writer, d invoiceDraft) (*invoice.Invoice, *ledger.JournalEntry, error) {
	if err := d.validate(); err != nil {
		return nil, nil, err
	}
	c, err := loadCompany(ctx, writer, d.companyID)
	if err != nil {
		return nil, nil, err
	}
	chart, err := loadChart(ctx, writer, d.companyID)
	if err != nil {
		return nil, nil, err
	}

	totals := billing.ComputeTotals(d.items, d.taxRate, ledger.Places(c.BaseCurrency))
	if !totals.Total.IsPositive() {
		return nil, nil, ledger.NewValidationError("invoice total must be positive, got %s", totals.Total.String())
	}

	issue := billing.Day(d.issueDate)
	due := billing.Day(d.dueDate)
	if d.dueDate.IsZero() {
		due = issue.AddDate(0, 0, d.termsDays)
	}
	if due.Before(issue) {
		return nil, nil, ledger.NewValidationError("due date is before the issue date")
	}

	inv := &invoice.Invoice{
		ID:                 NewID(),
		CompanyID:          d.companyID,
		ClientID:           d.clientID,
		RecurringProfileID: uuid.NullUUID{UUID: d.profileID, Valid: d.profileID != uuid.Nil},
		IssueDate:          issue,
		DueDate:            due,
		Subtotal:           totals.Subtotal,
		TaxAmount:          totals.TaxAmount,
		Total:              totals.Total,
		Status:             invoice.StatusIssued,
		Items:              d.items,
		Currency:           c.BaseCurrency,
	}

	entry, err := ledger.NewBuilder(c.BaseCurrency).Build(ledger.SourceDocument{
		CompanyID:   d.companyID,
		SourceType:  ledger.SourceInvoice,
		SourceID:    inv.ID,
		Date:        issue,
		Amount:      totals.Total,
		TaxAmount:   totals.TaxAmount,
		AccountCode: d.revenueCode,
		Memo:        "Invoice " + inv.ID.String(),
	}, chart)
	if err != nil {
		return nil, nil, err
	}
	if err := postEntry(ctx, writer, entry); err != nil {
		return nil, nil, err
	}

	inv.JournalID = uuid.NullUUID{UUID: entry.ID, Valid: true}
	if err := writer.Invoices.Insert(ctx, inv); err != nil {
		return nil, nil, ledger.NewPersistenceError("invoice.Insert", err)
	}
	return inv, entry, nil
}
