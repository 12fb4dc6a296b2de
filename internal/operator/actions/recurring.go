package actions

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/billing"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/recurring"
)

// CreateRecurringProfile schedules an invoice to be issued every interval,
// starting on StartDate.
type CreateRecurringProfile struct {
	CompanyID uuid.UUID
	ClientID  uuid.UUID
	Interval  billing.Interval
	// AnchorDay is the day of month for month based intervals; 0 uses StartDate's day.
	AnchorDay        int
	StartDate        time.Time
	TaxRate          decimal.Decimal
	RevenueCode      string
	PaymentTermsDays int
	Items            billing.Items

	// Set by Perform.
	Profile *recurring.Profile

	IAction
}

func (c *CreateRecurringProfile) Perform(ctx context.Context, writer *storage.Writer) error {
	if c.ClientID == uuid.Nil {
		return ledger.NewValidationError("client id is required")
	}
	if !c.Interval.Valid() {
		return ledger.NewValidationError("unknown interval %q", c.Interval)
	}
	if c.AnchorDay < 0 || c.AnchorDay > 31 {
		return ledger.NewValidationError("anchor day %d out of range", c.AnchorDay)
	}
	if c.StartDate.IsZero() {
		return ledger.NewValidationError("start date is required")
	}
	if c.PaymentTermsDays < 0 {
		return ledger.NewValidationError("payment terms must not be negative")
	}
	if c.TaxRate.IsNegative() || c.TaxRate.GreaterThan(decimal.NewFromInt(1)) {
		return ledger.NewValidationError("tax rate must be between 0 and 1, got %s", c.TaxRate.String())
	}
	if err := c.Items.Validate(); err != nil {
		return ledger.NewValidationError("%s", err.Error())
	}

	company, err := loadCompany(ctx, writer, c.CompanyID)
	if err != nil {
		return err
	}
	code := c.RevenueCode
	if code == "" {
		code = ledger.CodeSalesRevenue
	}
	chart, err := loadChart(ctx, writer, c.CompanyID)
	if err != nil {
		return err
	}
	if acc, ok := chart.ByCode(code); !ok || acc.Type != ledger.AccountTypeRevenue {
		return ledger.NewMappingError("revenue code %s is not a revenue account", code)
	}

	anchor := c.AnchorDay
	if anchor == 0 && c.Interval != billing.IntervalWeekly {
		anchor = c.StartDate.Day()
	}

	p := &recurring.Profile{
		ID:               NewID(),
		CompanyID:        c.CompanyID,
		ClientID:         c.ClientID,
		Interval:         c.Interval,
		AnchorDay:        anchor,
		NextRunDate:      billing.Day(c.StartDate),
		TaxRate:          c.TaxRate,
		RevenueCode:      code,
		PaymentTermsDays: c.PaymentTermsDays,
		Items:            c.Items,
		IsActive:         true,
		Currency:         company.BaseCurrency,
	}
	if err := writer.Recurring.Insert(ctx, p); err != nil {
		return ledger.NewPersistenceError("recurring.Insert", err)
	}
	c.Profile = p
	return nil
}

// RunRecurringProfile issues the invoice for one due run of a profile and
// advances its schedule. The profile row stays locked until the transaction
// ends; a profile that is no longer due when the lock is taken is skipped.
type RunRecurringProfile struct {
	ProfileID uuid.UUID
	Today     time.Time

	// Set by Perform.
	Skipped     bool
	InvoiceID   uuid.UUID
	JournalID   uuid.UUID
	NextRunDate time.Time

	IAction
}

func (r *RunRecurringProfile) Perform(ctx context.Context, writer *storage.Writer) error {
	p, err := writer.Recurring.FindByIDForUpdate(ctx, r.ProfileID)
	if err != nil {
		return ledger.NewPersistenceError("recurring.FindByIDForUpdate", err)
	}
	if p == nil {
		return ledger.NewNotFoundError("recurring profile %s not found", r.ProfileID)
	}
	if !p.IsActive || !billing.IsDue(p.NextRunDate, r.Today) {
		r.Skipped = true
		r.NextRunDate = p.NextRunDate
		return nil
	}

	next, err := billing.NextRunDate(p.NextRunDate, p.Interval, p.AnchorDay)
	if err != nil {
		return ledger.NewConfigurationError("profile %s: %s", p.ID, err.Error())
	}

	inv, entry, err := issueInvoice(ctx, writer, invoiceDraft{
		companyID:   p.CompanyID,
		clientID:    p.ClientID,
		profileID:   p.ID,
		issueDate:   p.NextRunDate,
		termsDays:   p.PaymentTermsDays,
		taxRate:     p.TaxRate,
		revenueCode: p.RevenueCode,
		items:       p.Items,
	})
	if err != nil {
		return err
	}

	if err := writer.Recurring.Advance(ctx, p.ID, next, Now()); err != nil {
		return ledger.NewPersistenceError("recurring.Advance", err)
	}

	r.InvoiceID = inv.ID
	r.JournalID = entry.ID
	r.NextRunDate = next
	return nil
}
