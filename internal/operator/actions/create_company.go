package actions

import (
	"context"
	"strings"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/company"
)

// CreateCompany registers a company and seeds its default chart in the same transaction.
type CreateCompany struct {
	Name         string
	BaseCurrency string

	// Set by Perform.
	Company  *company.Company
	Accounts int64

	IAction
}

func (c *CreateCompany) Perform(ctx context.Context, writer *storage.Writer) error {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return ledger.NewValidationError("company name is required")
	}
	currency := strings.ToUpper(strings.TrimSpace(c.BaseCurrency))
	if !ledger.KnownCurrency(currency) {
		return ledger.NewValidationError("unknown currency %q", c.BaseCurrency)
	}

	row := &company.Company{
		ID:           NewID(),
		Name:         name,
		BaseCurrency: currency,
	}
	if err := writer.Companies.Insert(ctx, row); err != nil {
		return ledger.NewPersistenceError("company.Insert", err)
	}

	n, err := writer.Accounts.InsertMissing(ctx, ledger.DefaultChart(row.ID, NewID))
	if err != nil {
		return ledger.NewPersistenceError("account.InsertMissing", err)
	}

	c.Company = row
	c.Accounts = n
	return nil
}
