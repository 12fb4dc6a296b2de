package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// SeedChart installs the default chart for a company that has no accounts yet.
// A company with any account is left untouched.
type SeedChart struct {
	CompanyID uuid.UUID

	// Set by Perform.
	Seeded   bool
	Accounts int64

	IAction
}

func (s *SeedChart) Perform(ctx context.Context, writer *storage.Writer) error {
	if _, err := loadCompany(ctx, writer, s.CompanyID); err != nil {
		return err
	}

	count, err := writer.Accounts.CountByCompany(ctx, s.CompanyID)
	if err != nil {
		return ledger.NewPersistenceError("account.CountByCompany", err)
	}
	if count > 0 {
		return nil
	}

	// A concurrent seed of the same company inserts nothing here.
	n, err := writer.Accounts.InsertMissing(ctx, ledger.DefaultChart(s.CompanyID, NewID))
	if err != nil {
		return ledger.NewPersistenceError("account.InsertMissing", err)
	}
	s.Seeded = n > 0
	s.Accounts = n
	return nil
}
