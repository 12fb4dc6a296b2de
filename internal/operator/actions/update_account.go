package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/account"
)

// UpdateAccount changes the descriptive fields of an account. Code and type are fixed.
type UpdateAccount struct {
	CompanyID uuid.UUID
	AccountID uuid.UUID
	Update    account.AccountUpdate

	// Set by Perform.
	Account *ledger.Account

	IAction
}

func (u *UpdateAccount) Perform(ctx context.Context, writer *storage.Writer) error {
	if v, ok := u.Update.Name.Get(); ok && v == "" {
		return ledger.NewValidationError("account name must not be empty")
	}

	existing, err := writer.Accounts.FindByID(ctx, u.CompanyID, u.AccountID)
	if err != nil {
		return ledger.NewPersistenceError("account.FindByID", err)
	}
	if existing == nil {
		return ledger.NewNotFoundError("account %s not found", u.AccountID)
	}

	if err := writer.Accounts.Update(ctx, u.CompanyID, u.AccountID, u.Update); err != nil {
		return ledger.NewPersistenceError("account.Update", err)
	}

	updated, err := writer.Accounts.FindByID(ctx, u.CompanyID, u.AccountID)
	if err != nil {
		return ledger.NewPersistenceError("account.FindByID", err)
	}
	u.Account = updated
	return nil
}
