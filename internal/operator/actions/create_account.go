package actions

import (
	"context"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

type CreateAccount struct {
	CompanyID   uuid.UUID
	Code        string
	Name        string
	Type        ledger.AccountType
	Description string

	// Set by Perform.
	Account *ledger.Account

	IAction
}

func (c *CreateAccount) Perform(ctx context.Context, writer *storage.Writer) error {
	code := strings.TrimSpace(c.Code)
	name := strings.TrimSpace(c.Name)
	if code == "" || name == "" {
		return ledger.NewValidationError("account code and name are required")
	}
	if !c.Type.Valid() {
		return ledger.NewValidationError("unknown account type %q", c.Type)
	}
	if _, err := loadCompany(ctx, writer, c.CompanyID); err != nil {
		return err
	}

	account := ledger.Account{
		ID:            NewID(),
		CompanyID:     c.CompanyID,
		Code:          code,
		Name:          name,
		Type:          c.Type,
		NormalBalance: c.Type.DefaultNormalBalance(),
		IsActive:      true,
		Description:   c.Description,
	}
	err := writer.Accounts.Insert(ctx, account)
	if sqlconfig.IsUniqueViolation(err, sqlconfig.ConstraintAccountCode) {
		return ledger.NewValidationError("account code %s already exists", code)
	}
	if err != nil {
		return ledger.NewPersistenceError("account.Insert", err)
	}

	c.Account = &account
	return nil
}
