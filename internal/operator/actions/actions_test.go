package actions

import (
	"context"
	"testing"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage/account"
	"github.com/carson-networks/ledger-server/internal/storage/storagetest"
)

// run performs action in its own transaction the way the operator does.
func run(t *testing.T, mem *storagetest.Memory, action IAction) error {
	t.Helper()
	ctx := context.Background()
	writer, err := mem.Write(ctx)
	require.NoError(t, err)
	if err := action.Perform(ctx, writer); err != nil {
		require.NoError(t, writer.Rollback())
		return err
	}
	require.NoError(t, writer.Commit())
	return nil
}

func newCompany(t *testing.T, mem *storagetest.Memory, currency string) uuid.UUID {
	t.Helper()
	create := &CreateCompany{Name: "Acme Ltd", BaseCurrency: currency}
	require.NoError(t, run(t, mem, create))
	return create.Company.ID
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var day1 = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

// -- CreateCompany tests --

func TestCreateCompany_SeedsChart(t *testing.T) {
	mem := storagetest.NewMemory()
	create := &CreateCompany{Name: "  Acme Ltd ", BaseCurrency: "usd"}
	require.NoError(t, run(t, mem, create))

	assert.Equal(t, "Acme Ltd", create.Company.Name)
	assert.Equal(t, "USD", create.Company.BaseCurrency)
	assert.Equal(t, int64(28), create.Accounts)

	accounts, err := mem.Accounts().ListByCompany(context.Background(), create.Company.ID)
	require.NoError(t, err)
	assert.Len(t, accounts, 28)
	assert.Equal(t, "1000", accounts[0].Code)
}

func TestCreateCompany_Validation(t *testing.T) {
	mem := storagetest.NewMemory()

	err := run(t, mem, &CreateCompany{Name: "", BaseCurrency: "USD"})
	assert.ErrorIs(t, err, ledger.ErrValidation)

	err = run(t, mem, &CreateCompany{Name: "Acme", BaseCurrency: "ZZZ"})
	assert.ErrorIs(t, err, ledger.ErrValidation)
	assert.Equal(t, 2, mem.Rollbacks)
}

// -- SeedChart tests --

func TestSeedChart_Idempotent(t *testing.T) {
	mem := storagetest.NewMemory()
	companyID := newCompany(t, mem, "USD")

	seed := &SeedChart{CompanyID: companyID}
	require.NoError(t, run(t, mem, seed))
	assert.False(t, seed.Seeded)
	assert.Zero(t, seed.Accounts)

	n, err := mem.Accounts().CountByCompany(context.Background(), companyID)
	require.NoError(t, err)
	assert.Equal(t, 28, n)
}

func TestSeedChart_UnknownCompany(t *testing.T) {
	mem := storagetest.NewMemory()
	err := run(t, mem, &SeedChart{CompanyID: uuid.Must(uuid.NewV7())})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

// -- CreateAccount / UpdateAccount tests --

func TestCreateAccount_DerivesNormalBalance(t *testing.T) {
	mem := storagetest.NewMemory()
	companyID := newCompany(t, mem, "USD")

	create := &CreateAccount{CompanyID: companyID, Code: "6800", Name: "Software", Type: ledger.AccountTypeExpense}
	require.NoError(t, run(t, mem, create))
	assert.Equal(t, ledger.NormalDebit, create.Account.NormalBalance)
	assert.True(t, create.Account.IsActive)

	create = &CreateAccount{CompanyID: companyID, Code: "2600", Name: "Deferred Revenue", Type: ledger.AccountTypeLiability}
	require.NoError(t, run(t, mem, create))
	assert.Equal(t, ledger.NormalCredit, create.Account.NormalBalance)
}

func TestCreateAccount_DuplicateCode(t *testing.T) {
	mem := storagetest.NewMemory()
	companyID := newCompany(t, mem, "USD")

	err := run(t, mem, &CreateAccount{CompanyID: companyID, Code: "1000", Name: "Other bank", Type: ledger.AccountTypeAsset})
	assert.ErrorIs(t, err, ledger.ErrValidation)
	assert.Contains(t, err.Error(), "already exists")
}

func TestCreateAccount_InvalidType(t *testing.T) {
	mem := storagetest.NewMemory()
	companyID := newCompany(t, mem, "USD")

	err := run(t, mem, &CreateAccount{CompanyID: companyID, Code: "9000", Name: "X", Type: "contra"})
	assert.ErrorIs(t, err, ledger.ErrValidation)
}

func TestUpdateAccount(t *testing.T) {
	mem := storagetest.NewMemory()
	companyID := newCompany(t, mem, "USD")
	accounts, err := mem.Accounts().ListByCompany(context.Background(), companyID)
	require.NoError(t, err)
	target := accounts[1]

	update := &UpdateAccount{
		CompanyID: companyID,
		AccountID: target.ID,
		Update: account.AccountUpdate{
			Name:     omit.From("Cash Drawer"),
			IsActive: omit.From(false),
		},
	}
	require.NoError(t, run(t, mem, update))
	assert.Equal(t, "Cash Drawer", update.Account.Name)
	assert.False(t, update.Account.IsActive)
	assert.Equal(t, target.Code, update.Account.Code)
	assert.Equal(t, target.Description, update.Account.Description)
}

func TestUpdateAccount_NotFound(t *testing.T) {
	mem := storagetest.NewMemory()
	companyID := newCompany(t, mem, "USD")

	err := run(t, mem, &UpdateAccount{CompanyID: companyID, AccountID: uuid.Must(uuid.NewV7())})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestUpdateAccount_OtherCompany(t *testing.T) {
	mem := storagetest.NewMemory()
	companyA := newCompany(t, mem, "USD")
	companyB := newCompany(t, mem, "USD")
	accounts, err := mem.Accounts().ListByCompany(context.Background(), companyA)
	require.NoError(t, err)

	err = run(t, mem, &UpdateAccount{
		CompanyID: companyB,
		AccountID: accounts[0].ID,
		Update:    account.AccountUpdate{Name: omit.From("Hijack")},
	})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}
