package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/service"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := NewRootCommand()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate", "process-recurring", "trial-balance", "import-csv"}, names)
}

func TestTrialBalance_RequiresCompany(t *testing.T) {
	_, err := runCommand(t, "trial-balance")
	assert.ErrorContains(t, err, `required flag(s) "company" not set`)

	_, err = runCommand(t, "trial-balance", "--company", "acme")
	assert.ErrorContains(t, err, "--company")

	_, err = runCommand(t, "trial-balance", "--company", uuid.Must(uuid.NewV7()).String(), "--as-of", "03/04/2025")
	assert.ErrorContains(t, err, "--as-of")
}

func TestImportCSV_Arguments(t *testing.T) {
	id := uuid.Must(uuid.NewV7()).String()

	_, err := runCommand(t, "import-csv", "--company", id, "--connection", id)
	assert.ErrorContains(t, err, "accepts 1 arg(s)")

	missing := filepath.Join(t.TempDir(), "statement.csv")
	_, err = runCommand(t, "import-csv", missing, "--company", id, "--connection", id)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestProcessRecurring_BadDate(t *testing.T) {
	_, err := runCommand(t, "process-recurring", "--date", "tomorrow")
	assert.ErrorContains(t, err, "expected YYYY-MM-DD")
}

func TestPrintRunResults(t *testing.T) {
	profileA, profileB, profileC := uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7())
	companyID, invoiceID := uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7())
	next := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	var out bytes.Buffer
	err := printRunResults(&out, []service.RunResult{
		{ProfileID: profileA, CompanyID: companyID, InvoiceID: invoiceID, NextRunDate: next},
		{ProfileID: profileB, CompanyID: companyID, Skipped: true, NextRunDate: next},
		{ProfileID: profileC, CompanyID: companyID, Error: "customer archived"},
	})

	assert.EqualError(t, err, "1 of 3 recurring profiles failed")
	text := out.String()
	assert.Contains(t, text, "PROFILE")
	assert.Contains(t, text, invoiceID.String())
	assert.Contains(t, text, "2025-05-01")
	assert.Contains(t, text, "skipped")
	assert.Contains(t, text, "failed: customer archived")
}

func TestPrintRunResults_Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printRunResults(&out, nil))
	assert.Equal(t, "No recurring profiles due.\n", out.String())
}

func TestPrintTrialBalance(t *testing.T) {
	tb := &ledger.TrialBalance{
		Rows: []ledger.TrialBalanceRow{
			{Code: ledger.CodeCashAtBank, Name: "Cash", Debit: decimal.RequireFromString("1250"), Balance: decimal.RequireFromString("1250")},
			{Code: "1100", Name: "Accounts Receivable"},
			{Code: ledger.CodeSalesRevenue, Name: "Sales Revenue", Credit: decimal.RequireFromString("1250"), Balance: decimal.RequireFromString("1250")},
		},
		TotalDebit:  decimal.RequireFromString("1250"),
		TotalCredit: decimal.RequireFromString("1250"),
	}

	var out bytes.Buffer
	require.NoError(t, printTrialBalance(&out, tb, "USD"))

	text := out.String()
	assert.Contains(t, text, "Cash")
	assert.Contains(t, text, "$1,250.00")
	assert.Contains(t, text, "TOTAL")
	// Accounts without activity are left out.
	assert.NotContains(t, text, "Accounts Receivable")
	assert.NotContains(t, text, "WARNING")
}

func TestPrintTrialBalance_Unbalanced(t *testing.T) {
	tb := &ledger.TrialBalance{
		TotalDebit:  decimal.RequireFromString("10"),
		TotalCredit: decimal.RequireFromString("9.99"),
	}

	var out bytes.Buffer
	require.NoError(t, printTrialBalance(&out, tb, ""))
	assert.Contains(t, out.String(), "10.00")
	assert.Contains(t, out.String(), "WARNING: trial balance is out of balance")
}

func TestParseCompanyIDs(t *testing.T) {
	a, b := uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7())

	ids, err := parseCompanyIDs([]string{a.String(), b.String()})
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)

	_, err = parseCompanyIDs(nil)
	assert.Error(t, err)
}
