package ledger

import (
	"sort"

	"github.com/gofrs/uuid/v5"
)

// Account codes the posting rules depend on.
const (
	CodeCashAtBank         = "1000"
	CodeAccountsReceivable = "1100"
	CodeVATReceivable      = "1400"
	CodeAccountsPayable    = "2000"
	CodeVATPayable         = "2100"
	CodeSalesRevenue       = "4000"
	CodeGeneralExpenses    = "6000"
)

type chartRow struct {
	code        string
	name        string
	typ         AccountType
	normal      NormalBalance
	description string
}

var standardChart = []chartRow{
	{"1000", "Cash at Bank", AccountTypeAsset, NormalDebit, "Operating bank account"},
	{"1010", "Petty Cash", AccountTypeAsset, NormalDebit, ""},
	{"1100", "Accounts Receivable", AccountTypeAsset, NormalDebit, "Amounts owed by clients"},
	{"1200", "Inventory", AccountTypeAsset, NormalDebit, ""},
	{"1300", "Prepaid Expenses", AccountTypeAsset, NormalDebit, ""},
	{"1400", "VAT Receivable", AccountTypeAsset, NormalDebit, "Input tax reclaimable on purchases"},
	{"1500", "Equipment", AccountTypeAsset, NormalDebit, ""},
	{"1510", "Accumulated Depreciation", AccountTypeAsset, NormalCredit, "Contra asset"},
	{"2000", "Accounts Payable", AccountTypeLiability, NormalCredit, "Amounts owed to suppliers"},
	{"2100", "VAT Payable", AccountTypeLiability, NormalCredit, "Output tax collected on sales"},
	{"2200", "Accrued Liabilities", AccountTypeLiability, NormalCredit, ""},
	{"2300", "Payroll Liabilities", AccountTypeLiability, NormalCredit, ""},
	{"2500", "Loans Payable", AccountTypeLiability, NormalCredit, ""},
	{"3000", "Owner's Equity", AccountTypeEquity, NormalCredit, ""},
	{"3100", "Retained Earnings", AccountTypeEquity, NormalCredit, ""},
	{"3200", "Owner's Drawings", AccountTypeEquity, NormalDebit, "Contra equity"},
	{"4000", "Sales Revenue", AccountTypeRevenue, NormalCredit, ""},
	{"4100", "Service Revenue", AccountTypeRevenue, NormalCredit, ""},
	{"4900", "Other Income", AccountTypeRevenue, NormalCredit, ""},
	{"5000", "Cost of Goods Sold", AccountTypeExpense, NormalDebit, ""},
	{"6000", "General Expenses", AccountTypeExpense, NormalDebit, ""},
	{"6100", "Rent", AccountTypeExpense, NormalDebit, ""},
	{"6200", "Salaries and Wages", AccountTypeExpense, NormalDebit, ""},
	{"6300", "Utilities", AccountTypeExpense, NormalDebit, ""},
	{"6400", "Office Supplies", AccountTypeExpense, NormalDebit, ""},
	{"6500", "Bank Fees", AccountTypeExpense, NormalDebit, ""},
	{"6600", "Professional Fees", AccountTypeExpense, NormalDebit, "Legal, accounting, consulting"},
	{"6700", "Advertising", AccountTypeExpense, NormalDebit, ""},
}

// DefaultChart returns the standard chart of accounts for a new company.
// newID supplies account ids; it is called once per account.
func DefaultChart(companyID uuid.UUID, newID func() uuid.UUID) []Account {
	accounts := make([]Account, len(standardChart))
	for i, row := range standardChart {
		accounts[i] = Account{
			ID:            newID(),
			CompanyID:     companyID,
			Code:          row.code,
			Name:          row.name,
			Type:          row.typ,
			NormalBalance: row.normal,
			IsActive:      true,
			Description:   row.description,
		}
	}
	return accounts
}

// Chart provides lookup over one company's accounts.
type Chart struct {
	accounts []Account
	byCode   map[string]Account
	byID     map[uuid.UUID]Account
}

// NewChart indexes accounts by code and id. The slice is kept sorted by code.
func NewChart(accounts []Account) *Chart {
	sorted := make([]Account, len(accounts))
	copy(sorted, accounts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Code < sorted[j].Code })

	c := &Chart{
		accounts: sorted,
		byCode:   make(map[string]Account, len(sorted)),
		byID:     make(map[uuid.UUID]Account, len(sorted)),
	}
	for _, a := range sorted {
		c.byCode[a.Code] = a
		c.byID[a.ID] = a
	}
	return c
}

// All returns the accounts ordered by code.
func (c *Chart) All() []Account {
	return c.accounts
}

// ByCode returns the account with the given code.
func (c *Chart) ByCode(code string) (Account, bool) {
	a, ok := c.byCode[code]
	return a, ok
}

// ByID returns the account with the given id.
func (c *Chart) ByID(id uuid.UUID) (Account, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// resolve finds an active account for posting, optionally restricted to some types.
func (c *Chart) resolve(code string, allowed ...AccountType) (Account, error) {
	a, ok := c.byCode[code]
	if !ok {
		return Account{}, NewMappingError("no account with code %s in chart", code)
	}
	if !a.IsActive {
		return Account{}, NewMappingError("account %s (%s) is inactive", code, a.Name)
	}
	if len(allowed) == 0 {
		return a, nil
	}
	for _, t := range allowed {
		if a.Type == t {
			return a, nil
		}
	}
	return Account{}, NewMappingError("account %s is %s, expected one of %v", code, a.Type, allowed)
}
