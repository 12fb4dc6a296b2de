package ledger

import (
	"sort"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// AccountTotals are the summed line amounts posted to one account.
type AccountTotals struct {
	AccountID uuid.UUID
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// TrialBalanceRow is one account's line of a trial balance. Balance is Debit - Credit
// for every account type; callers interpret the sign against NormalBalance.
type TrialBalanceRow struct {
	AccountID     uuid.UUID
	Code          string
	Name          string
	Type          AccountType
	NormalBalance NormalBalance
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	Balance       decimal.Decimal
}

// TrialBalance lists every account of one or more companies with its totals.
type TrialBalance struct {
	CompanyIDs  []uuid.UUID
	AsOf        *time.Time
	Rows        []TrialBalanceRow
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	// Currency is the shared base currency, or empty when the companies differ.
	Currency string
}

// Balanced reports whether total debits equal total credits.
func (tb *TrialBalance) Balanced() bool {
	return tb.TotalDebit.Equal(tb.TotalCredit)
}

// Row returns the row for an account code.
func (tb *TrialBalance) Row(code string) (TrialBalanceRow, bool) {
	for _, r := range tb.Rows {
		if r.Code == code {
			return r, true
		}
	}
	return TrialBalanceRow{}, false
}

// BuildTrialBalance joins a company's accounts with their posted totals. Accounts
// with no activity appear with zero amounts. Totals for unknown accounts are ignored.
func BuildTrialBalance(companyID uuid.UUID, accounts []Account, totals []AccountTotals, asOf *time.Time) *TrialBalance {
	byAccount := make(map[uuid.UUID]AccountTotals, len(totals))
	for _, t := range totals {
		prev, ok := byAccount[t.AccountID]
		if ok {
			t.Debit = t.Debit.Add(prev.Debit)
			t.Credit = t.Credit.Add(prev.Credit)
		}
		byAccount[t.AccountID] = t
	}

	tb := &TrialBalance{
		CompanyIDs:  []uuid.UUID{companyID},
		AsOf:        asOf,
		Rows:        make([]TrialBalanceRow, 0, len(accounts)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, a := range accounts {
		t := byAccount[a.ID]
		row := TrialBalanceRow{
			AccountID:     a.ID,
			Code:          a.Code,
			Name:          a.Name,
			Type:          a.Type,
			NormalBalance: a.NormalBalance,
			Debit:         t.Debit,
			Credit:        t.Credit,
			Balance:       t.Debit.Sub(t.Credit),
		}
		tb.Rows = append(tb.Rows, row)
		tb.TotalDebit = tb.TotalDebit.Add(row.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(row.Credit)
	}
	sortRows(tb.Rows)
	return tb
}

// Consolidate pools per-company trial balances by account code. The pooled row
// takes its name and type from the first company that has the code; AccountID is
// left nil since the row spans several accounts.
func Consolidate(balances ...*TrialBalance) *TrialBalance {
	out := &TrialBalance{
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	seen := make(map[uuid.UUID]bool)
	byCode := make(map[string]int)
	first := true
	for _, tb := range balances {
		if tb == nil {
			continue
		}
		if first {
			out.Currency, first = tb.Currency, false
		} else if out.Currency != tb.Currency {
			out.Currency = ""
		}
		for _, id := range tb.CompanyIDs {
			if !seen[id] {
				seen[id] = true
				out.CompanyIDs = append(out.CompanyIDs, id)
			}
		}
		if out.AsOf == nil {
			out.AsOf = tb.AsOf
		}
		for _, r := range tb.Rows {
			idx, ok := byCode[r.Code]
			if !ok {
				byCode[r.Code] = len(out.Rows)
				r.AccountID = uuid.Nil
				out.Rows = append(out.Rows, r)
			} else {
				pooled := &out.Rows[idx]
				pooled.Debit = pooled.Debit.Add(r.Debit)
				pooled.Credit = pooled.Credit.Add(r.Credit)
				pooled.Balance = pooled.Debit.Sub(pooled.Credit)
			}
			out.TotalDebit = out.TotalDebit.Add(r.Debit)
			out.TotalCredit = out.TotalCredit.Add(r.Credit)
		}
	}
	sortRows(out.Rows)
	return out
}

// DedupeCompanyIDs drops repeated and nil ids, keeping first-seen order.
func DedupeCompanyIDs(ids []uuid.UUID) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	if len(out) == 0 {
		return nil, NewValidationError("at least one company id is required")
	}
	return out, nil
}

func sortRows(rows []TrialBalanceRow) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })
}
