package storagetest

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage/account"
	"github.com/carson-networks/ledger-server/internal/storage/banking"
	"github.com/carson-networks/ledger-server/internal/storage/company"
	"github.com/carson-networks/ledger-server/internal/storage/invoice"
	"github.com/carson-networks/ledger-server/internal/storage/journal"
	"github.com/carson-networks/ledger-server/internal/storage/recurring"
	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

var (
	_ company.IWriter   = (*Companies)(nil)
	_ account.IWriter   = (*Accounts)(nil)
	_ journal.IWriter   = (*Journals)(nil)
	_ banking.IWriter   = (*Banking)(nil)
	_ invoice.IWriter   = (*Invoices)(nil)
	_ recurring.IWriter = (*Recurring)(nil)
)

// -- companies --

type Companies struct{ d *db }

func (c *Companies) FindByID(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	var out *company.Company
	err := c.d.read("companies.FindByID", func(s *state) {
		if row, ok := s.companies[id]; ok {
			out = &row
		}
	})
	return out, err
}

func (c *Companies) List(ctx context.Context) ([]*company.Company, error) {
	var out []*company.Company
	err := c.d.read("companies.List", func(s *state) {
		for _, row := range s.companies {
			row := row
			out = append(out, &row)
		}
	})
	sortByTimeThenID(out,
		func(c *company.Company) time.Time { return c.CreatedAt },
		func(c *company.Company) uuid.UUID { return c.ID })
	return out, err
}

func (c *Companies) Insert(ctx context.Context, row *company.Company) error {
	return c.d.write("companies.Insert", func(s *state) error {
		if _, ok := s.companies[row.ID]; ok {
			return uniqueViolation("companies_pkey")
		}
		row.CreatedAt = c.d.m.Now()
		s.companies[row.ID] = *row
		return nil
	})
}

// -- accounts --

type Accounts struct{ d *db }

func (a *Accounts) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]ledger.Account, error) {
	var out []ledger.Account
	err := a.d.read("accounts.ListByCompany", func(s *state) {
		for _, acc := range s.accounts {
			if acc.CompanyID == companyID {
				out = append(out, acc)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, err
}

func (a *Accounts) FindByID(ctx context.Context, companyID, id uuid.UUID) (*ledger.Account, error) {
	var out *ledger.Account
	err := a.d.read("accounts.FindByID", func(s *state) {
		if acc, ok := s.accounts[id]; ok && acc.CompanyID == companyID {
			out = &acc
		}
	})
	return out, err
}

func (a *Accounts) CountByCompany(ctx context.Context, companyID uuid.UUID) (int, error) {
	n := 0
	err := a.d.read("accounts.CountByCompany", func(s *state) {
		for _, acc := range s.accounts {
			if acc.CompanyID == companyID {
				n++
			}
		}
	})
	return n, err
}

func hasCode(s *state, companyID uuid.UUID, code string) bool {
	for _, acc := range s.accounts {
		if acc.CompanyID == companyID && acc.Code == code {
			return true
		}
	}
	return false
}

func (a *Accounts) Insert(ctx context.Context, acc ledger.Account) error {
	return a.d.write("accounts.Insert", func(s *state) error {
		if hasCode(s, acc.CompanyID, acc.Code) {
			return uniqueViolation(sqlconfig.ConstraintAccountCode)
		}
		acc.CreatedAt = a.d.m.Now()
		s.accounts[acc.ID] = acc
		return nil
	})
}

func (a *Accounts) InsertMissing(ctx context.Context, accounts []ledger.Account) (int64, error) {
	var n int64
	err := a.d.write("accounts.InsertMissing", func(s *state) error {
		for _, acc := range accounts {
			if hasCode(s, acc.CompanyID, acc.Code) {
				continue
			}
			acc.CreatedAt = a.d.m.Now()
			s.accounts[acc.ID] = acc
			n++
		}
		return nil
	})
	return n, err
}

func (a *Accounts) Update(ctx context.Context, companyID, id uuid.UUID, update account.AccountUpdate) error {
	return a.d.write("accounts.Update", func(s *state) error {
		acc, ok := s.accounts[id]
		if !ok || acc.CompanyID != companyID {
			return nil
		}
		if v, ok := update.Name.Get(); ok {
			acc.Name = v
		}
		if v, ok := update.Description.Get(); ok {
			acc.Description = v
		}
		if v, ok := update.IsActive.Get(); ok {
			acc.IsActive = v
		}
		s.accounts[id] = acc
		return nil
	})
}

// -- journals --

type Journals struct{ d *db }

func copyEntry(e *ledger.JournalEntry, withLines bool) *ledger.JournalEntry {
	out := *e
	out.Lines = nil
	if withLines {
		out.Lines = append([]ledger.Line(nil), e.Lines...)
	}
	return &out
}

func (j *Journals) FindByID(ctx context.Context, companyID, id uuid.UUID) (*ledger.JournalEntry, error) {
	var out *ledger.JournalEntry
	err := j.d.read("journals.FindByID", func(s *state) {
		if e, ok := s.journals[id]; ok && e.CompanyID == companyID {
			out = copyEntry(e, true)
		}
	})
	return out, err
}

func (j *Journals) FindBySource(ctx context.Context, companyID uuid.UUID, sourceType ledger.SourceType, sourceID uuid.UUID) (*ledger.JournalEntry, error) {
	if sourceID == uuid.Nil {
		return nil, nil
	}
	var out *ledger.JournalEntry
	err := j.d.read("journals.FindBySource", func(s *state) {
		for _, e := range s.journals {
			if e.CompanyID == companyID && e.SourceType == sourceType && e.SourceID == sourceID {
				out = copyEntry(e, false)
				return
			}
		}
	})
	return out, err
}

func (j *Journals) List(ctx context.Context, filter *journal.JournalFilter) (*journal.JournalListResult, error) {
	limit := 20
	if filter.Limit > 0 {
		limit = filter.Limit
	}
	maxCreationTime := j.d.m.Now()
	if filter.MaxCreationTime != nil {
		maxCreationTime = *filter.MaxCreationTime
	}

	var matched []*ledger.JournalEntry
	err := j.d.read("journals.List", func(s *state) {
		for _, e := range s.journals {
			if e.CompanyID != filter.CompanyID || e.CreatedAt.After(maxCreationTime) {
				continue
			}
			if filter.SourceType != nil && e.SourceType != *filter.SourceType {
				continue
			}
			if filter.From != nil && e.Date.Before(*filter.From) {
				continue
			}
			if filter.To != nil && e.Date.After(*filter.To) {
				continue
			}
			matched = append(matched, copyEntry(e, true))
		}
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(matched, func(a, b int) bool {
		if !matched[a].Date.Equal(matched[b].Date) {
			return matched[a].Date.After(matched[b].Date)
		}
		return matched[a].ID.String() > matched[b].ID.String()
	})

	if filter.Offset >= len(matched) {
		return &journal.JournalListResult{}, nil
	}
	matched = matched[filter.Offset:]
	result := &journal.JournalListResult{Journals: matched}
	if len(matched) > limit {
		result.Journals = matched[:limit]
		result.NextCursor = &journal.JournalCursor{
			Position:        filter.Offset + limit,
			Limit:           limit,
			MaxCreationTime: maxCreationTime,
		}
	}
	return result, nil
}

func (j *Journals) AccountTotals(ctx context.Context, companyID uuid.UUID, asOf *time.Time) ([]ledger.AccountTotals, error) {
	sums := map[uuid.UUID]*ledger.AccountTotals{}
	err := j.d.read("journals.AccountTotals", func(s *state) {
		for _, e := range s.journals {
			if e.CompanyID != companyID {
				continue
			}
			if asOf != nil && day(e.Date).After(day(*asOf)) {
				continue
			}
			for _, l := range e.Lines {
				t, ok := sums[l.AccountID]
				if !ok {
					t = &ledger.AccountTotals{AccountID: l.AccountID, Debit: decimal.Zero, Credit: decimal.Zero}
					sums[l.AccountID] = t
				}
				t.Debit = t.Debit.Add(l.Debit)
				t.Credit = t.Credit.Add(l.Credit)
			}
		}
	})
	out := make([]ledger.AccountTotals, 0, len(sums))
	for _, t := range sums {
		out = append(out, *t)
	}
	return out, err
}

func (j *Journals) CashMovements(ctx context.Context, companyID, accountID uuid.UUID, from, to time.Time) ([]ledger.CashMovement, error) {
	var out []ledger.CashMovement
	err := j.d.read("journals.CashMovements", func(s *state) {
		for _, e := range s.journals {
			if e.CompanyID != companyID || day(e.Date).Before(day(from)) || day(e.Date).After(day(to)) {
				continue
			}
			amount := decimal.Zero
			touched := false
			for _, l := range e.Lines {
				if l.AccountID == accountID {
					amount = amount.Add(l.Debit).Sub(l.Credit)
					touched = true
				}
			}
			if touched {
				out = append(out, ledger.CashMovement{JournalID: e.ID, Date: e.Date, Amount: amount, Memo: e.Memo})
			}
		}
	})
	sortByTimeThenID(out,
		func(c ledger.CashMovement) time.Time { return c.Date },
		func(c ledger.CashMovement) uuid.UUID { return c.JournalID })
	return out, err
}

// Insert applies the same checks as the database: unique source key, known
// accounts and a balanced entry.
func (j *Journals) Insert(ctx context.Context, entry *ledger.JournalEntry) error {
	return j.d.write("journals.Insert", func(s *state) error {
		if _, ok := s.journals[entry.ID]; ok || entry.ID == uuid.Nil {
			return uniqueViolation("journals_pkey")
		}
		if entry.SourceID != uuid.Nil {
			for _, e := range s.journals {
				if e.SourceType == entry.SourceType && e.SourceID == entry.SourceID {
					return uniqueViolation(sqlconfig.ConstraintJournalSource)
				}
			}
		}
		for _, l := range entry.Lines {
			acc, ok := s.accounts[l.AccountID]
			if !ok || acc.CompanyID != entry.CompanyID {
				return &pq.Error{Code: "23503", Message: fmt.Sprintf("account %s does not exist", l.AccountID)}
			}
		}
		if err := entry.Validate(); err != nil {
			return &pq.Error{Code: "23514", Message: err.Error()}
		}
		entry.CreatedAt = j.d.m.Now()
		stored := copyEntry(entry, true)
		stored.Currency = ""
		s.journals[entry.ID] = stored
		return nil
	})
}

// -- banking --

type Banking struct{ d *db }

func (b *Banking) FindConnection(ctx context.Context, companyID, id uuid.UUID) (*banking.Connection, error) {
	var out *banking.Connection
	err := b.d.read("banking.FindConnection", func(s *state) {
		if c, ok := s.connections[id]; ok && c.CompanyID == companyID {
			out = &c
		}
	})
	return out, err
}

func (b *Banking) ListConnections(ctx context.Context, companyID uuid.UUID) ([]*banking.Connection, error) {
	var out []*banking.Connection
	err := b.d.read("banking.ListConnections", func(s *state) {
		for _, c := range s.connections {
			if c.CompanyID == companyID {
				c := c
				out = append(out, &c)
			}
		}
	})
	sortByTimeThenID(out,
		func(c *banking.Connection) time.Time { return c.CreatedAt },
		func(c *banking.Connection) uuid.UUID { return c.ID })
	return out, err
}

func (b *Banking) FindTransaction(ctx context.Context, companyID, id uuid.UUID) (*banking.Transaction, error) {
	var out *banking.Transaction
	err := b.d.read("banking.FindTransaction", func(s *state) {
		if t, ok := s.transactions[id]; ok && t.CompanyID == companyID {
			out = &t
		}
	})
	return out, err
}

func (b *Banking) ListUnreconciled(ctx context.Context, companyID uuid.UUID) ([]*banking.Transaction, error) {
	var out []*banking.Transaction
	err := b.d.read("banking.ListUnreconciled", func(s *state) {
		for _, t := range s.transactions {
			if t.CompanyID == companyID && !t.IsReconciled {
				t := t
				out = append(out, &t)
			}
		}
	})
	sortByTimeThenID(out,
		func(t *banking.Transaction) time.Time { return t.Date },
		func(t *banking.Transaction) uuid.UUID { return t.ID })
	return out, err
}

func (b *Banking) InsertConnection(ctx context.Context, c *banking.Connection) error {
	return b.d.write("banking.InsertConnection", func(s *state) error {
		if _, ok := s.connections[c.ID]; ok {
			return uniqueViolation("bank_connections_pkey")
		}
		c.CreatedAt = b.d.m.Now()
		s.connections[c.ID] = *c
		return nil
	})
}

func (b *Banking) MarkSynced(ctx context.Context, id uuid.UUID, at time.Time) error {
	return b.d.write("banking.MarkSynced", func(s *state) error {
		if c, ok := s.connections[id]; ok {
			c.LastSyncedAt = &at
			s.connections[id] = c
		}
		return nil
	})
}

func (b *Banking) InsertTransactions(ctx context.Context, txns []*banking.Transaction) (int64, error) {
	var n int64
	err := b.d.write("banking.InsertTransactions", func(s *state) error {
		for _, t := range txns {
			dup := false
			for _, existing := range s.transactions {
				if existing.BankConnectionID == t.BankConnectionID && existing.ExternalID == t.ExternalID {
					dup = true
					break
				}
			}
			if dup {
				continue
			}
			row := *t
			row.CreatedAt = b.d.m.Now()
			s.transactions[row.ID] = row
			n++
		}
		return nil
	})
	return n, err
}

func (b *Banking) FindTransactionForUpdate(ctx context.Context, companyID, id uuid.UUID) (*banking.Transaction, error) {
	return b.FindTransaction(ctx, companyID, id)
}

func (b *Banking) MarkReconciled(ctx context.Context, id uuid.UUID, journalID uuid.UUID, at time.Time) error {
	return b.d.write("banking.MarkReconciled", func(s *state) error {
		t, ok := s.transactions[id]
		if !ok || t.IsReconciled {
			return nil
		}
		t.IsReconciled = true
		t.ReconciledAt = &at
		t.JournalID = sqlconfig.NullUUID(journalID)
		s.transactions[id] = t
		return nil
	})
}

// -- invoices --

type Invoices struct{ d *db }

func (i *Invoices) FindByID(ctx context.Context, companyID, id uuid.UUID) (*invoice.Invoice, error) {
	var out *invoice.Invoice
	err := i.d.read("invoices.FindByID", func(s *state) {
		if inv, ok := s.invoices[id]; ok && inv.CompanyID == companyID {
			out = &inv
		}
	})
	return out, err
}

func (i *Invoices) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]*invoice.Invoice, error) {
	var out []*invoice.Invoice
	err := i.d.read("invoices.ListByProfile", func(s *state) {
		for _, inv := range s.invoices {
			if inv.RecurringProfileID.Valid && inv.RecurringProfileID.UUID == profileID {
				inv := inv
				out = append(out, &inv)
			}
		}
	})
	sortByTimeThenID(out,
		func(inv *invoice.Invoice) time.Time { return inv.IssueDate },
		func(inv *invoice.Invoice) uuid.UUID { return inv.ID })
	return out, err
}

func (i *Invoices) Insert(ctx context.Context, inv *invoice.Invoice) error {
	return i.d.write("invoices.Insert", func(s *state) error {
		if _, ok := s.invoices[inv.ID]; ok {
			return uniqueViolation("invoices_pkey")
		}
		if inv.Status == "" {
			inv.Status = invoice.StatusIssued
		}
		inv.CreatedAt = i.d.m.Now()
		row := *inv
		row.Currency = ""
		s.invoices[inv.ID] = row
		return nil
	})
}

// -- recurring profiles --

type Recurring struct{ d *db }

func (r *Recurring) FindByID(ctx context.Context, companyID, id uuid.UUID) (*recurring.Profile, error) {
	var out *recurring.Profile
	err := r.d.read("recurring.FindByID", func(s *state) {
		if p, ok := s.profiles[id]; ok && p.CompanyID == companyID {
			out = &p
		}
	})
	return out, err
}

func (r *Recurring) ListDue(ctx context.Context, companyID uuid.UUID, today time.Time) ([]*recurring.Profile, error) {
	var out []*recurring.Profile
	err := r.d.read("recurring.ListDue", func(s *state) {
		for _, p := range s.profiles {
			if !p.IsActive || day(p.NextRunDate).After(day(today)) {
				continue
			}
			if companyID != uuid.Nil && p.CompanyID != companyID {
				continue
			}
			p := p
			out = append(out, &p)
		}
	})
	sortByTimeThenID(out,
		func(p *recurring.Profile) time.Time { return p.NextRunDate },
		func(p *recurring.Profile) uuid.UUID { return p.ID })
	return out, err
}

func (r *Recurring) Insert(ctx context.Context, p *recurring.Profile) error {
	return r.d.write("recurring.Insert", func(s *state) error {
		if _, ok := s.profiles[p.ID]; ok {
			return uniqueViolation("recurring_profiles_pkey")
		}
		p.CreatedAt = r.d.m.Now()
		row := *p
		row.Currency = ""
		s.profiles[p.ID] = row
		return nil
	})
}

func (r *Recurring) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*recurring.Profile, error) {
	var out *recurring.Profile
	err := r.d.read("recurring.FindByIDForUpdate", func(s *state) {
		if p, ok := s.profiles[id]; ok {
			out = &p
		}
	})
	return out, err
}

func (r *Recurring) Advance(ctx context.Context, id uuid.UUID, next time.Time, ranAt time.Time) error {
	return r.d.write("recurring.Advance", func(s *state) error {
		if p, ok := s.profiles[id]; ok {
			p.NextRunDate = next
			p.LastRunAt = &ranAt
			s.profiles[id] = p
		}
		return nil
	})
}
