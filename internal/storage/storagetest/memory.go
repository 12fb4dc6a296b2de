// Package storagetest provides an in-memory stand-in for the postgres store.
// Writers opened from a Memory run one at a time and only publish their
// changes on Commit, so actions can be tested for rollback as well as success.
package storagetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/lib/pq"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/banking"
	"github.com/carson-networks/ledger-server/internal/storage/company"
	"github.com/carson-networks/ledger-server/internal/storage/invoice"
	"github.com/carson-networks/ledger-server/internal/storage/recurring"
)

type state struct {
	companies    map[uuid.UUID]company.Company
	accounts     map[uuid.UUID]ledger.Account
	journals     map[uuid.UUID]*ledger.JournalEntry
	connections  map[uuid.UUID]banking.Connection
	transactions map[uuid.UUID]banking.Transaction
	invoices     map[uuid.UUID]invoice.Invoice
	profiles     map[uuid.UUID]recurring.Profile
}

func newState() *state {
	return &state{
		companies:    map[uuid.UUID]company.Company{},
		accounts:     map[uuid.UUID]ledger.Account{},
		journals:     map[uuid.UUID]*ledger.JournalEntry{},
		connections:  map[uuid.UUID]banking.Connection{},
		transactions: map[uuid.UUID]banking.Transaction{},
		invoices:     map[uuid.UUID]invoice.Invoice{},
		profiles:     map[uuid.UUID]recurring.Profile{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Journal entries are never mutated once stored, so the pointers can be shared.
func (s *state) clone() *state {
	return &state{
		companies:    cloneMap(s.companies),
		accounts:     cloneMap(s.accounts),
		journals:     cloneMap(s.journals),
		connections:  cloneMap(s.connections),
		transactions: cloneMap(s.transactions),
		invoices:     cloneMap(s.invoices),
		profiles:     cloneMap(s.profiles),
	}
}

// Memory is an in-memory store.
type Memory struct {
	mu    sync.RWMutex
	txMu  sync.Mutex
	state *state

	failMu   sync.Mutex
	failures map[string]error

	Commits   int
	Rollbacks int

	// Now stamps created_at columns.
	Now func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		state:    newState(),
		failures: map[string]error{},
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

// Fail makes every later call of op return err. op is "<table>.<Method>",
// e.g. "journals.Insert", or "Write" for opening a transaction.
func (m *Memory) Fail(op string, err error) {
	m.failMu.Lock()
	defer m.failMu.Unlock()
	m.failures[op] = err
}

func (m *Memory) failure(op string) error {
	m.failMu.Lock()
	defer m.failMu.Unlock()
	return m.failures[op]
}

// Write opens a transaction. It blocks while another transaction is open.
func (m *Memory) Write(ctx context.Context) (*storage.Writer, error) {
	if err := m.failure("Write"); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.txMu.Lock()

	m.mu.RLock()
	local := m.state.clone()
	m.mu.RUnlock()

	d := &db{m: m, get: func() *state { return local }}
	return &storage.Writer{
		Tx:        &tx{m: m, local: local},
		Companies: &Companies{d},
		Accounts:  &Accounts{d},
		Journals:  &Journals{d},
		Banking:   &Banking{d},
		Invoices:  &Invoices{d},
		Recurring: &Recurring{d},
	}, nil
}

func (m *Memory) committed() *db {
	return &db{m: m, lock: &m.mu, get: func() *state { return m.state }}
}

// Readers over committed data. Their write methods must not be used.
func (m *Memory) Companies() *Companies { return &Companies{m.committed()} }
func (m *Memory) Accounts() *Accounts   { return &Accounts{m.committed()} }
func (m *Memory) Journals() *Journals   { return &Journals{m.committed()} }
func (m *Memory) Banking() *Banking     { return &Banking{m.committed()} }
func (m *Memory) Invoices() *Invoices   { return &Invoices{m.committed()} }
func (m *Memory) Recurring() *Recurring { return &Recurring{m.committed()} }

// JournalCount returns the number of committed journal entries.
func (m *Memory) JournalCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.state.journals)
}

type tx struct {
	m     *Memory
	local *state
	done  bool
}

func (t *tx) Commit(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	defer t.m.txMu.Unlock()
	if err := t.m.failure("Commit"); err != nil {
		return err
	}
	t.m.mu.Lock()
	t.m.state = t.local
	t.m.Commits++
	t.m.mu.Unlock()
	return nil
}

func (t *tx) Rollback(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	defer t.m.txMu.Unlock()
	t.m.mu.Lock()
	t.m.Rollbacks++
	t.m.mu.Unlock()
	return nil
}

type db struct {
	m    *Memory
	lock *sync.RWMutex
	get  func() *state
}

func (d *db) read(op string, fn func(s *state)) error {
	if err := d.m.failure(op); err != nil {
		return err
	}
	if d.lock != nil {
		d.lock.RLock()
		defer d.lock.RUnlock()
	}
	fn(d.get())
	return nil
}

func (d *db) write(op string, fn func(s *state) error) error {
	if err := d.m.failure(op); err != nil {
		return err
	}
	return fn(d.get())
}

func uniqueViolation(constraint string) error {
	return &pq.Error{Code: "23505", Constraint: constraint, Message: "duplicate key value violates unique constraint"}
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sortByTimeThenID[T any](items []T, at func(T) time.Time, id func(T) uuid.UUID) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, tj := at(items[i]), at(items[j])
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return id(items[i]).String() < id(items[j]).String()
	})
}
