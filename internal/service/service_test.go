package service

import (
	"context"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/bankfeed"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage/storagetest"
)

// memProcessor performs actions against the in-memory store, one transaction each.
// intercept, when set, runs first and short-circuits the action on error.
type memProcessor struct {
	mem       *storagetest.Memory
	intercept func(action actions.IAction) error
}

func (p *memProcessor) Process(ctx context.Context, action actions.IAction) error {
	if p.intercept != nil {
		if err := p.intercept(action); err != nil {
			return err
		}
	}
	writer, err := p.mem.Write(ctx)
	if err != nil {
		return err
	}
	if err := action.Perform(ctx, writer); err != nil {
		_ = writer.Rollback()
		return err
	}
	return writer.Commit()
}

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) Fetch(ctx context.Context, externalRef string, from, to time.Time) ([]bankfeed.Transaction, error) {
	args := m.Called(ctx, externalRef, from, to)
	lines, _ := args.Get(0).([]bankfeed.Transaction)
	return lines, args.Error(1)
}

type fixture struct {
	svc      *Service
	mem      *storagetest.Memory
	proc     *memProcessor
	provider *mockProvider
	logs     *test.Hook
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := storagetest.NewMemory()
	proc := &memProcessor{mem: mem}
	provider := &mockProvider{}
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	svc := NewService(proc, memReaders(mem), Options{
		BankFeed:        provider,
		MatchWindowDays: 7,
		Logger:          logger,
	})
	t.Cleanup(func() { provider.AssertExpectations(t) })
	return &fixture{svc: svc, mem: mem, proc: proc, provider: provider, logs: hook}
}

func memReaders(mem *storagetest.Memory) Readers {
	return Readers{
		Companies: mem.Companies(),
		Accounts:  mem.Accounts(),
		Journals:  mem.Journals(),
		Banking:   mem.Banking(),
		Invoices:  mem.Invoices(),
		Recurring: mem.Recurring(),
	}
}

func (f *fixture) company(t *testing.T) uuid.UUID {
	t.Helper()
	c, _, err := f.svc.Company.CreateCompany(context.Background(), "Acme Ltd", "USD")
	require.NoError(t, err)
	return c.ID
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var day1 = time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
