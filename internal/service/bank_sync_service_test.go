package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/bankfeed"
	"github.com/carson-networks/ledger-server/internal/ledger"
)

const genericCSV = `date,description,amount,id
2025-04-03,OFFICE DEPOT,-57.50,bt-1
2025-04-04,ACME PAYMENT,1000.00,bt-2
`

func (f *fixture) connection(t *testing.T, companyID uuid.UUID, externalRef string) uuid.UUID {
	t.Helper()
	conn, err := f.svc.BankSync.CreateConnection(context.Background(), companyID, "plaid", "Operating "+externalRef, externalRef, "")
	require.NoError(t, err)
	return conn.ID
}

// -- ImportCSV tests --

func TestImportCSV_Idempotent(t *testing.T) {
	f := newFixture(t)
	companyID := f.company(t)
	connID := f.connection(t, companyID, "")
	ctx := context.Background()

	imported, skipped, err := f.svc.BankSync.ImportCSV(ctx, companyID, connID, "generic", strings.NewReader(genericCSV))
	require.NoError(t, err)
	assert.Equal(t, int64(2), imported)
	assert.Zero(t, skipped)

	imported, skipped, err = f.svc.BankSync.ImportCSV(ctx, companyID, connID, "GENERIC", strings.NewReader(genericCSV))
	require.NoError(t, err)
	assert.Zero(t, imported)
	assert.Equal(t, int64(2), skipped)
}

func TestImportCSV_UnknownFormat(t *testing.T) {
	f := newFixture(t)
	companyID := f.company(t)
	connID := f.connection(t, companyID, "")

	_, _, err := f.svc.BankSync.ImportCSV(context.Background(), companyID, connID, "ofx", strings.NewReader(genericCSV))

	assert.ErrorIs(t, err, ledger.ErrValidation)
	assert.Contains(t, err.Error(), "chase, generic")
}

func TestImportCSV_Malformed(t *testing.T) {
	f := newFixture(t)
	companyID := f.company(t)
	connID := f.connection(t, companyID, "")

	_, _, err := f.svc.BankSync.ImportCSV(context.Background(), companyID, connID, "generic", strings.NewReader("date,amount\n2025-04-01,1\n"))

	assert.ErrorIs(t, err, ledger.ErrValidation)
}

// -- SyncCompany tests --

func TestSyncCompany_IsolatesFailingConnection(t *testing.T) {
	f := newFixture(t)
	companyID := f.company(t)
	good := f.connection(t, companyID, "acc-good")
	bad := f.connection(t, companyID, "acc-bad")
	f.connection(t, companyID, "") // csv-only connections are not synced

	to := day1.AddDate(0, 0, 10)
	f.provider.On("Fetch", mock.Anything, "acc-good", to.AddDate(0, 0, -30), to).
		Return([]bankfeed.Transaction{
			{ExternalID: "g-1", Date: day1, Amount: dec("-12.00"), Description: "COFFEE"},
		}, nil).Once()
	f.provider.On("Fetch", mock.Anything, "acc-bad", mock.Anything, to).
		Return(nil, errors.New("provider returned 503")).Once()

	results, err := f.svc.BankSync.SyncCompany(context.Background(), companyID, time.Time{}, to)
	require.NoError(t, err)
	require.Len(t, results, 2)

	byID := map[uuid.UUID]SyncResult{}
	for _, r := range results {
		byID[r.ConnectionID] = r
	}
	assert.Equal(t, int64(1), byID[good].Imported)
	assert.Empty(t, byID[good].Error)
	assert.Contains(t, byID[bad].Error, "503")

	var warned bool
	for _, e := range f.logs.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["connection_id"] == bad {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestSyncCompany_OverlapsLastSync(t *testing.T) {
	f := newFixture(t)
	companyID := f.company(t)
	f.connection(t, companyID, "acc-1")
	to := day1

	f.provider.On("Fetch", mock.Anything, "acc-1", mock.Anything, to).Return([]bankfeed.Transaction{}, nil).Once()
	_, err := f.svc.BankSync.SyncCompany(context.Background(), companyID, time.Time{}, to)
	require.NoError(t, err)

	conns, err := f.mem.Banking().ListConnections(context.Background(), companyID)
	require.NoError(t, err)
	require.NotNil(t, conns[0].LastSyncedAt)
	expectedFrom := conns[0].LastSyncedAt.AddDate(0, 0, -syncOverlapDays)

	f.provider.On("Fetch", mock.Anything, "acc-1", expectedFrom, to).Return([]bankfeed.Transaction{}, nil).Once()
	_, err = f.svc.BankSync.SyncCompany(context.Background(), companyID, time.Time{}, to)
	require.NoError(t, err)
}

func TestSyncCompany_UnknownCompany(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.BankSync.SyncCompany(context.Background(), uuid.Must(uuid.NewV7()), time.Time{}, time.Time{})

	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

// -- ReconciliationService tests --

func TestSuggestAndReconcile(t *testing.T) {
	f := newFixture(t)
	companyID := f.company(t)
	connID := f.connection(t, companyID, "")
	ctx := context.Background()

	posted, err := f.svc.Journal.PostDocument(ctx, expense(companyID, "57.50", day1))
	require.NoError(t, err)
	_, err = f.svc.Journal.PostDocument(ctx, expense(companyID, "57.50", day1.AddDate(0, 0, -20)))
	require.NoError(t, err)

	_, _, err = f.svc.BankSync.ImportCSV(ctx, companyID, connID, "generic", strings.NewReader(genericCSV))
	require.NoError(t, err)

	open, err := f.svc.Reconciliation.GetUnreconciledTransactions(ctx, companyID)
	require.NoError(t, err)
	require.Len(t, open, 2)
	depot := open[0]
	assert.Equal(t, "bt-1", depot.ExternalID)

	suggestions, err := f.svc.Reconciliation.SuggestMatches(ctx, companyID, depot.ID)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, posted.ID, suggestions[0].JournalID)
	assert.Equal(t, 2, suggestions[0].DaysApart)
	assert.InDelta(t, 0.75, suggestions[0].Score, 1e-9)

	// Suggesting never reconciles.
	open, err = f.svc.Reconciliation.GetUnreconciledTransactions(ctx, companyID)
	require.NoError(t, err)
	assert.Len(t, open, 2)

	txn, already, err := f.svc.Reconciliation.ReconcileTransaction(ctx, companyID, depot.ID, posted.ID)
	require.NoError(t, err)
	assert.False(t, already)
	assert.True(t, txn.IsReconciled)

	_, already, err = f.svc.Reconciliation.ReconcileTransaction(ctx, companyID, depot.ID, uuid.Nil)
	require.NoError(t, err)
	assert.True(t, already)

	open, err = f.svc.Reconciliation.GetUnreconciledTransactions(ctx, companyID)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestSuggestMatches_NotFound(t *testing.T) {
	f := newFixture(t)
	companyID := f.company(t)

	_, err := f.svc.Reconciliation.SuggestMatches(context.Background(), companyID, uuid.Must(uuid.NewV7()))

	assert.ErrorIs(t, err, ledger.ErrNotFound)
}
