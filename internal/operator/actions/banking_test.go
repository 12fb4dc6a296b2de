package actions

import (
	"context"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/bankfeed"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage/storagetest"
)

func newConnection(t *testing.T, mem *storagetest.Memory, companyID uuid.UUID) uuid.UUID {
	t.Helper()
	create := &CreateBankConnection{CompanyID: companyID, Provider: "csv", Name: "Operating"}
	require.NoError(t, run(t, mem, create))
	return create.Connection.ID
}

var statement = []bankfeed.Transaction{
	{ExternalID: "t-1", Date: day1, Amount: dec("-57.50"), Description: "OFFICE DEPOT"},
	{ExternalID: "t-2", Date: day1.AddDate(0, 0, 2), Amount: dec("1150.00"), Description: "ACME PAYMENT"},
}

func TestCreateBankConnection_DefaultsToCashAtBank(t *testing.T) {
	mem := storagetest.NewMemory()
	companyID := newCompany(t, mem, "USD")

	create := &CreateBankConnection{CompanyID: companyID, Provider: "plaid", Name: "Operating", ExternalRef: "acc-9"}
	require.NoError(t, run(t, mem, create))
	assert.Equal(t, ledger.CodeCashAtBank, create.Connection.AccountCode)
	assert.Equal(t, "acc-9", create.Connection.ExternalRef)
}

func TestCreateBankConnection_RequiresAssetAccount(t *testing.T) {
	mem := storagetest.NewMemory()
	companyID := newCompany(t, mem, "USD")

	err := run(t, mem, &CreateBankConnection{CompanyID: companyID, Provider: "plaid", Name: "Card", AccountCode: "2000"})
	assert.ErrorIs(t, err, ledger.ErrMapping)
}

func TestImportBankTransactions_Idempotent(t *testing.T) {
	mem := storagetest.NewMemory()
	companyID := newCompany(t, mem, "USD")
	connID := newConnection(t, mem, companyID)

	first := &ImportBankTransactions{CompanyID: companyID, ConnectionID: connID, Lines: statement}
	require.NoError(t, run(t, mem, first))
	assert.Equal(t, int64(2), first.Imported)
	assert.Zero(t, first.Skipped)

	second := &ImportBankTransactions{CompanyID: companyID, ConnectionID: connID, Lines: statement}
	require.NoError(t, run(t, mem, second))
	assert.Zero(t, second.Imported)
	assert.Equal(t, int64(2), second.Skipped)

	open, err := mem.Banking().ListUnreconciled(context.Background(), companyID)
	require.NoError(t, err)
	assert.Len(t, open, 2)

	conn, err := mem.Banking().FindConnection(context.Background(), companyID, connID)
	require.NoError(t, err)
	assert.NotNil(t, conn.LastSyncedAt)
}

func TestImportBankTransactions_RejectsLineWithoutID(t *testing.T) {
	mem := storagetest.NewMemory()
	companyID := newCompany(t, mem, "USD")
	connID := newConnection(t, mem, companyID)

	err := run(t, mem, &ImportBankTransactions{
		CompanyID:    companyID,
		ConnectionID: connID,
		Lines:        []bankfeed.Transaction{{Date: day1, Amount: dec("1")}},
	})
	assert.ErrorIs(t, err, ledger.ErrValidation)
}

func TestImportBankTransactions_UnknownConnection(t *testing.T) {
	mem := storagetest.NewMemory()
	companyID := newCompany(t, mem, "USD")

	err := run(t, mem, &ImportBankTransactions{CompanyID: companyID, ConnectionID: uuid.Must(uuid.NewV7()), Lines: statement})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func importStatement(t *testing.T, mem *storagetest.Memory, companyID uuid.UUID) []uuid.UUID {
	t.Helper()
	connID := newConnection(t, mem, companyID)
	require.NoError(t, run(t, mem, &ImportBankTransactions{CompanyID: companyID, ConnectionID: connID, Lines: statement}))
	open, err := mem.Banking().ListUnreconciled(context.Background(), companyID)
	require.NoError(t, err)
	ids := make([]uuid.UUID, len(open))
	for i, txn := range open {
		ids[i] = txn.ID
	}
	return ids
}

func TestReconcileTransaction(t *testing.T) {
	mem := storagetest.NewMemory()
	companyID := newCompany(t, mem, "USD")
	ids := importStatement(t, mem, companyID)

	reconcile := &ReconcileTransaction{CompanyID: companyID, TransactionID: ids[0]}
	require.NoError(t, run(t, mem, reconcile))
	assert.True(t, reconcile.Transaction.IsReconciled)
	assert.NotNil(t, reconcile.Transaction.ReconciledAt)
	assert.False(t, reconcile.AlreadyReconciled)

	open, err := mem.Banking().ListUnreconciled(context.Background(), companyID)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, ids[1], open[0].ID)
}

func TestReconcileTransaction_AlreadyReconciledIsNoOp(t *testing.T) {
	mem := storagetest.NewMemory()
	companyID := newCompany(t, mem, "USD")
	ids := importStatement(t, mem, companyID)

	require.NoError(t, run(t, mem, &ReconcileTransaction{CompanyID: companyID, TransactionID: ids[0]}))
	before, err := mem.Banking().FindTransaction(context.Background(), companyID, ids[0])
	require.NoError(t, err)

	again := &ReconcileTransaction{CompanyID: companyID, TransactionID: ids[0]}
	require.NoError(t, run(t, mem, again))
	assert.True(t, again.AlreadyReconciled)

	after, err := mem.Banking().FindTransaction(context.Background(), companyID, ids[0])
	require.NoError(t, err)
	assert.Equal(t, before.ReconciledAt, after.ReconciledAt)
}

func TestReconcileTransaction_WithJournal(t *testing.T) {
	mem := storagetest.NewMemory()
	companyID := newCompany(t, mem, "USD")
	ids := importStatement(t, mem, companyID)
	post := &PostJournalEntry{Document: expenseDoc(companyID)}
	require.NoError(t, run(t, mem, post))

	reconcile := &ReconcileTransaction{CompanyID: companyID, TransactionID: ids[0], JournalID: post.Entry.ID}
	require.NoError(t, run(t, mem, reconcile))
	assert.True(t, reconcile.Transaction.JournalID.Valid)
	assert.Equal(t, post.Entry.ID, reconcile.Transaction.JournalID.UUID)

	err := run(t, mem, &ReconcileTransaction{CompanyID: companyID, TransactionID: ids[1], JournalID: uuid.Must(uuid.NewV7())})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestReconcileTransaction_NotFound(t *testing.T) {
	mem := storagetest.NewMemory()
	companyA := newCompany(t, mem, "USD")
	companyB := newCompany(t, mem, "USD")
	ids := importStatement(t, mem, companyA)

	err := run(t, mem, &ReconcileTransaction{CompanyID: companyA, TransactionID: uuid.Must(uuid.NewV7())})
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	err = run(t, mem, &ReconcileTransaction{CompanyID: companyB, TransactionID: ids[0]})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}
