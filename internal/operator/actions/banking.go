package actions

import (
	"context"
	"strings"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/bankfeed"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/banking"
)

// CreateBankConnection links a bank account to one of the company's asset accounts.
type CreateBankConnection struct {
	CompanyID   uuid.UUID
	Provider    string
	Name        string
	ExternalRef string
	// AccountCode defaults to Cash at Bank.
	AccountCode string

	// Set by Perform.
	Connection *banking.Connection

	IAction
}

func (c *CreateBankConnection) Perform(ctx context.Context, writer *storage.Writer) error {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Provider) == "" {
		return ledger.NewValidationError("connection name and provider are required")
	}
	code := c.AccountCode
	if code == "" {
		code = ledger.CodeCashAtBank
	}

	if _, err := loadCompany(ctx, writer, c.CompanyID); err != nil {
		return err
	}
	chart, err := loadChart(ctx, writer, c.CompanyID)
	if err != nil {
		return err
	}
	acc, ok := chart.ByCode(code)
	if !ok || acc.Type != ledger.AccountTypeAsset {
		return ledger.NewMappingError("bank connections need an asset account, %s is not one", code)
	}

	conn := &banking.Connection{
		ID:          NewID(),
		CompanyID:   c.CompanyID,
		Provider:    strings.TrimSpace(c.Provider),
		Name:        strings.TrimSpace(c.Name),
		ExternalRef: c.ExternalRef,
		AccountCode: code,
	}
	if err := writer.Banking.InsertConnection(ctx, conn); err != nil {
		return ledger.NewPersistenceError("banking.InsertConnection", err)
	}
	c.Connection = conn
	return nil
}

// ImportBankTransactions stores fetched statement lines for a connection. Lines
// already imported are skipped, so repeating an import changes nothing.
type ImportBankTransactions struct {
	CompanyID    uuid.UUID
	ConnectionID uuid.UUID
	Lines        []bankfeed.Transaction

	// Set by Perform.
	Imported int64
	Skipped  int64

	IAction
}

func (i *ImportBankTransactions) Perform(ctx context.Context, writer *storage.Writer) error {
	conn, err := writer.Banking.FindConnection(ctx, i.CompanyID, i.ConnectionID)
	if err != nil {
		return ledger.NewPersistenceError("banking.FindConnection", err)
	}
	if conn == nil {
		return ledger.NewNotFoundError("bank connection %s not found", i.ConnectionID)
	}

	seen := make(map[string]bool, len(i.Lines))
	rows := make([]*banking.Transaction, 0, len(i.Lines))
	for n, line := range i.Lines {
		if line.ExternalID == "" {
			return ledger.NewValidationError("line %d has no external id", n+1)
		}
		if line.Date.IsZero() {
			return ledger.NewValidationError("line %d has no date", n+1)
		}
		if seen[line.ExternalID] {
			continue
		}
		seen[line.ExternalID] = true
		rows = append(rows, &banking.Transaction{
			ID:               NewID(),
			CompanyID:        i.CompanyID,
			BankConnectionID: conn.ID,
			ExternalID:       line.ExternalID,
			Date:             line.Date,
			Amount:           line.Amount,
			Description:      line.Description,
		})
	}

	n, err := writer.Banking.InsertTransactions(ctx, rows)
	if err != nil {
		return ledger.NewPersistenceError("banking.InsertTransactions", err)
	}
	if err := writer.Banking.MarkSynced(ctx, conn.ID, Now()); err != nil {
		return ledger.NewPersistenceError("banking.MarkSynced", err)
	}

	i.Imported = n
	i.Skipped = int64(len(i.Lines)) - n
	return nil
}

// ReconcileTransaction marks an imported bank line as matched to the ledger.
// Reconciling a reconciled line changes nothing.
type ReconcileTransaction struct {
	CompanyID     uuid.UUID
	TransactionID uuid.UUID
	// JournalID optionally records the entry the line was matched with.
	JournalID uuid.UUID

	// Set by Perform.
	Transaction       *banking.Transaction
	AlreadyReconciled bool

	IAction
}

func (r *ReconcileTransaction) Perform(ctx context.Context, writer *storage.Writer) error {
	txn, err := writer.Banking.FindTransactionForUpdate(ctx, r.CompanyID, r.TransactionID)
	if err != nil {
		return ledger.NewPersistenceError("banking.FindTransactionForUpdate", err)
	}
	if txn == nil {
		return ledger.NewNotFoundError("transaction %s not found", r.TransactionID)
	}
	if txn.IsReconciled {
		r.Transaction = txn
		r.AlreadyReconciled = true
		return nil
	}

	if r.JournalID != uuid.Nil {
		entry, err := writer.Journals.FindByID(ctx, r.CompanyID, r.JournalID)
		if err != nil {
			return ledger.NewPersistenceError("journal.FindByID", err)
		}
		if entry == nil {
			return ledger.NewNotFoundError("journal %s not found", r.JournalID)
		}
	}

	at := Now()
	if err := writer.Banking.MarkReconciled(ctx, txn.ID, r.JournalID, at); err != nil {
		return ledger.NewPersistenceError("banking.MarkReconciled", err)
	}
	txn.IsReconciled = true
	txn.ReconciledAt = &at
	txn.JournalID = uuid.NullUUID{UUID: r.JournalID, Valid: r.JournalID != uuid.Nil}
	r.Transaction = txn
	return nil
}
