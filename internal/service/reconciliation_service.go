package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage/banking"
)

// ReconciliationService marks imported bank lines as matched to the ledger.
// Matching is suggest-only; nothing is reconciled without an explicit call.
type ReconciliationService struct {
	processor  Processor
	readers    Readers
	windowDays int
}

// NewReconciliationService creates a new ReconciliationService. windowDays bounds
// how far apart a bank line and a journal entry may be dated to be suggested.
func NewReconciliationService(processor Processor, readers Readers, windowDays int) *ReconciliationService {
	return &ReconciliationService{processor: processor, readers: readers, windowDays: windowDays}
}

// GetUnreconciledTransactions lists the company's open bank lines, oldest first.
func (s *ReconciliationService) GetUnreconciledTransactions(ctx context.Context, companyID uuid.UUID) ([]*banking.Transaction, error) {
	c, err := requireCompany(ctx, s.readers.Companies, companyID)
	if err != nil {
		return nil, err
	}
	txns, err := s.readers.Banking.ListUnreconciled(ctx, companyID)
	if err != nil {
		return nil, ledger.Classify("banking.ListUnreconciled", err)
	}
	for _, t := range txns {
		t.Currency = c.BaseCurrency
	}
	return txns, nil
}

// ReconcileTransaction marks a bank line reconciled, optionally recording the
// journal entry it matches. The returned flag is true when the line was already
// reconciled; it is then returned unchanged whatever journalID was passed.
func (s *ReconciliationService) ReconcileTransaction(ctx context.Context, companyID, transactionID, journalID uuid.UUID) (*banking.Transaction, bool, error) {
	c, err := requireCompany(ctx, s.readers.Companies, companyID)
	if err != nil {
		return nil, false, err
	}
	action := &actions.ReconcileTransaction{CompanyID: companyID, TransactionID: transactionID, JournalID: journalID}
	if err := s.processor.Process(ctx, action); err != nil {
		return nil, false, ledger.Classify("ReconciliationService.ReconcileTransaction", err)
	}
	action.Transaction.Currency = c.BaseCurrency
	return action.Transaction, action.AlreadyReconciled, nil
}

// SuggestMatches ranks journal entries that moved the connection's cash account
// by the bank line's exact amount around its date.
func (s *ReconciliationService) SuggestMatches(ctx context.Context, companyID, transactionID uuid.UUID) ([]ledger.MatchSuggestion, error) {
	c, err := requireCompany(ctx, s.readers.Companies, companyID)
	if err != nil {
		return nil, err
	}
	txn, err := s.readers.Banking.FindTransaction(ctx, companyID, transactionID)
	if err != nil {
		return nil, ledger.Classify("banking.FindTransaction", err)
	}
	if txn == nil {
		return nil, ledger.NewNotFoundError("transaction %s not found", transactionID)
	}

	conn, err := s.readers.Banking.FindConnection(ctx, companyID, txn.BankConnectionID)
	if err != nil {
		return nil, ledger.Classify("banking.FindConnection", err)
	}
	if conn == nil {
		return nil, ledger.NewNotFoundError("bank connection %s not found", txn.BankConnectionID)
	}

	accounts, err := s.readers.Accounts.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, ledger.Classify("account.ListByCompany", err)
	}
	cash, ok := ledger.NewChart(accounts).ByCode(conn.AccountCode)
	if !ok {
		return nil, ledger.NewMappingError("cash account %s of connection %s is not in the chart", conn.AccountCode, conn.ID)
	}

	from := txn.Date.AddDate(0, 0, -s.windowDays)
	to := txn.Date.AddDate(0, 0, s.windowDays)
	movements, err := s.readers.Journals.CashMovements(ctx, companyID, cash.ID, from, to)
	if err != nil {
		return nil, ledger.Classify("journal.CashMovements", err)
	}
	suggestions := ledger.SuggestMatches(txn.Amount, txn.Date, movements, s.windowDays)
	for i := range suggestions {
		suggestions[i].Currency = c.BaseCurrency
	}
	return suggestions, nil
}
