package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

// ReportService builds trial balances from posted journal lines.
type ReportService struct {
	readers Readers
}

// NewReportService creates a new ReportService.
func NewReportService(readers Readers) *ReportService {
	return &ReportService{readers: readers}
}

// GetTrialBalance lists every account of the company with its posted totals.
// A non-nil asOf only counts entries dated on or before it.
func (s *ReportService) GetTrialBalance(ctx context.Context, companyID uuid.UUID, asOf *time.Time) (*ledger.TrialBalance, error) {
	c, err := requireCompany(ctx, s.readers.Companies, companyID)
	if err != nil {
		return nil, err
	}
	accounts, err := s.readers.Accounts.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, ledger.Classify("account.ListByCompany", err)
	}
	totals, err := s.readers.Journals.AccountTotals(ctx, companyID, asOf)
	if err != nil {
		return nil, ledger.Classify("journal.AccountTotals", err)
	}
	tb := ledger.BuildTrialBalance(companyID, accounts, totals, asOf)
	tb.Currency = c.BaseCurrency
	return tb, nil
}

// GetConsolidatedTrialBalance pools the trial balances of several companies by
// account code. Repeated ids count once.
func (s *ReportService) GetConsolidatedTrialBalance(ctx context.Context, companyIDs []uuid.UUID, asOf *time.Time) (*ledger.TrialBalance, error) {
	ids, err := ledger.DedupeCompanyIDs(companyIDs)
	if err != nil {
		return nil, err
	}

	balances := make([]*ledger.TrialBalance, 0, len(ids))
	for _, id := range ids {
		tb, err := s.GetTrialBalance(ctx, id, asOf)
		if err != nil {
			return nil, err
		}
		balances = append(balances, tb)
	}
	return ledger.Consolidate(balances...), nil
}
