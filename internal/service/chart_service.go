package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage/account"
)

// ChartService handles the chart of accounts.
type ChartService struct {
	processor Processor
	readers   Readers
}

// NewChartService creates a new ChartService.
func NewChartService(processor Processor, readers Readers) *ChartService {
	return &ChartService{processor: processor, readers: readers}
}

// NewAccount describes a custom account added to a seeded chart.
type NewAccount struct {
	Code        string
	Name        string
	Type        ledger.AccountType
	Description string
}

// InitializeChartOfAccounts seeds the standard chart. It reports false and
// changes nothing when the company already has accounts.
func (s *ChartService) InitializeChartOfAccounts(ctx context.Context, companyID uuid.UUID) (bool, error) {
	action := &actions.SeedChart{CompanyID: companyID}
	if err := s.processor.Process(ctx, action); err != nil {
		return false, ledger.Classify("ChartService.InitializeChartOfAccounts", err)
	}
	return action.Seeded, nil
}

// GetChartOfAccounts returns the company's accounts ordered by code.
func (s *ChartService) GetChartOfAccounts(ctx context.Context, companyID uuid.UUID) ([]ledger.Account, error) {
	if _, err := requireCompany(ctx, s.readers.Companies, companyID); err != nil {
		return nil, err
	}
	accounts, err := s.readers.Accounts.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, ledger.Classify("account.ListByCompany", err)
	}
	return accounts, nil
}

// CreateAccount adds a custom account. Its normal balance follows its type.
func (s *ChartService) CreateAccount(ctx context.Context, companyID uuid.UUID, a NewAccount) (*ledger.Account, error) {
	action := &actions.CreateAccount{
		CompanyID:   companyID,
		Code:        a.Code,
		Name:        a.Name,
		Type:        a.Type,
		Description: a.Description,
	}
	if err := s.processor.Process(ctx, action); err != nil {
		return nil, ledger.Classify("ChartService.CreateAccount", err)
	}
	return action.Account, nil
}

// UpdateAccount changes the set fields of an account.
func (s *ChartService) UpdateAccount(ctx context.Context, companyID, accountID uuid.UUID, update account.AccountUpdate) (*ledger.Account, error) {
	action := &actions.UpdateAccount{CompanyID: companyID, AccountID: accountID, Update: update}
	if err := s.processor.Process(ctx, action); err != nil {
		return nil, ledger.Classify("ChartService.UpdateAccount", err)
	}
	return action.Account, nil
}
