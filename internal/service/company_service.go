package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage/company"
)

// CompanyService handles company onboarding.
type CompanyService struct {
	processor Processor
	readers   Readers
}

// NewCompanyService creates a new CompanyService.
func NewCompanyService(processor Processor, readers Readers) *CompanyService {
	return &CompanyService{processor: processor, readers: readers}
}

// CreateCompany stores a company and seeds its chart of accounts in the same
// transaction. It returns the company and the number of accounts seeded.
func (s *CompanyService) CreateCompany(ctx context.Context, name, baseCurrency string) (*company.Company, int64, error) {
	action := &actions.CreateCompany{Name: name, BaseCurrency: baseCurrency}
	if err := s.processor.Process(ctx, action); err != nil {
		return nil, 0, ledger.Classify("CompanyService.CreateCompany", err)
	}
	return action.Company, action.Accounts, nil
}

// GetCompany returns a company or a NotFound error.
func (s *CompanyService) GetCompany(ctx context.Context, id uuid.UUID) (*company.Company, error) {
	return requireCompany(ctx, s.readers.Companies, id)
}

// ListCompanies returns every company in onboarding order.
func (s *CompanyService) ListCompanies(ctx context.Context) ([]*company.Company, error) {
	companies, err := s.readers.Companies.List(ctx)
	if err != nil {
		return nil, ledger.Classify("company.List", err)
	}
	return companies, nil
}
