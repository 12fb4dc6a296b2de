package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/billing"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage/recurring"
)

// RecurringService schedules and issues recurring invoices.
type RecurringService struct {
	processor Processor
	readers   Readers
	logger    *logrus.Logger
}

// NewRecurringService creates a new RecurringService.
func NewRecurringService(processor Processor, readers Readers, logger *logrus.Logger) *RecurringService {
	return &RecurringService{processor: processor, readers: readers, logger: logger}
}

// Profile is the input for a recurring invoice profile.
type Profile struct {
	ClientID         uuid.UUID
	Interval         billing.Interval
	AnchorDay        int
	StartDate        time.Time
	TaxRate          decimal.Decimal
	RevenueCode      string
	PaymentTermsDays int
	Items            billing.Items
}

// RunResult is the outcome of processing one due profile.
type RunResult struct {
	ProfileID   uuid.UUID
	CompanyID   uuid.UUID
	Skipped     bool
	InvoiceID   uuid.UUID
	JournalID   uuid.UUID
	NextRunDate time.Time
	// Error is empty on success.
	Error string
}

// CreateProfile stores a recurring profile. Its first run is on StartDate.
func (s *RecurringService) CreateProfile(ctx context.Context, companyID uuid.UUID, p Profile) (*recurring.Profile, error) {
	action := &actions.CreateRecurringProfile{
		CompanyID:        companyID,
		ClientID:         p.ClientID,
		Interval:         p.Interval,
		AnchorDay:        p.AnchorDay,
		StartDate:        p.StartDate,
		TaxRate:          p.TaxRate,
		RevenueCode:      p.RevenueCode,
		PaymentTermsDays: p.PaymentTermsDays,
		Items:            p.Items,
	}
	if err := s.processor.Process(ctx, action); err != nil {
		return nil, ledger.Classify("RecurringService.CreateProfile", err)
	}
	return action.Profile, nil
}

// ProcessDue issues one invoice for every active profile due on or before today
// and advances its schedule. companyID uuid.Nil processes every company. Each
// profile runs in its own transaction; a failure is reported in that profile's
// result and the rest still run.
func (s *RecurringService) ProcessDue(ctx context.Context, companyID uuid.UUID, today time.Time) ([]RunResult, error) {
	if companyID != uuid.Nil {
		if _, err := requireCompany(ctx, s.readers.Companies, companyID); err != nil {
			return nil, err
		}
	}
	if today.IsZero() {
		today = actions.Now()
	}
	today = billing.Day(today)

	due, err := s.readers.Recurring.ListDue(ctx, companyID, today)
	if err != nil {
		return nil, ledger.Classify("recurring.ListDue", err)
	}

	results := make([]RunResult, 0, len(due))
	for _, p := range due {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		run := &actions.RunRecurringProfile{ProfileID: p.ID, Today: today}
		result := RunResult{ProfileID: p.ID, CompanyID: p.CompanyID}

		log := s.logger.WithFields(logrus.Fields{
			"company_id": p.CompanyID,
			"profile_id": p.ID,
		})
		if err := s.processor.Process(ctx, run); err != nil {
			result.Error = ledger.Classify("RecurringService.ProcessDue", err).Error()
			log.WithError(err).Warn("RecurringService.ProcessDue.profile")
			results = append(results, result)
			continue
		}

		result.Skipped = run.Skipped
		result.InvoiceID = run.InvoiceID
		result.JournalID = run.JournalID
		result.NextRunDate = run.NextRunDate
		log.WithFields(logrus.Fields{
			"skipped":       run.Skipped,
			"invoice_id":    run.InvoiceID,
			"next_run_date": run.NextRunDate.Format(time.DateOnly),
		}).Info("RecurringService.ProcessDue.profile")
		results = append(results, result)
	}
	return results, nil
}
