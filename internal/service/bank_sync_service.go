package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/bankfeed"
	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage/banking"
)

const (
	defaultSyncDays = 30
	syncOverlapDays = 3
)

// BankSyncService imports statement lines from the bank feed and from CSV exports.
type BankSyncService struct {
	processor Processor
	readers   Readers
	provider  bankfeed.Provider
	formats   *bankfeed.Registry
	logger    *logrus.Logger
}

// NewBankSyncService creates a new BankSyncService.
func NewBankSyncService(processor Processor, readers Readers, provider bankfeed.Provider, formats *bankfeed.Registry, logger *logrus.Logger) *BankSyncService {
	return &BankSyncService{
		processor: processor,
		readers:   readers,
		provider:  provider,
		formats:   formats,
		logger:    logger,
	}
}

// SyncResult is the outcome of syncing one connection.
type SyncResult struct {
	ConnectionID uuid.UUID
	Name         string
	Imported     int64
	Skipped      int64
	// Error is empty on success.
	Error string
}

// CreateConnection links a bank account to a cash account of the company.
func (s *BankSyncService) CreateConnection(ctx context.Context, companyID uuid.UUID, provider, name, externalRef, accountCode string) (*banking.Connection, error) {
	action := &actions.CreateBankConnection{
		CompanyID:   companyID,
		Provider:    provider,
		Name:        name,
		ExternalRef: externalRef,
		AccountCode: accountCode,
	}
	if err := s.processor.Process(ctx, action); err != nil {
		return nil, ledger.Classify("BankSyncService.CreateConnection", err)
	}
	return action.Connection, nil
}

// SyncCompany fetches and stores new statement lines for every feed connection
// of the company. A zero from starts a few days before the last sync, or
// defaultSyncDays back for a connection never synced; a zero to means today.
// A failing connection is reported in its result and does not stop the others.
func (s *BankSyncService) SyncCompany(ctx context.Context, companyID uuid.UUID, from, to time.Time) ([]SyncResult, error) {
	if _, err := requireCompany(ctx, s.readers.Companies, companyID); err != nil {
		return nil, err
	}
	conns, err := s.readers.Banking.ListConnections(ctx, companyID)
	if err != nil {
		return nil, ledger.Classify("banking.ListConnections", err)
	}
	if to.IsZero() {
		to = actions.Now()
	}

	results := make([]SyncResult, 0, len(conns))
	for _, conn := range conns {
		if conn.ExternalRef == "" {
			continue
		}
		result := SyncResult{ConnectionID: conn.ID, Name: conn.Name}
		imported, skipped, err := s.syncConnection(ctx, conn, syncStart(conn, from, to), to)
		result.Imported, result.Skipped = imported, skipped

		log := s.logger.WithFields(logrus.Fields{
			"company_id":    companyID,
			"connection_id": conn.ID,
			"imported":      imported,
			"skipped":       skipped,
		})
		if err != nil {
			result.Error = err.Error()
			log.WithError(err).Warn("BankSyncService.SyncCompany.connection")
		} else {
			log.Info("BankSyncService.SyncCompany.connection")
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *BankSyncService) syncConnection(ctx context.Context, conn *banking.Connection, from, to time.Time) (int64, int64, error) {
	lines, err := s.provider.Fetch(ctx, conn.ExternalRef, from, to)
	if err != nil {
		return 0, 0, err
	}
	action := &actions.ImportBankTransactions{CompanyID: conn.CompanyID, ConnectionID: conn.ID, Lines: lines}
	if err := s.processor.Process(ctx, action); err != nil {
		return 0, 0, ledger.Classify("BankSyncService.SyncCompany", err)
	}
	return action.Imported, action.Skipped, nil
}

func syncStart(conn *banking.Connection, from, to time.Time) time.Time {
	if !from.IsZero() {
		return from
	}
	if conn.LastSyncedAt != nil {
		return conn.LastSyncedAt.AddDate(0, 0, -syncOverlapDays)
	}
	return to.AddDate(0, 0, -defaultSyncDays)
}

// ImportCSV parses a bank CSV export in the named format and stores its lines
// on the connection. Lines imported before are skipped.
func (s *BankSyncService) ImportCSV(ctx context.Context, companyID, connectionID uuid.UUID, format string, r io.Reader) (int64, int64, error) {
	parser := s.formats.Get(format)
	if parser == nil {
		return 0, 0, ledger.NewValidationError("unknown csv format %q, expected one of %s", format, strings.Join(s.formats.Formats(), ", "))
	}
	lines, err := parser.Parse(r)
	if err != nil {
		return 0, 0, ledger.NewValidationError("parse %s csv: %s", parser.Format(), err.Error())
	}

	action := &actions.ImportBankTransactions{CompanyID: companyID, ConnectionID: connectionID, Lines: lines}
	if err := s.processor.Process(ctx, action); err != nil {
		return 0, 0, ledger.Classify("BankSyncService.ImportCSV", err)
	}
	return action.Imported, action.Skipped, nil
}
