package service

import (
	"context"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/operator/actions"
	"github.com/carson-networks/ledger-server/internal/storage/journal"
)

const defaultJournalLimit = 20

// JournalService posts and reads journal entries.
type JournalService struct {
	processor Processor
	readers   Readers
}

// NewJournalService creates a new JournalService.
func NewJournalService(processor Processor, readers Readers) *JournalService {
	return &JournalService{processor: processor, readers: readers}
}

// JournalQuery narrows a journal listing.
type JournalQuery struct {
	SourceType *ledger.SourceType
	From       *time.Time
	To         *time.Time
}

// PostDocument builds the entry for a source document and stores it. Posting the
// same document twice fails with a DuplicatePostingError naming the stored entry.
func (s *JournalService) PostDocument(ctx context.Context, doc ledger.SourceDocument) (*ledger.JournalEntry, error) {
	action := &actions.PostJournalEntry{Document: &doc}
	if err := s.processor.Process(ctx, action); err != nil {
		return nil, s.resolveDuplicate(ctx, doc.CompanyID, doc.SourceType, doc.SourceID, err)
	}
	return action.Entry, nil
}

// PostManual stores a hand-written entry.
func (s *JournalService) PostManual(ctx context.Context, entry ledger.ManualEntry) (*ledger.JournalEntry, error) {
	action := &actions.PostJournalEntry{Manual: &entry}
	if err := s.processor.Process(ctx, action); err != nil {
		return nil, s.resolveDuplicate(ctx, entry.CompanyID, ledger.SourceManual, entry.SourceID, err)
	}
	return action.Entry, nil
}

// Reverse posts the mirror image of an entry. A zero date reverses on the original's date.
func (s *JournalService) Reverse(ctx context.Context, companyID, journalID uuid.UUID, date time.Time, memo string) (*ledger.JournalEntry, error) {
	action := &actions.ReverseJournalEntry{CompanyID: companyID, JournalID: journalID, Date: date, Memo: memo}
	if err := s.processor.Process(ctx, action); err != nil {
		return nil, s.resolveDuplicate(ctx, companyID, ledger.SourceReversal, journalID, err)
	}
	return action.Entry, nil
}

// GetEntry returns an entry with its lines.
func (s *JournalService) GetEntry(ctx context.Context, companyID, journalID uuid.UUID) (*ledger.JournalEntry, error) {
	c, err := requireCompany(ctx, s.readers.Companies, companyID)
	if err != nil {
		return nil, err
	}
	entry, err := s.readers.Journals.FindByID(ctx, companyID, journalID)
	if err != nil {
		return nil, ledger.Classify("journal.FindByID", err)
	}
	if entry == nil {
		return nil, ledger.NewNotFoundError("journal %s not found", journalID)
	}
	entry.Currency = c.BaseCurrency
	return entry, nil
}

// ListEntries returns a page of a company's entries, newest first. A nil cursor
// starts at the first page; pass the returned cursor back to continue.
func (s *JournalService) ListEntries(ctx context.Context, companyID uuid.UUID, query JournalQuery, cursor *journal.JournalCursor) ([]*ledger.JournalEntry, *journal.JournalCursor, error) {
	c, err := requireCompany(ctx, s.readers.Companies, companyID)
	if err != nil {
		return nil, nil, err
	}
	filter := &journal.JournalFilter{
		CompanyID:  companyID,
		SourceType: query.SourceType,
		From:       query.From,
		To:         query.To,
		Limit:      defaultJournalLimit,
	}
	if cursor != nil {
		filter.Limit = cursor.Limit
		filter.Offset = cursor.Position
		filter.MaxCreationTime = &cursor.MaxCreationTime
	}

	result, err := s.readers.Journals.List(ctx, filter)
	if err != nil {
		return nil, nil, ledger.Classify("journal.List", err)
	}
	for _, e := range result.Journals {
		e.Currency = c.BaseCurrency
	}
	return result.Journals, result.NextCursor, nil
}

// resolveDuplicate fills in the stored entry's id when the unique index caught
// the duplicate inside the aborted transaction. Only the company's own entries
// are looked up.
func (s *JournalService) resolveDuplicate(ctx context.Context, companyID uuid.UUID, sourceType ledger.SourceType, sourceID uuid.UUID, err error) error {
	var le *ledger.Error
	if !errors.As(err, &le) || le.Kind != ledger.KindDuplicatePosting || le.JournalID != uuid.Nil || sourceID == uuid.Nil {
		return ledger.Classify("JournalService.Post", err)
	}
	existing, findErr := s.readers.Journals.FindBySource(ctx, companyID, sourceType, sourceID)
	if findErr != nil || existing == nil {
		return err
	}
	return ledger.NewDuplicatePostingError(sourceType, sourceID, existing.ID)
}
