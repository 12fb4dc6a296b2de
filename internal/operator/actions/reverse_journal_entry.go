package actions

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// ReverseJournalEntry posts the correcting entry for an existing journal.
// The original is never modified.
type ReverseJournalEntry struct {
	CompanyID uuid.UUID
	JournalID uuid.UUID
	Date      time.Time
	Memo      string

	// Set by Perform.
	Entry *ledger.JournalEntry

	IAction
}

func (r *ReverseJournalEntry) Perform(ctx context.Context, writer *storage.Writer) error {
	c, err := loadCompany(ctx, writer, r.CompanyID)
	if err != nil {
		return err
	}
	original, err := writer.Journals.FindByID(ctx, r.CompanyID, r.JournalID)
	if err != nil {
		return ledger.NewPersistenceError("journal.FindByID", err)
	}
	if original == nil {
		return ledger.NewNotFoundError("journal %s not found", r.JournalID)
	}

	original.Currency = c.BaseCurrency
	reversal, err := ledger.Reverse(original, r.Date, r.Memo)
	if err != nil {
		return err
	}
	if err := postEntry(ctx, writer, reversal); err != nil {
		return err
	}
	r.Entry = reversal
	return nil
}
