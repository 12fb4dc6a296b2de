package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage"
)

// PostJournalEntry builds and stores the entry for exactly one of Document or Manual.
type PostJournalEntry struct {
	Document *ledger.SourceDocument
	Manual   *ledger.ManualEntry

	// Set by Perform.
	Entry *ledger.JournalEntry

	IAction
}

func (p *PostJournalEntry) Perform(ctx context.Context, writer *storage.Writer) error {
	if (p.Document == nil) == (p.Manual == nil) {
		return ledger.NewValidationError("exactly one of document or manual entry is required")
	}

	companyID := p.companyID()
	c, err := loadCompany(ctx, writer, companyID)
	if err != nil {
		return err
	}
	chart, err := loadChart(ctx, writer, companyID)
	if err != nil {
		return err
	}

	builder := ledger.NewBuilder(c.BaseCurrency)
	var entry *ledger.JournalEntry
	if p.Document != nil {
		entry, err = builder.Build(*p.Document, chart)
	} else {
		entry, err = builder.BuildManual(*p.Manual, chart)
	}
	if err != nil {
		return err
	}

	if err := postEntry(ctx, writer, entry); err != nil {
		return err
	}
	p.Entry = entry
	return nil
}

func (p *PostJournalEntry) companyID() uuid.UUID {
	if p.Document != nil {
		return p.Document.CompanyID
	}
	return p.Manual.CompanyID
}
