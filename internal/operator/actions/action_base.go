package actions

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/company"
	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

// IAction is one unit of work the operator runs inside a single transaction.
type IAction interface {
	Perform(ctx context.Context, writer *storage.Writer) error
}

// NewID is the id generator for every row the actions create.
var NewID = func() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// Now stamps reconciliation and scheduler runs.
var Now = func() time.Time {
	return time.Now().UTC()
}

func loadCompany(ctx context.Context, writer *storage.Writer, companyID uuid.UUID) (*company.Company, error) {
	c, err := writer.Companies.FindByID(ctx, companyID)
	if err != nil {
		return nil, ledger.NewPersistenceError("company.FindByID", err)
	}
	if c == nil {
		return nil, ledger.NewNotFoundError("company %s not found", companyID)
	}
	return c, nil
}

func loadChart(ctx context.Context, writer *storage.Writer, companyID uuid.UUID) (*ledger.Chart, error) {
	accounts, err := writer.Accounts.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, ledger.NewPersistenceError("account.ListByCompany", err)
	}
	if len(accounts) == 0 {
		return nil, ledger.NewConfigurationError("company %s has no chart of accounts", companyID)
	}
	return ledger.NewChart(accounts), nil
}

// postEntry assigns ids and stores a built entry. An entry that already exists
// for the same source document is reported as a duplicate posting. When the
// unique index catches a concurrent post the existing id is not known yet and
// JournalID is left nil; the transaction is aborted at that point. The id of an
// entry owned by another company is never reported.
func postEntry(ctx context.Context, writer *storage.Writer, entry *ledger.JournalEntry) error {
	if entry.SourceID != uuid.Nil {
		existing, err := writer.Journals.FindBySource(ctx, entry.CompanyID, entry.SourceType, entry.SourceID)
		if err != nil {
			return ledger.NewPersistenceError("journal.FindBySource", err)
		}
		if existing != nil {
			return ledger.NewDuplicatePostingError(entry.SourceType, entry.SourceID, existing.ID)
		}
	}

	entry.ID = NewID()
	for i := range entry.Lines {
		entry.Lines[i].ID = NewID()
		entry.Lines[i].LineNo = i + 1
	}

	if err := writer.Journals.Insert(ctx, entry); err != nil {
		if sqlconfig.IsUniqueViolation(err, sqlconfig.ConstraintJournalSource) {
			return ledger.NewDuplicatePostingError(entry.SourceType, entry.SourceID, uuid.Nil)
		}
		return ledger.NewPersistenceError("journal.Insert", err)
	}
	return nil
}
