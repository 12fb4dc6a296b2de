package actions

import (
	"context"
	"errors"
	"testing"

	"github.com/gofrs/uuid/v5"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carson-networks/ledger-server/internal/ledger"
	"github.com/carson-networks/ledger-server/internal/storage/company"
	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
	"github.com/carson-networks/ledger-server/internal/storage/storagetest"
)

func expenseDoc(companyID uuid.UUID) *ledger.SourceDocument {
	return &ledger.SourceDocument{
		CompanyID:   companyID,
		SourceType:  ledger.SourceExpense,
		SourceID:    uuid.Must(uuid.NewV7()),
		Date:        day1,
		Amount:      dec("57.50"),
		TaxRate:     dec("0.15"),
		AccountCode: "6400",
		Memo:        "Printer paper",
	}
}

func TestPostJournalEntry_Document(t *testing.T) {
	mem := storagetest.NewMemory()
	companyID := newCompany(t, mem, "USD")

	post := &PostJournalEntry{Document: expenseDoc(companyID)}
	require.NoError(t, run(t, mem, post))

	entry := post.Entry
	require.NotNil(t, entry)
	assert.NotEqual(t, uuid.Nil, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	for i, l := range entry.Lines {
		assert.NotEqual(t, uuid.Nil, l.ID)
		assert.Equal(t, i+1, l.LineNo)
	}

	stored, err := mem.Journals().FindByID(context.Background(), companyID, entry.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	debit, credit := stored.Totals()
	assert.True(t, debit.Equal(dec("57.50")))
	assert.True(t, credit.Equal(dec("57.50")))
}

func TestPostJournalEntry_DuplicateSource(t *testing.T) {
	mem := storagetest.NewMemory()
	companyID := newCompany(t, mem, "USD")
	doc := expenseDoc(companyID)

	first := &PostJournalEntry{Document: doc}
	require.NoError(t, run(t, mem, first))

	err := run(t, mem, &PostJournalEntry{Document: doc})
	require.ErrorIs(t, err, ledger.ErrDuplicatePosting)

	var le *ledger.Error
	require.True(t, errors.As(err, &le))
	assert.Equal(t, first.Entry.ID, le.JournalID)
	assert.Equal(t, 1, mem.JournalCount())
}

func TestPostJournalEntry_DuplicateSourceOtherCompany(t *testing.T) {
	mem := storagetest.NewMemory()
	companyA := newCompany(t, mem, "USD")
	companyB := newCompany(t, mem, "USD")

	docA := expenseDoc(companyA)
	require.NoError(t, run(t, mem, &PostJournalEntry{Document: docA}))

	docB := expenseDoc(companyB)
	docB.SourceID = docA.SourceID
	err := run(t, mem, &PostJournalEntry{Document: docB})
	require.ErrorIs(t, err, ledger.ErrDuplicatePosting)

	var le *ledger.Error
	require.True(t, errors.As(err, &le))
	assert.Equal(t, uuid.Nil, le.JournalID)
	assert.Equal(t, 1, mem.JournalCount())
}

func TestPostJournalEntry_ConcurrentDuplicateCaughtByIndex(t *testing.T) {
	mem := storagetest.NewMemory()
	companyID := newCompany(t, mem, "USD")
	mem.Fail("journals.Insert", &pq.Error{Code: "23505", Constraint: sqlconfig.ConstraintJournalSource})

	err := run(t, mem, &PostJournalEntry{Document: expenseDoc(companyID)})
	require.ErrorIs(t, err, ledger.ErrDuplicatePosting)

	var le *ledger.Error
	require.True(t, errors.As(err, &le))
	assert.Equal(t, uuid.Nil, le.JournalID)
}

func TestPostJournalEntry_StoreFailureIsPersistenceError(t *testing.T) {
	mem := storagetest.NewMemory()
	companyID := newCompany(t, mem, "USD")
	mem.Fail("journals.Insert", errors.New("connection reset"))

	err := run(t, mem, &PostJournalEntry{Document: expenseDoc(companyID)})
	assert.ErrorIs(t, err, ledger.ErrPersistence)
	assert.Zero(t, mem.JournalCount())
}

func TestPostJournalEntry_MappingErrorPersistsNothing(t *testing.T) {
	mem := storagetest.NewMemory()
	companyID := newCompany(t, mem, "USD")
	doc := expenseDoc(companyID)
	doc.AccountCode = "9999"

	err := run(t, mem, &PostJournalEntry{Document: doc})
	assert.ErrorIs(t, err, ledger.ErrMapping)
	assert.Zero(t, mem.JournalCount())
}

func TestPostJournalEntry_UnknownCompany(t *testing.T) {
	mem := storagetest.NewMemory()
	err := run(t, mem, &PostJournalEntry{Document: expenseDoc(uuid.Must(uuid.NewV7()))})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestPostJournalEntry_NoChart(t *testing.T) {
	mem := storagetest.NewMemory()
	ctx := context.Background()
	bare := &company.Company{ID: uuid.Must(uuid.NewV7()), Name: "Bare", BaseCurrency: "USD"}
	writer, err := mem.Write(ctx)
	require.NoError(t, err)
	require.NoError(t, writer.Companies.Insert(ctx, bare))
	require.NoError(t, writer.Commit())

	err = run(t, mem, &PostJournalEntry{Document: expenseDoc(bare.ID)})
	assert.ErrorIs(t, err, ledger.ErrConfiguration)
}

func TestPostJournalEntry_RequiresExactlyOneInput(t *testing.T) {
	mem := storagetest.NewMemory()
	err := run(t, mem, &PostJournalEntry{})
	assert.ErrorIs(t, err, ledger.ErrValidation)
}

func TestPostJournalEntry_Manual(t *testing.T) {
	mem := storagetest.NewMemory()
	companyID := newCompany(t, mem, "USD")

	post := &PostJournalEntry{Manual: &ledger.ManualEntry{
		CompanyID: companyID,
		Date:      day1,
		Memo:      "Owner contribution",
		Lines: []ledger.ManualLine{
			{AccountCode: "1000", Debit: dec("5000")},
			{AccountCode: "3000", Credit: dec("5000")},
		},
	}}
	require.NoError(t, run(t, mem, post))
	assert.Equal(t, ledger.SourceManual, post.Entry.SourceType)
	assert.Equal(t, uuid.Nil, post.Entry.SourceID)

	// Manual entries without a source id never collide.
	again := &PostJournalEntry{Manual: post.Manual}
	require.NoError(t, run(t, mem, again))
	assert.Equal(t, 2, mem.JournalCount())
}

func TestPostJournalEntry_ManualUnbalanced(t *testing.T) {
	mem := storagetest.NewMemory()
	companyID := newCompany(t, mem, "USD")

	err := run(t, mem, &PostJournalEntry{Manual: &ledger.ManualEntry{
		CompanyID: companyID,
		Date:      day1,
		Lines: []ledger.ManualLine{
			{AccountCode: "1000", Debit: dec("100")},
			{AccountCode: "3000", Credit: dec("90")},
		},
	}})
	assert.ErrorIs(t, err, ledger.ErrIntegrity)
	assert.Zero(t, mem.JournalCount())
}

// -- ReverseJournalEntry tests --

func TestReverseJournalEntry(t *testing.T) {
	mem := storagetest.NewMemory()
	companyID := newCompany(t, mem, "USD")
	post := &PostJournalEntry{Document: expenseDoc(companyID)}
	require.NoError(t, run(t, mem, post))

	reverse := &ReverseJournalEntry{CompanyID: companyID, JournalID: post.Entry.ID, Date: day1.AddDate(0, 0, 3)}
	require.NoError(t, run(t, mem, reverse))

	rev := reverse.Entry
	assert.Equal(t, ledger.SourceReversal, rev.SourceType)
	assert.Equal(t, post.Entry.ID, rev.SourceID)
	assert.Equal(t, post.Entry.ID, rev.ReversesID)
	require.Len(t, rev.Lines, len(post.Entry.Lines))
	for i := range rev.Lines {
		assert.True(t, rev.Lines[i].Debit.Equal(post.Entry.Lines[i].Credit))
		assert.True(t, rev.Lines[i].Credit.Equal(post.Entry.Lines[i].Debit))
	}

	totals, err := mem.Journals().AccountTotals(context.Background(), companyID, nil)
	require.NoError(t, err)
	for _, tot := range totals {
		assert.True(t, tot.Debit.Equal(tot.Credit), "account %s not netted out", tot.AccountID)
	}
}

func TestReverseJournalEntry_Twice(t *testing.T) {
	mem := storagetest.NewMemory()
	companyID := newCompany(t, mem, "USD")
	post := &PostJournalEntry{Document: expenseDoc(companyID)}
	require.NoError(t, run(t, mem, post))

	first := &ReverseJournalEntry{CompanyID: companyID, JournalID: post.Entry.ID}
	require.NoError(t, run(t, mem, first))

	err := run(t, mem, &ReverseJournalEntry{CompanyID: companyID, JournalID: post.Entry.ID})
	assert.ErrorIs(t, err, ledger.ErrDuplicatePosting)

	err = run(t, mem, &ReverseJournalEntry{CompanyID: companyID, JournalID: first.Entry.ID})
	assert.ErrorIs(t, err, ledger.ErrValidation)
}

func TestReverseJournalEntry_NotFound(t *testing.T) {
	mem := storagetest.NewMemory()
	companyID := newCompany(t, mem, "USD")

	err := run(t, mem, &ReverseJournalEntry{CompanyID: companyID, JournalID: uuid.Must(uuid.NewV7())})
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}
