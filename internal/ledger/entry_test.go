package ledger

import (
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postedInvoice(t *testing.T) *JournalEntry {
	t.Helper()
	companyID, chart := newTestChart(t)
	entry, err := NewBuilder("USD").Build(SourceDocument{
		CompanyID:  companyID,
		SourceType: SourceInvoice,
		SourceID:   uuid.Must(uuid.NewV7()),
		Date:       postingDate,
		Amount:     dec("115.00"),
		TaxAmount:  dec("15.00"),
	}, chart)
	require.NoError(t, err)
	entry.ID = uuid.Must(uuid.NewV7())
	return entry
}

func TestValidate(t *testing.T) {
	accountID := uuid.Must(uuid.NewV7())
	tests := []struct {
		name  string
		lines []Line
		ok    bool
	}{
		{"balanced", []Line{
			{AccountID: accountID, Debit: dec("5")},
			{AccountID: accountID, Credit: dec("5")},
		}, true},
		{"empty", nil, false},
		{"unbalanced", []Line{
			{AccountID: accountID, Debit: dec("5")},
			{AccountID: accountID, Credit: dec("4")},
		}, false},
		{"negative", []Line{
			{AccountID: accountID, Debit: dec("-5")},
			{AccountID: accountID, Credit: dec("-5")},
		}, false},
		{"zero line", []Line{
			{AccountID: accountID, Debit: dec("5")},
			{AccountID: accountID, Credit: dec("5")},
			{AccountID: accountID},
		}, false},
		{"no account", []Line{
			{Debit: dec("5")},
			{AccountID: accountID, Credit: dec("5")},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := (&JournalEntry{Lines: tt.lines}).Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrIntegrity)
		})
	}
}

func TestReverse_SwapsEveryLine(t *testing.T) {
	original := postedInvoice(t)
	date := postingDate.AddDate(0, 0, 3)

	reversal, err := Reverse(original, date, "")
	require.NoError(t, err)

	assert.Equal(t, SourceReversal, reversal.SourceType)
	assert.Equal(t, original.ID, reversal.SourceID)
	assert.Equal(t, original.ID, reversal.ReversesID)
	assert.Equal(t, date, reversal.Date)
	assert.Equal(t, "Reversal of "+original.ID.String(), reversal.Memo)
	require.Len(t, reversal.Lines, len(original.Lines))
	for i := range original.Lines {
		assert.True(t, reversal.Lines[i].Debit.Equal(original.Lines[i].Credit))
		assert.True(t, reversal.Lines[i].Credit.Equal(original.Lines[i].Debit))
		assert.Equal(t, original.Lines[i].AccountID, reversal.Lines[i].AccountID)
	}
}

func TestReverse_DefaultsToOriginalDate(t *testing.T) {
	original := postedInvoice(t)
	reversal, err := Reverse(original, time.Time{}, "wrong client")
	require.NoError(t, err)
	assert.Equal(t, original.Date, reversal.Date)
	assert.Equal(t, "wrong client", reversal.Memo)
}

func TestReverse_Rejections(t *testing.T) {
	original := postedInvoice(t)

	_, err := Reverse(original, postingDate.AddDate(0, 0, -1), "")
	assert.ErrorIs(t, err, ErrValidation)

	reversal, err := Reverse(original, postingDate, "")
	require.NoError(t, err)
	reversal.ID = uuid.Must(uuid.NewV7())
	_, err = Reverse(reversal, postingDate, "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestErrors_KindAndClassify(t *testing.T) {
	dup := NewDuplicatePostingError(SourceInvoice, uuid.Must(uuid.NewV7()), uuid.Must(uuid.NewV7()))
	assert.ErrorIs(t, dup, ErrDuplicatePosting)
	assert.NotErrorIs(t, dup, ErrValidation)
	assert.Equal(t, KindDuplicatePosting, KindOf(dup))

	wrapped := Classify("journal.Insert", assert.AnError)
	assert.ErrorIs(t, wrapped, ErrPersistence)
	assert.ErrorIs(t, wrapped, assert.AnError)
	assert.Contains(t, wrapped.Error(), "journal.Insert")

	assert.Equal(t, dup, Classify("ignored", dup))
	assert.NoError(t, Classify("nothing", nil))
	assert.Equal(t, ErrorKind(""), KindOf(assert.AnError))
}
