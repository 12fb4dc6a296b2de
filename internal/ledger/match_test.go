package ledger

import (
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestMatches(t *testing.T) {
	txDate := time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)
	exact := uuid.Must(uuid.NewV7())
	near := uuid.Must(uuid.NewV7())

	movements := []CashMovement{
		{JournalID: near, Date: txDate.AddDate(0, 0, -3), Amount: dec("-42.50")},
		{JournalID: uuid.Must(uuid.NewV7()), Date: txDate, Amount: dec("42.50")},
		{JournalID: uuid.Must(uuid.NewV7()), Date: txDate.AddDate(0, 0, 9), Amount: dec("-42.50")},
		{JournalID: exact, Date: txDate, Amount: dec("-42.50")},
	}

	got := SuggestMatches(dec("-42.50"), txDate, movements, 7)

	require.Len(t, got, 2)
	assert.Equal(t, exact, got[0].JournalID)
	assert.Equal(t, 0, got[0].DaysApart)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
	assert.Equal(t, near, got[1].JournalID)
	assert.Equal(t, 3, got[1].DaysApart)
	assert.InDelta(t, 1-3.0/8.0, got[1].Score, 1e-9)
}

func TestSuggestMatches_NoCandidates(t *testing.T) {
	got := SuggestMatches(dec("10"), time.Now(), nil, 7)
	assert.Empty(t, got)
}

func TestSuggestMatches_ZeroWindowOnlySameDay(t *testing.T) {
	txDate := time.Date(2025, 5, 10, 15, 30, 0, 0, time.UTC)
	movements := []CashMovement{
		{JournalID: uuid.Must(uuid.NewV7()), Date: time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC), Amount: dec("10")},
		{JournalID: uuid.Must(uuid.NewV7()), Date: time.Date(2025, 5, 11, 0, 0, 0, 0, time.UTC), Amount: dec("10")},
	}
	got := SuggestMatches(dec("10"), txDate, movements, 0)
	require.Len(t, got, 1)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
}
