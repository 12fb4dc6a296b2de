package ledger

import (
	"sort"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// CashMovement is a journal entry's net effect on a cash account: positive for
// money in (a debit), negative for money out.
type CashMovement struct {
	JournalID uuid.UUID
	Date      time.Time
	Amount    decimal.Decimal
	Memo      string
}

// MatchSuggestion is a candidate journal entry for a bank transaction.
type MatchSuggestion struct {
	JournalID uuid.UUID
	Date      time.Time
	Amount    decimal.Decimal
	Memo      string
	DaysApart int
	Score     float64
	Currency  string
}

// SuggestMatches ranks movements with exactly the transaction's signed amount dated
// within window days of it. Closer dates score higher; ties keep the earlier entry first.
func SuggestMatches(amount decimal.Decimal, date time.Time, movements []CashMovement, window int) []MatchSuggestion {
	if window < 0 {
		window = 0
	}
	var out []MatchSuggestion
	for _, m := range movements {
		if !m.Amount.Equal(amount) {
			continue
		}
		days := daysBetween(date, m.Date)
		if days > window {
			continue
		}
		out = append(out, MatchSuggestion{
			JournalID: m.JournalID,
			Date:      m.Date,
			Amount:    m.Amount,
			Memo:      m.Memo,
			DaysApart: days,
			Score:     1 - float64(days)/float64(window+1),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func daysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	d := int(da.Sub(db).Hours() / 24)
	if d < 0 {
		return -d
	}
	return d
}
