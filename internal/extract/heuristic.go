package extract

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

var (
	amountRe   = regexp.MustCompile(`-?\d{1,3}(?:,\d{3})+\.\d{2}|-?\d+\.\d{2}`)
	totalRe    = regexp.MustCompile(`(?i)\b(grand\s+total|total\s+due|amount\s+due|balance\s+due|total)\b`)
	subtotalRe = regexp.MustCompile(`(?i)\bsub\s*-?\s*total\b`)
	taxRe      = regexp.MustCompile(`(?i)\b(tax|vat|gst|hst)\b`)
	codeRe     = regexp.MustCompile(`\b([A-Z]{3}) ?-?\d|\d ?([A-Z]{3})\b`)
	letterRe   = regexp.MustCompile(`\p{L}`)
)

var dateFormats = []struct {
	re     *regexp.Regexp
	layout string
}{
	{regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`), "2006-01-02"},
	{regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b`), "01/02/2006"},
	{regexp.MustCompile(`\b\d{2}\.\d{2}\.\d{4}\b`), "02.01.2006"},
	{regexp.MustCompile(`\b[A-Z][a-z]{2} \d{1,2}, \d{4}\b`), "Jan 2, 2006"},
	{regexp.MustCompile(`\b\d{1,2} [A-Z][a-z]{2} \d{4}\b`), "2 Jan 2006"},
}

var currencySymbols = [][2]string{
	{"€", "EUR"},
	{"£", "GBP"},
	{"¥", "JPY"},
	{"$", "USD"},
}

// Heuristic finds fields with line patterns. It never fails; missing fields stay zero.
type Heuristic struct{}

func (Heuristic) Extract(_ context.Context, text string) (*Receipt, error) {
	lines := strings.Split(text, "\n")
	r := &Receipt{Source: "heuristic"}

	r.Vendor = vendor(lines)
	r.Date = findDate(text)
	r.Total = findTotal(lines)
	r.TaxAmount = findTax(lines)
	r.Currency = findCurrency(text)
	r.Confidence = confidence(r)
	return r, nil
}

// vendor is the first line with letters that is not an amount, date, or total line.
func vendor(lines []string) string {
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" || !letterRe.MatchString(l) {
			continue
		}
		if amountRe.MatchString(l) || totalRe.MatchString(l) || !findDate(l).IsZero() {
			continue
		}
		return l
	}
	return ""
}

func findDate(text string) time.Time {
	for _, f := range dateFormats {
		for _, m := range f.re.FindAllString(text, -1) {
			if t, err := time.Parse(f.layout, m); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

func lastAmount(line string) (decimal.Decimal, bool) {
	matches := amountRe.FindAllString(line, -1)
	if len(matches) == 0 {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(matches[len(matches)-1], ",", ""))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// findTotal takes the amount of the last total line, or the largest amount on
// the receipt when no line is labelled.
func findTotal(lines []string) decimal.Decimal {
	total := decimal.Zero
	labelled := false
	for _, l := range lines {
		if !totalRe.MatchString(l) || subtotalRe.MatchString(l) {
			continue
		}
		if d, ok := lastAmount(l); ok {
			total, labelled = d, true
		}
	}
	if labelled {
		return total
	}
	for _, l := range lines {
		for _, m := range amountRe.FindAllString(l, -1) {
			d, err := decimal.NewFromString(strings.ReplaceAll(m, ",", ""))
			if err == nil && d.GreaterThan(total) {
				total = d
			}
		}
	}
	return total
}

func findTax(lines []string) decimal.Decimal {
	for _, l := range lines {
		if !taxRe.MatchString(l) || totalRe.MatchString(l) {
			continue
		}
		if d, ok := lastAmount(l); ok {
			return d
		}
	}
	return decimal.Zero
}

func findCurrency(text string) string {
	for _, m := range codeRe.FindAllStringSubmatch(text, -1) {
		for _, code := range m[1:] {
			if ledger.KnownCurrency(code) {
				return code
			}
		}
	}
	for _, sc := range currencySymbols {
		if strings.Contains(text, sc[0]) {
			return sc[1]
		}
	}
	return ""
}
