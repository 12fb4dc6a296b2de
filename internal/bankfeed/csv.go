package bankfeed

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/carson-networks/ledger-server/internal/ledger"
)

// Parser converts a bank CSV export into statement lines.
type Parser interface {
	Parse(r io.Reader) ([]Transaction, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats lists the registered format names.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	r.Register(&GenericParser{})
	return r
}

// ChaseParser parses Chase checking CSV exports:
// Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
type ChaseParser struct{}

const (
	chaseDateFormat = "01/02/2006"
	chaseNumFields  = 7
	chaseColDate    = 1
	chaseColDesc    = 2
	chaseColAmount  = 3
)

func (p *ChaseParser) Format() string { return "chase" }

func (p *ChaseParser) Parse(r io.Reader) ([]Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = chaseNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	refs := newRefCounter()
	txns := make([]Transaction, 0, len(records)-1)
	for i, rec := range records[1:] {
		date, err := time.Parse(chaseDateFormat, rec[chaseColDate])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date %q: %w", i+2, rec[chaseColDate], err)
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(rec[chaseColAmount]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount %q: %w", i+2, rec[chaseColAmount], err)
		}
		desc := strings.TrimSpace(rec[chaseColDesc])
		txns = append(txns, Transaction{
			ExternalID:  refs.next(chaseRef(date, desc, amount)),
			Date:        date,
			Amount:      amount,
			Description: desc,
		})
	}
	return txns, nil
}

// chaseRef creates a reference like chase_20250103_GITHUBPRO_-4.00. Chase
// exports carry no transaction id.
func chaseRef(date time.Time, desc string, amount decimal.Decimal) string {
	prefix := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, desc)
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}
	return fmt.Sprintf("chase_%s_%s_%s", date.Format("20060102"), prefix, ledger.FormatDecimal(amount, ""))
}

// refCounter suffixes repeated references within one file, so two identical
// lines on the same day stay distinct and re-importing the file stays idempotent.
type refCounter map[string]int

func newRefCounter() refCounter { return refCounter{} }

func (c refCounter) next(ref string) string {
	c[ref]++
	if n := c[ref]; n > 1 {
		return fmt.Sprintf("%s_%d", ref, n)
	}
	return ref
}

// GenericParser reads a headed CSV with the columns date, description, amount
// and optionally id, in any order. Dates are YYYY-MM-DD.
type GenericParser struct{}

func (p *GenericParser) Format() string { return "generic" }

func (p *GenericParser) Parse(r io.Reader) ([]Transaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"date", "description", "amount"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}
	idCol, hasID := cols["id"]

	refs := newRefCounter()
	var txns []Transaction
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		date, err := time.Parse(time.DateOnly, strings.TrimSpace(rec[cols["date"]]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date %q: %w", row, rec[cols["date"]], err)
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(rec[cols["amount"]]))
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount %q: %w", row, rec[cols["amount"]], err)
		}
		desc := strings.TrimSpace(rec[cols["description"]])

		id := ""
		if hasID {
			id = strings.TrimSpace(rec[idCol])
		}
		if id == "" {
			id = refs.next(fmt.Sprintf("csv_%s_%s", date.Format("20060102"), ledger.FormatDecimal(amount, "")))
		}

		txns = append(txns, Transaction{
			ExternalID:  id,
			Date:        date,
			Amount:      amount,
			Description: desc,
		})
	}
	return txns, nil
}
