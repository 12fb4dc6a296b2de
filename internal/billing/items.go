package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Item is one billable line of an invoice or recurring profile.
type Item struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

// Items is stored as a jsonb column. Value returns a string since lib/pq would
// send []byte as bytea.
type Items []Item

func (it Items) Value() (driver.Value, error) {
	if it == nil {
		return "[]", nil
	}
	b, err := json.Marshal(it)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (it *Items) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*it = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("billing.Items: cannot scan %T", src)
	}
	return json.Unmarshal(raw, it)
}

// Validate checks that there is something to bill.
func (it Items) Validate() error {
	if len(it) == 0 {
		return errors.New("at least one item is required")
	}
	for i, item := range it {
		if item.Description == "" {
			return fmt.Errorf("item %d has no description", i+1)
		}
		if !item.Quantity.IsPositive() {
			return fmt.Errorf("item %d quantity must be positive", i+1)
		}
		if item.UnitPrice.IsNegative() {
			return fmt.Errorf("item %d unit price must not be negative", i+1)
		}
	}
	return nil
}

// Totals are the amounts of an invoice, rounded to the currency precision.
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// ComputeTotals rounds each line to places, then applies taxRate to the subtotal.
func ComputeTotals(items Items, taxRate decimal.Decimal, places int32) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Quantity.Mul(item.UnitPrice).Round(places))
	}
	tax := subtotal.Mul(taxRate).Round(places)
	return Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}
}
