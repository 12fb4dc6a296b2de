package ledger

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

const defaultPlaces = 2

// Places returns the minor-unit precision of an ISO-4217 currency code.
// Unknown or empty codes use two places.
func Places(currency string) int32 {
	if currency == "" {
		return defaultPlaces
	}
	cur := money.GetCurrency(strings.ToUpper(currency))
	if cur == nil {
		return defaultPlaces
	}
	return int32(cur.Fraction)
}

// MinorUnit returns the smallest representable amount at the given precision, e.g. 0.01.
func MinorUnit(places int32) decimal.Decimal {
	return decimal.New(1, -places)
}

// HasMaxPlaces reports whether d has no more than places decimal digits.
func HasMaxPlaces(d decimal.Decimal, places int32) bool {
	return d.Equal(d.Round(places))
}

// FormatAmount renders an amount with its currency symbol, e.g. "$1,000.00".
func FormatAmount(d decimal.Decimal, currency string) string {
	if currency == "" {
		return d.StringFixed(defaultPlaces)
	}
	places := Places(currency)
	minor := d.Round(places).Shift(places).IntPart()
	return money.New(minor, strings.ToUpper(currency)).Display()
}

// FormatDecimal renders an amount as a plain decimal at the precision of
// currency. Amounts with more places than the currency allows keep them.
func FormatDecimal(d decimal.Decimal, currency string) string {
	places := Places(currency)
	if !HasMaxPlaces(d, places) {
		return d.String()
	}
	return d.StringFixed(places)
}

// KnownCurrency reports whether code is an ISO-4217 code in the catalogue.
func KnownCurrency(code string) bool {
	return len(code) == 3 && code == strings.ToUpper(code) && money.GetCurrency(code) != nil
}
