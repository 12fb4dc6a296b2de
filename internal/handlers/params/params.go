// Package params parses the string fields of request models.
package params

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

func UUID(name, s string) (uuid.UUID, error) {
	id, err := uuid.FromString(s)
	if err != nil {
		return uuid.Nil, huma.NewError(http.StatusBadRequest, "invalid "+name, err)
	}
	return id, nil
}

// OptionalUUID returns uuid.Nil for an empty string.
func OptionalUUID(name, s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	return UUID(name, s)
}

func Date(name, s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, huma.NewError(http.StatusBadRequest, "invalid "+name, err)
	}
	return t, nil
}

// OptionalDate returns the zero time for an empty string.
func OptionalDate(name, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return Date(name, s)
}

// DatePtr returns nil for an empty string.
func DatePtr(name, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := Date(name, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func Decimal(name, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, huma.NewError(http.StatusBadRequest, "invalid "+name, err)
	}
	return d, nil
}

// OptionalDecimal returns zero for an empty string.
func OptionalDecimal(name, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return Decimal(name, s)
}

// FormatDate renders a date the way request models accept it. The zero time is "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
