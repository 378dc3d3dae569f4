// Package types provides common type aliases and utilities.
package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// MoneyScale is the number of fractional digits used for display and export.
const MoneyScale int32 = 2

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseMoney converts a decoded JSON value into Money.
// Backend payloads carry amounts as numbers or as strings ("1,250.00" included).
func ParseMoney(v any) (Money, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, false
	case decimal.Decimal:
		return x, true
	case float64:
		return decimal.NewFromFloat(x), true
	case float32:
		return decimal.NewFromFloat32(x), true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		return d, err == nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", "")
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		return d, err == nil
	default:
		d, err := decimal.NewFromString(fmt.Sprint(x))
		return d, err == nil
	}
}

// RoundMoney rounds half away from zero to MoneyScale digits.
func RoundMoney(m Money) Money {
	return m.Round(MoneyScale)
}

// MoneyFloat returns the rounded amount as float64 for JSON rows and typed spreadsheet cells.
func MoneyFloat(m Money) float64 {
	f, _ := m.Round(MoneyScale).Float64()
	return f
}
