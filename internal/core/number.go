// Package core provides the spend domain types and number parsing.
//
// Spreadsheet exports carry amounts as "1,234,567.89" and rates as "12.5%".
// ParseNumber normalises both forms; cells that cannot be read are reported
// as missing rather than failing the whole load.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrInvalidNumber = errors.New("invalid number")

// ParseNumber strips thousands separators and a trailing percent sign and
// parses the remainder as a decimal.
//
// Examples:
//
//	ParseNumber("1,234.5") -> 1234.5, nil
//	ParseNumber("12.5%")   -> 12.5, nil
//	ParseNumber("")        -> 0, ErrInvalidNumber
func ParseNumber(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(strings.TrimRight(s, "%"))
	if s == "" {
		return decimal.Zero, ErrInvalidNumber
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidNumber
	}
	return d, nil
}

// ParsePercent parses a rate cell. Missing or malformed cells yield an invalid Percent.
func ParsePercent(s string) Percent {
	d, err := ParseNumber(s)
	if err != nil {
		return Percent{}
	}
	return Percent{Value: d.InexactFloat64(), Valid: true}
}

// Share returns part/total*100, or 0 when total is zero.
func Share(part, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	return part.Div(total).InexactFloat64() * 100
}
