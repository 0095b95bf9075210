// Package numeric converts the decimal notations found on Brazilian fiscal
// documents into exact decimal values.
//
// Two notations are handled:
//   - Brazilian display text: "." groups thousands and "," marks decimals ("1.234,56").
//     Currency tags such as "R$" are ignored.
//   - Dotted machine text as used by NF-e XML fields ("1234.56").
package numeric

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidNumberFormat is returned when text cannot be read as a decimal
// number after cleanup.
var ErrInvalidNumberFormat = errors.New("invalid number format")

// FormatError records the input that could not be parsed.
type FormatError struct {
	Input   string
	Cleaned string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("%v: %q (cleaned: %q)", ErrInvalidNumberFormat, e.Input, e.Cleaned)
}

// Unwrap returns ErrInvalidNumberFormat so callers can match with errors.Is.
func (e *FormatError) Unwrap() error {
	return ErrInvalidNumberFormat
}

var currencyTags = []string{"R$", "BRL"}

// ParseBR parses Brazilian display notation. Every "." is removed as a
// thousands separator and "," becomes the decimal point.
func ParseBR(s string) (decimal.Decimal, error) {
	cleaned := stripCurrency(s)
	cleaned = strings.ReplaceAll(cleaned, ".", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	return parse(s, cleaned)
}

// ParseDotted parses text that already uses "." as its decimal point.
func ParseDotted(s string) (decimal.Decimal, error) {
	return parse(s, stripCurrency(s))
}

// ParseDecimal parses a value without thousands grouping whose decimal mark
// may be either "," or ".".
func ParseDecimal(s string) (decimal.Decimal, error) {
	return parse(s, strings.Replace(stripCurrency(s), ",", ".", 1))
}

func parse(input, cleaned string) (decimal.Decimal, error) {
	if cleaned == "" || strings.ContainsAny(cleaned, "eE") {
		return decimal.Zero, &FormatError{Input: input, Cleaned: cleaned}
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, &FormatError{Input: input, Cleaned: cleaned}
	}
	return d, nil
}

func stripCurrency(s string) string {
	for _, tag := range currencyTags {
		s = strings.ReplaceAll(s, tag, "")
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\u00a0':
			return -1
		}
		return r
	}, s)
}
