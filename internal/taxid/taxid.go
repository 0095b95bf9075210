// Package taxid normalizes, validates and formats Brazilian company registry
// numbers (CNPJ).
package taxid

import (
	"strings"
)

// Length is the number of digits in a CNPJ.
const Length = 14

// Normalize strips every non-digit character.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Validate reports whether s, after normalization, is 14 digits long, is not a
// run of one repeated digit and carries correct check digits.
func Validate(s string) bool {
	digits := Normalize(s)
	if len(digits) != Length {
		return false
	}
	if strings.Count(digits, digits[:1]) == Length {
		return false
	}
	return checkDigit(digits[:12]) == int(digits[12]-'0') &&
		checkDigit(digits[:13]) == int(digits[13]-'0')
}

// checkDigit computes the modulo-11 check digit over base. Weights start at
// len(base)-7 and count down, wrapping from 2 back to 9.
func checkDigit(base string) int {
	sum := 0
	weight := len(base) - 7
	for i := 0; i < len(base); i++ {
		sum += int(base[i]-'0') * weight
		weight--
		if weight < 2 {
			weight = 9
		}
	}
	if rem := sum % 11; rem >= 2 {
		return 11 - rem
	}
	return 0
}

// Format renders a 14 digit value as NN.NNN.NNN/NNNN-NN. Inputs that do not
// normalize to 14 digits are returned unchanged.
func Format(s string) string {
	d := Normalize(s)
	if len(d) != Length {
		return s
	}
	return d[0:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:14]
}
