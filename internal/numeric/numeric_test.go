package numeric

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBR(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1.234,56", "1234.56"},
		{"12,50", "12.5"},
		{"R$ 1.234,56", "1234.56"},
		{"R$ 99,90", "99.9"},
		{"0,00", "0"},
		{"1.000.000,01", "1000000.01"},
		{"7", "7"},
		{"-3,5", "-3.5"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBR(tt.input)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseBRRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "R$", "abc", "12,34,56", "1e3"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseBR(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidNumberFormat))

			var formatErr *FormatError
			require.ErrorAs(t, err, &formatErr)
			assert.Equal(t, input, formatErr.Input)
		})
	}
}

func TestParseBRIsIdempotentOnCanonicalForm(t *testing.T) {
	first, err := ParseBR("9.876,54")
	require.NoError(t, err)

	// A canonical decimal with no grouping survives a second pass through
	// the comma-or-dot parser unchanged.
	second, err := ParseDecimal(first.String())
	require.NoError(t, err)
	assert.True(t, first.Equal(second))
}

func TestParseDotted(t *testing.T) {
	got, err := ParseDotted("1234.56")
	require.NoError(t, err)
	assert.Equal(t, "1234.56", got.StringFixed(2))

	got, err = ParseDotted("2.0000")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(2).Equal(got))

	_, err = ParseDotted("1,5")
	assert.ErrorIs(t, err, ErrInvalidNumberFormat)
}

func TestParseDecimal(t *testing.T) {
	for input, want := range map[string]string{
		"3,750":  "3.75",
		"3.750":  "3.75",
		"10":     "10",
		"0,0010": "0.001",
	} {
		got, err := ParseDecimal(input)
		require.NoError(t, err, input)
		assert.True(t, decimal.RequireFromString(want).Equal(got), "%s: got %s", input, got)
	}

	_, err := ParseDecimal("")
	assert.ErrorIs(t, err, ErrInvalidNumberFormat)
}
