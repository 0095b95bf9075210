package taxid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "11222333000181", Normalize("11.222.333/0001-81"))
	assert.Equal(t, "11222333000181", Normalize(" 11 222 333 0001 81 "))
	assert.Equal(t, "", Normalize("n/a"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"formatted valid", "11.222.333/0001-81", true},
		{"digits valid", "33000167000101", true},
		{"another valid", "60.746.948/0001-12", true},
		{"wrong second check digit", "11.222.333/0001-82", false},
		{"too short", "1122233300018", false},
		{"too long", "112223330001810", false},
		{"empty", "", false},
		{"all zeros satisfies arithmetic but is rejected", "00.000.000/0000-00", false},
		{"repeated digit", "11111111111111", false},
		{"repeated nines", "99999999999999", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Validate(tt.input))
		})
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "11.222.333/0001-81", Format("11222333000181"))
	assert.Equal(t, "11.222.333/0001-81", Format("11.222.333/0001-81"))
	assert.Equal(t, "123", Format("123"))
}

func TestFormatThenValidateRoundTrip(t *testing.T) {
	for _, id := range []string{"11222333000181", "47960950000121"} {
		assert.True(t, Validate(Format(id)))
		assert.Equal(t, id, Normalize(Format(id)))
	}
}
