package imports

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"full brazilian format", "R$ 1.234,56", "1234.56"},
		{"no thousands", "R$197,00", "197"},
		{"plain decimal passthrough", "1030.00", "1030"},
		{"comma only", "49,90", "49.9"},
		{"empty is zero", "", "0"},
		{"whitespace is zero", "  ", "0"},
		{"millions", "R$ 1.234.567,89", "1234567.89"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMoney(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseMoneyRejectsGarbage(t *testing.T) {
	_, err := ParseMoney("abc")
	assert.Error(t, err)
}
