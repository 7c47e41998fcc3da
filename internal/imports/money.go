package imports

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseMoney normalizes a Brazilian-formatted currency cell into a decimal.
// "R$ 1.234,56" becomes 1234.56. When no comma is present the dot is kept as
// the decimal separator, so already-normalized values pass through untouched.
// Empty input parses as zero.
func ParseMoney(raw string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "R$")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if cleaned == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}
	return decimal.NewFromString(cleaned)
}
