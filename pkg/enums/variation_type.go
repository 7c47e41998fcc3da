package enums

import "fmt"

// VariationType is the stock-keeping unit tracked by the inventory ledger.
type VariationType string

const (
	VariationTypeGel      VariationType = "gel"
	VariationTypeCapsulas VariationType = "capsulas"
)

var validVariationTypes = []VariationType{
	VariationTypeGel,
	VariationTypeCapsulas,
}

// String implements fmt.Stringer.
func (v VariationType) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VariationType.
func (v VariationType) IsValid() bool {
	for _, candidate := range validVariationTypes {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVariationType converts raw input into a VariationType.
func ParseVariationType(value string) (VariationType, error) {
	for _, candidate := range validVariationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid variation type %q", value)
}

// AllVariationTypes returns the SKUs in canonical order.
func AllVariationTypes() []VariationType {
	out := make([]VariationType, len(validVariationTypes))
	copy(out, validVariationTypes)
	return out
}
