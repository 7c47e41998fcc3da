package enums

import "fmt"

// InventoryTransactionType tags the cause of a signed ledger entry.
type InventoryTransactionType string

const (
	InventoryTransactionTypeSale       InventoryTransactionType = "sale"
	InventoryTransactionTypePurchase   InventoryTransactionType = "purchase"
	InventoryTransactionTypeAdjustment InventoryTransactionType = "adjustment"
	InventoryTransactionTypeReturn     InventoryTransactionType = "return"
)

var validInventoryTransactionTypes = []InventoryTransactionType{
	InventoryTransactionTypeSale,
	InventoryTransactionTypePurchase,
	InventoryTransactionTypeAdjustment,
	InventoryTransactionTypeReturn,
}

// String implements fmt.Stringer.
func (t InventoryTransactionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known InventoryTransactionType.
func (t InventoryTransactionType) IsValid() bool {
	for _, candidate := range validInventoryTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseInventoryTransactionType converts raw input into an
// InventoryTransactionType.
func ParseInventoryTransactionType(value string) (InventoryTransactionType, error) {
	for _, candidate := range validInventoryTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inventory transaction type %q", value)
}
