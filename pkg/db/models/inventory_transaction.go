package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendaops/vendaops-backend/pkg/enums"
)

// InventoryTransaction is one immutable, signed ledger entry. Negative
// quantities mean stock leaving (sales), positive mean stock arriving
// (purchases, returns, upward adjustments). Entries are never mutated or
// removed; a mistake is reversed by posting an offsetting entry.
type InventoryTransaction struct {
	ID            uuid.UUID                      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	VariationType enums.VariationType            `gorm:"column:variation_type;type:text;not null;index" json:"variation_type"`
	Quantity      int                            `gorm:"column:quantity;not null" json:"quantity"`
	Type          enums.InventoryTransactionType `gorm:"column:transaction_type;type:text;not null" json:"transaction_type"`
	OrderID       *string                        `gorm:"column:order_id;index" json:"order_id,omitempty"`
	Notes         string                         `gorm:"column:notes" json:"notes"`
	CreatedBy     string                         `gorm:"column:created_by" json:"created_by"`
	CreatedAt     time.Time                      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
