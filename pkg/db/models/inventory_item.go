package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendaops/vendaops-backend/pkg/enums"
)

// InventoryItem holds the derived on-hand level for one SKU. Quantity always
// equals the running sum of the SKU's ledger transactions; it is only ever
// written together with a new InventoryTransaction.
type InventoryItem struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	VariationType enums.VariationType `gorm:"column:variation_type;type:text;not null;uniqueIndex" json:"variation_type"`
	Quantity      int                 `gorm:"column:quantity;not null;default:0" json:"quantity"`
	MinimumLevel  int                 `gorm:"column:minimum_level;not null;default:0" json:"minimum_level"`
	CostPerUnit   decimal.Decimal     `gorm:"column:cost_per_unit;type:numeric;not null;default:0" json:"cost_per_unit"`
	LastUpdatedAt time.Time           `gorm:"column:last_updated_at" json:"last_updated_at"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
