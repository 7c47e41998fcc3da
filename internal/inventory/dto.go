package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendaops/vendaops-backend/pkg/db/models"
	"github.com/vendaops/vendaops-backend/pkg/enums"
)

// LevelDTO is the outward shape of one SKU's stock position.
type LevelDTO struct {
	VariationType enums.VariationType `json:"variation_type"`
	Quantity      int                 `json:"quantity"`
	MinimumLevel  int                 `json:"minimum_level"`
	LowStock      bool                `json:"low_stock"`
	CostPerUnit   decimal.Decimal     `json:"cost_per_unit"`
	LastUpdatedAt time.Time           `json:"last_updated_at"`
}

func toLevelDTO(item *models.InventoryItem) LevelDTO {
	return LevelDTO{
		VariationType: item.VariationType,
		Quantity:      item.Quantity,
		MinimumLevel:  item.MinimumLevel,
		LowStock:      item.Quantity < item.MinimumLevel,
		CostPerUnit:   item.CostPerUnit,
		LastUpdatedAt: item.LastUpdatedAt,
	}
}

// TransactionDTO is the outward shape of one ledger entry.
type TransactionDTO struct {
	ID            uuid.UUID                      `json:"id"`
	VariationType enums.VariationType            `json:"variation_type"`
	Quantity      int                            `json:"quantity"`
	Type          enums.InventoryTransactionType `json:"type"`
	OrderID       *string                        `json:"order_id,omitempty"`
	Notes         string                         `json:"notes"`
	CreatedBy     string                         `json:"created_by"`
	CreatedAt     time.Time                      `json:"created_at"`
}

func toTransactionDTO(txn *models.InventoryTransaction) TransactionDTO {
	return TransactionDTO{
		ID:            txn.ID,
		VariationType: txn.VariationType,
		Quantity:      txn.Quantity,
		Type:          txn.Type,
		OrderID:       txn.OrderID,
		Notes:         txn.Notes,
		CreatedBy:     txn.CreatedBy,
		CreatedAt:     txn.CreatedAt,
	}
}

// TransactionListResult is a ledger page plus the cursor for the next one.
type TransactionListResult struct {
	Transactions []TransactionDTO `json:"transactions"`
	NextCursor   string           `json:"next_cursor,omitempty"`
}

// StatsDTO summarizes the ledger for dashboards.
type StatsDTO struct {
	Levels         []LevelDTO           `json:"levels"`
	TotalItems     int                  `json:"total_items"`
	LowStockCount  int                  `json:"low_stock_count"`
	TotalValue     decimal.Decimal      `json:"total_value"`
	MostSold       *enums.VariationType `json:"most_sold,omitempty"`
	TotalSold      int                  `json:"total_sold_units"`
	TotalPurchased int                  `json:"total_purchased_units"`
	TotalAdjusted  int                  `json:"total_adjusted_units"`
	TotalReturned  int                  `json:"total_returned_units"`
}

// PostInput is a caller-specified ledger entry. Sales normally arrive via
// ProcessSaleForOrder; this covers corrections and backfills.
type PostInput struct {
	VariationType enums.VariationType
	Quantity      int
	Type          enums.InventoryTransactionType
	OrderID       *string
	Notes         string
	CreatedBy     string
}

// AdjustInput is a manual stock correction for one SKU.
type AdjustInput struct {
	VariationType enums.VariationType
	Quantity      int
	Notes         string
	CreatedBy     string
}

// PurchaseInput records incoming stock.
type PurchaseInput struct {
	VariationType enums.VariationType
	Quantity      int
	CostPerUnit   decimal.Decimal
	Notes         string
	CreatedBy     string
}
