package inventory

import (
	"context"

	"gorm.io/gorm"

	"github.com/vendaops/vendaops-backend/pkg/db/models"
	"github.com/vendaops/vendaops-backend/pkg/enums"
	"github.com/vendaops/vendaops-backend/pkg/pagination"
)

// Repository persists inventory items and their ledger entries.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindItemByVariation loads the item row for one SKU.
func (r *Repository) FindItemByVariation(ctx context.Context, variation enums.VariationType) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := r.db.WithContext(ctx).First(&item, "variation_type = ?", variation).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListItems returns every item row in canonical SKU order.
func (r *Repository) ListItems(ctx context.Context) ([]models.InventoryItem, error) {
	var rows []models.InventoryItem
	err := r.db.WithContext(ctx).Order("variation_type ASC").Find(&rows).Error
	return rows, err
}

// CreateItem inserts a new item row.
func (r *Repository) CreateItem(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItem updates an existing item row.
func (r *Repository) UpdateItem(ctx context.Context, item *models.InventoryItem) (*models.InventoryItem, error) {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// CreateTransaction appends one ledger entry.
func (r *Repository) CreateTransaction(ctx context.Context, txn *models.InventoryTransaction) (*models.InventoryTransaction, error) {
	if err := r.db.WithContext(ctx).Create(txn).Error; err != nil {
		return nil, err
	}
	return txn, nil
}

// TransactionFilters narrows ledger listings.
type TransactionFilters struct {
	Variation *enums.VariationType
	Type      *enums.InventoryTransactionType
	OrderID   string
}

// ListTransactions returns ledger entries newest first with cursor pagination.
func (r *Repository) ListTransactions(ctx context.Context, filters TransactionFilters, page pagination.Params) ([]models.InventoryTransaction, string, error) {
	pageSize := pagination.NormalizeLimit(page.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(page.Limit)

	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).Model(&models.InventoryTransaction{})
	if filters.Variation != nil {
		qb = qb.Where("variation_type = ?", *filters.Variation)
	}
	if filters.Type != nil {
		qb = qb.Where("transaction_type = ?", *filters.Type)
	}
	if filters.OrderID != "" {
		qb = qb.Where("order_id = ?", filters.OrderID)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.InventoryTransaction
	err = qb.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error
	if err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID.String()})
	}
	return rows, nextCursor, nil
}

// SumTransactions returns the signed quantity total for one SKU. The item
// row's quantity must always equal this sum.
func (r *Repository) SumTransactions(ctx context.Context, variation enums.VariationType) (int, error) {
	var total struct{ Total int }
	err := r.db.WithContext(ctx).
		Model(&models.InventoryTransaction{}).
		Select("COALESCE(SUM(quantity), 0) AS total").
		Where("variation_type = ?", variation).
		Scan(&total).
		Error
	return total.Total, err
}

// SumSalesByVariation returns absolute sold-unit totals per SKU.
func (r *Repository) SumSalesByVariation(ctx context.Context) (map[enums.VariationType]int, error) {
	var rows []struct {
		VariationType enums.VariationType
		Total         int
	}
	err := r.db.WithContext(ctx).
		Model(&models.InventoryTransaction{}).
		Select("variation_type, COALESCE(SUM(ABS(quantity)), 0) AS total").
		Where("transaction_type = ?", enums.InventoryTransactionTypeSale).
		Group("variation_type").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	totals := make(map[enums.VariationType]int, len(rows))
	for _, row := range rows {
		totals[row.VariationType] = row.Total
	}
	return totals, nil
}

// SumByType returns absolute unit totals grouped by transaction type.
func (r *Repository) SumByType(ctx context.Context) (map[enums.InventoryTransactionType]int, error) {
	var rows []struct {
		TransactionType enums.InventoryTransactionType
		Total           int
	}
	err := r.db.WithContext(ctx).
		Model(&models.InventoryTransaction{}).
		Select("transaction_type, COALESCE(SUM(ABS(quantity)), 0) AS total").
		Group("transaction_type").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	totals := make(map[enums.InventoryTransactionType]int, len(rows))
	for _, row := range rows {
		totals[row.TransactionType] = row.Total
	}
	return totals, nil
}
