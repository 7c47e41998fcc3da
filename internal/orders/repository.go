package orders

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/vendaops/vendaops-backend/pkg/db/models"
	"github.com/vendaops/vendaops-backend/pkg/enums"
	"github.com/vendaops/vendaops-backend/pkg/pagination"
)

// Repository persists order rows.
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

// Create inserts a new order row.
func (r *Repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// Update saves an existing order row.
func (r *Repository) Update(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Save(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// FindByID loads an order by its sale id.
func (r *Repository) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// Exists reports whether the sale id is already taken, deleted rows included.
func (r *Repository) Exists(ctx context.Context, orderID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_id = ?", orderID).
		Count(&count).
		Error
	return count > 0, err
}

// ListLiveByPhone returns orders sharing the exact phone string that can
// serve as a duplicate-comparison base. Deleted orders are gone and parked
// duplicates are not yet confirmed sales, so both are excluded.
func (r *Repository) ListLiveByPhone(ctx context.Context, phone string) ([]models.Order, error) {
	var rows []models.Order
	err := r.db.WithContext(ctx).
		Where("phone = ? AND sale_status NOT IN ?",
			strings.TrimSpace(phone),
			[]enums.SaleStatus{enums.SaleStatusDeletado, enums.SaleStatusPossiveisDuplicados},
		).
		Find(&rows).
		Error
	return rows, err
}

// ListFilters narrows order listings. Status filtering beyond Deletado
// hiding happens in the visibility projection.
type ListFilters struct {
	Status     *enums.SaleStatus
	SellerName string
	Phone      string
	Search     string
}

// List returns orders newest first with cursor pagination.
func (r *Repository) List(ctx context.Context, filters ListFilters, page pagination.Params) ([]models.Order, string, error) {
	pageSize := pagination.NormalizeLimit(page.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(page.Limit)

	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, "", err
	}

	qb := r.db.WithContext(ctx).Model(&models.Order{})
	if filters.Status != nil {
		qb = qb.Where("sale_status = ?", *filters.Status)
	}
	if filters.SellerName != "" {
		qb = qb.Where("seller_name = ?", filters.SellerName)
	}
	if filters.Phone != "" {
		qb = qb.Where("phone = ?", filters.Phone)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(customer_name) LIKE ? OR LOWER(order_id) LIKE ?)", pattern, pattern)
	}
	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND order_id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Order
	err = qb.Order("created_at DESC").Order("order_id DESC").Limit(limitWithBuffer).Find(&rows).Error
	if err != nil {
		return nil, "", err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.OrderID})
	}
	return rows, nextCursor, nil
}

// CountByStatus returns order counts grouped by status.
func (r *Repository) CountByStatus(ctx context.Context) (map[enums.SaleStatus]int64, error) {
	var rows []struct {
		SaleStatus enums.SaleStatus
		Total      int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("sale_status, COUNT(*) AS total").
		Group("sale_status").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}
	counts := make(map[enums.SaleStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.SaleStatus] = row.Total
	}
	return counts, nil
}
