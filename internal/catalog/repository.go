package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendaops/vendaops-backend/pkg/db/models"
	"github.com/vendaops/vendaops-backend/pkg/enums"
)

// Repository wires together product and offer persistence.
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

// CreateProduct inserts a new product row.
func (r *Repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct updates an existing product row.
func (r *Repository) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// FindProductByID loads a product with its offers.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Offers", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&product, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListProducts returns products with offers, newest first. Inactive products
// are included only when requested.
func (r *Repository) ListProducts(ctx context.Context, includeInactive bool) ([]models.Product, error) {
	qb := r.db.WithContext(ctx).
		Preload("Offers", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		})
	if !includeInactive {
		qb = qb.Where("active = ?", true)
	}
	var rows []models.Product
	err := qb.Order("created_at DESC").Find(&rows).Error
	return rows, err
}

// CreateOffer inserts a new offer row.
func (r *Repository) CreateOffer(ctx context.Context, offer *models.Offer) (*models.Offer, error) {
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

// UpdateOffer updates an existing offer row.
func (r *Repository) UpdateOffer(ctx context.Context, offer *models.Offer) (*models.Offer, error) {
	if err := r.db.WithContext(ctx).Save(offer).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

// FindOfferByID loads an offer by primary key.
func (r *Repository) FindOfferByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	if err := r.db.WithContext(ctx).First(&offer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &offer, nil
}

// DeleteOffer removes an offer row. Only safe when no live order references
// its display name.
func (r *Repository) DeleteOffer(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Offer{}).Error
}

// FindOfferByDisplayName resolves the "Product - Offer" composite reference,
// case-insensitively. Returns gorm.ErrRecordNotFound when nothing matches.
func (r *Repository) FindOfferByDisplayName(ctx context.Context, displayName string) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		Table("offers").
		Joins("JOIN products ON products.id = offers.product_id").
		Where("LOWER(products.name || ' - ' || offers.name) = ?", strings.ToLower(strings.TrimSpace(displayName))).
		First(&offer).
		Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

// ListActiveOffers returns active offers whose product is also active.
func (r *Repository) ListActiveOffers(ctx context.Context) ([]ActiveOfferRow, error) {
	var rows []ActiveOfferRow
	err := r.db.WithContext(ctx).
		Table("offers").
		Select("offers.*, products.name AS product_name").
		Joins("JOIN products ON products.id = offers.product_id").
		Where("offers.active = ? AND products.active = ?", true, true).
		Order("products.name ASC, offers.name ASC").
		Scan(&rows).
		Error
	return rows, err
}

// ActiveOfferRow is an offer joined with its product name for display.
type ActiveOfferRow struct {
	models.Offer
	ProductName string
}

// CountOrdersByOfferRef counts live orders referencing the composite name.
func (r *Repository) CountOrdersByOfferRef(ctx context.Context, offerRef string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("orders").
		Where("offer_ref = ? AND sale_status <> ?", offerRef, "Deletado").
		Count(&count).
		Error
	return count, err
}

// RewriteOrderOfferRefs points every order at the new composite name. Used
// when a product or offer is renamed so history keeps resolving.
func (r *Repository) RewriteOrderOfferRefs(ctx context.Context, oldRef, newRef string) (int64, error) {
	result := r.db.WithContext(ctx).
		Table("orders").
		Where("offer_ref = ?", oldRef).
		Update("offer_ref", newRef)
	return result.RowsAffected, result.Error
}

// DistinctOrderOfferRefs returns every offer_ref present on live orders.
func (r *Repository) DistinctOrderOfferRefs(ctx context.Context) ([]string, error) {
	var refs []string
	err := r.db.WithContext(ctx).
		Table("orders").
		Where("sale_status <> ?", enums.SaleStatusDeletado).
		Distinct("offer_ref").
		Pluck("offer_ref", &refs).
		Error
	return refs, err
}
