package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product groups the offers that can be sold under one name. Products are
// soft-deleted (Active = false) so historical orders keep resolving.
type Product struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	Active      bool      `gorm:"column:active;not null;default:true" json:"active"`
	Offers      []Offer   `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"offers"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// Offer is a priced, sellable configuration of a product. Each unit sold
// consumes GelQuantity gel units and CapsulasQuantity capsule units from the
// inventory ledger; at least one of the two must be positive.
type Offer struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ProductID        uuid.UUID       `gorm:"column:product_id;type:uuid;not null;index" json:"product_id"`
	Name             string          `gorm:"column:name;not null" json:"name"`
	Description      string          `gorm:"column:description" json:"description"`
	Price            decimal.Decimal `gorm:"column:price;type:numeric;not null" json:"price"`
	Active           bool            `gorm:"column:active;not null;default:true" json:"active"`
	GelQuantity      int             `gorm:"column:gel_quantity;not null;default:0" json:"gel_quantity"`
	CapsulasQuantity int             `gorm:"column:capsulas_quantity;not null;default:0" json:"capsulas_quantity"`
	InUse            bool            `gorm:"column:in_use;not null;default:false" json:"in_use"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// DisplayName is the composite reference stored on orders ("Product - Offer").
func (o Offer) DisplayName(productName string) string {
	return productName + " - " + o.Name
}
