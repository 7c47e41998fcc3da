package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendaops/vendaops-backend/pkg/db/models"
)

// ProductDTO is the outward product shape with its offers attached.
type ProductDTO struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Active      bool       `json:"active"`
	Offers      []OfferDTO `json:"offers"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// OfferDTO is the outward offer shape including the composite display name
// that orders reference.
type OfferDTO struct {
	ID               uuid.UUID       `json:"id"`
	ProductID        uuid.UUID       `json:"product_id"`
	Name             string          `json:"name"`
	DisplayName      string          `json:"display_name"`
	Description      string          `json:"description"`
	Price            decimal.Decimal `json:"price"`
	Active           bool            `json:"active"`
	GelQuantity      int             `json:"gel_quantity"`
	CapsulasQuantity int             `json:"capsulas_quantity"`
	InUse            bool            `json:"in_use"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func toProductDTO(product *models.Product) *ProductDTO {
	dto := &ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Active:      product.Active,
		Offers:      make([]OfferDTO, 0, len(product.Offers)),
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
	for _, offer := range product.Offers {
		dto.Offers = append(dto.Offers, toOfferDTO(&offer, product.Name))
	}
	return dto
}

func toOfferDTO(offer *models.Offer, productName string) OfferDTO {
	return OfferDTO{
		ID:               offer.ID,
		ProductID:        offer.ProductID,
		Name:             offer.Name,
		DisplayName:      offer.DisplayName(productName),
		Description:      offer.Description,
		Price:            offer.Price,
		Active:           offer.Active,
		GelQuantity:      offer.GelQuantity,
		CapsulasQuantity: offer.CapsulasQuantity,
		InUse:            offer.InUse,
		CreatedAt:        offer.CreatedAt,
		UpdatedAt:        offer.UpdatedAt,
	}
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name        string
	Description string
	Offers      []CreateOfferInput
}

// CreateOfferInput holds the validated payload to create an offer.
type CreateOfferInput struct {
	Name             string
	Description      string
	Price            decimal.Decimal
	GelQuantity      int
	CapsulasQuantity int
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name        *string
	Description *string
	Active      *bool
}

// UpdateOfferInput holds optional mutation values for an offer.
type UpdateOfferInput struct {
	Name             *string
	Description      *string
	Price            *decimal.Decimal
	Active           *bool
	GelQuantity      *int
	CapsulasQuantity *int
}
