package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendaops/vendaops-backend/pkg/db"
	"github.com/vendaops/vendaops-backend/pkg/db/models"
	pkgerrors "github.com/vendaops/vendaops-backend/pkg/errors"
	"github.com/vendaops/vendaops-backend/pkg/logger"
	"github.com/vendaops/vendaops-backend/pkg/notify"
)

// Service exposes catalog management: products, their offers, and the
// composite-name resolution that orders depend on.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, includeInactive bool) ([]ProductDTO, error)

	CreateOffer(ctx context.Context, productID uuid.UUID, input CreateOfferInput) (*OfferDTO, error)
	UpdateOffer(ctx context.Context, offerID uuid.UUID, input UpdateOfferInput) (*OfferDTO, error)
	DeleteOffer(ctx context.Context, offerID uuid.UUID) error

	ResolveOffer(ctx context.Context, ref string) (*OfferDTO, error)
	ListActiveOffers(ctx context.Context) ([]OfferDTO, error)
	RecomputeInUse(ctx context.Context) (int, error)
}

type service struct {
	repo        *Repository
	dbClient    *db.Client
	logger      *logger.Logger
	broadcaster notify.Broadcaster
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository, dbClient *db.Client, logg *logger.Logger, broadcaster notify.Broadcaster) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if broadcaster == nil {
		broadcaster = notify.NoopBroadcaster{}
	}
	return &service{repo: repo, dbClient: dbClient, logger: logg, broadcaster: broadcaster}, nil
}

func validateOfferQuantities(gel, capsulas int) error {
	if gel < 0 || capsulas < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "offer quantities cannot be negative")
	}
	if gel == 0 && capsulas == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "offer must consume at least one unit of gel or capsulas")
	}
	return nil
}

// CreateProduct creates the product together with its initial offers.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	for _, offer := range input.Offers {
		if strings.TrimSpace(offer.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer name is required")
		}
		if !offer.Price.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer price must be positive")
		}
		if err := validateOfferQuantities(offer.GelQuantity, offer.CapsulasQuantity); err != nil {
			return nil, err
		}
	}

	product := &models.Product{
		ID:          uuid.New(),
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		Active:      true,
	}
	for _, offer := range input.Offers {
		product.Offers = append(product.Offers, models.Offer{
			ID:               uuid.New(),
			ProductID:        product.ID,
			Name:             strings.TrimSpace(offer.Name),
			Description:      strings.TrimSpace(offer.Description),
			Price:            offer.Price,
			Active:           true,
			GelQuantity:      offer.GelQuantity,
			CapsulasQuantity: offer.CapsulasQuantity,
		})
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).CreateProduct(ctx, product)
		return err
	}); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an active product with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating product")
	}

	s.broadcaster.Broadcast(ctx, notify.CollectionProducts, "created", product.ID.String())
	return toProductDTO(product), nil
}

// UpdateProduct mutates a product. Renaming rewrites every live order's
// offer_ref so the composite references keep resolving.
func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}

	oldName := product.Name
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name cannot be empty")
		}
		product.Name = trimmed
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.Active != nil {
		product.Active = *input.Active
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.UpdateProduct(ctx, product); err != nil {
			return err
		}
		if product.Name == oldName {
			return nil
		}
		for _, offer := range product.Offers {
			oldRef := offer.DisplayName(oldName)
			newRef := offer.DisplayName(product.Name)
			rewritten, err := txRepo.RewriteOrderOfferRefs(ctx, oldRef, newRef)
			if err != nil {
				return err
			}
			if rewritten > 0 {
				s.logger.Info(s.logger.WithFields(ctx, map[string]any{
					"old_ref": oldRef, "new_ref": newRef, "orders": rewritten,
				}), "rewrote order offer references after product rename")
			}
		}
		return nil
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating product")
	}

	s.broadcaster.Broadcast(ctx, notify.CollectionProducts, "updated", product.ID.String())
	return toProductDTO(product), nil
}

// DeleteProduct deactivates the product and its offers. Idempotent: deleting
// an already inactive product succeeds without touching rows.
func (s *service) DeleteProduct(ctx context.Context, productID uuid.UUID) error {
	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if !product.Active {
		return nil
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		product.Active = false
		if _, err := txRepo.UpdateProduct(ctx, product); err != nil {
			return err
		}
		for i := range product.Offers {
			if !product.Offers[i].Active {
				continue
			}
			product.Offers[i].Active = false
			if _, err := txRepo.UpdateOffer(ctx, &product.Offers[i]); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting product")
	}

	s.broadcaster.Broadcast(ctx, notify.CollectionProducts, "deleted", product.ID.String())
	return nil
}

// GetProduct loads a single product with offers.
func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return toProductDTO(product), nil
}

// ListProducts returns the catalog, newest first.
func (s *service) ListProducts(ctx context.Context, includeInactive bool) ([]ProductDTO, error) {
	products, err := s.repo.ListProducts(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}
	dtos := make([]ProductDTO, 0, len(products))
	for i := range products {
		dtos = append(dtos, *toProductDTO(&products[i]))
	}
	return dtos, nil
}

// CreateOffer adds an offer to an existing active product.
func (s *service) CreateOffer(ctx context.Context, productID uuid.UUID, input CreateOfferInput) (*OfferDTO, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer name is required")
	}
	if !input.Price.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer price must be positive")
	}
	if err := validateOfferQuantities(input.GelQuantity, input.CapsulasQuantity); err != nil {
		return nil, err
	}

	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	if !product.Active {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot add offers to an inactive product")
	}

	offer := &models.Offer{
		ID:               uuid.New(),
		ProductID:        product.ID,
		Name:             strings.TrimSpace(input.Name),
		Description:      strings.TrimSpace(input.Description),
		Price:            input.Price,
		Active:           true,
		GelQuantity:      input.GelQuantity,
		CapsulasQuantity: input.CapsulasQuantity,
	}
	if _, err := s.repo.CreateOffer(ctx, offer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating offer")
	}

	s.broadcaster.Broadcast(ctx, notify.CollectionProducts, "updated", product.ID.String())
	dto := toOfferDTO(offer, product.Name)
	return &dto, nil
}

// UpdateOffer mutates an offer. Renaming rewrites every live order's
// offer_ref to the new composite name inside the same transaction.
func (s *service) UpdateOffer(ctx context.Context, offerID uuid.UUID, input UpdateOfferInput) (*OfferDTO, error) {
	offer, err := s.repo.FindOfferByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading offer")
	}
	product, err := s.repo.FindProductByID(ctx, offer.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}

	oldRef := offer.DisplayName(product.Name)
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer name cannot be empty")
		}
		offer.Name = trimmed
	}
	if input.Description != nil {
		offer.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		if !input.Price.IsPositive() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer price must be positive")
		}
		offer.Price = *input.Price
	}
	if input.GelQuantity != nil {
		offer.GelQuantity = *input.GelQuantity
	}
	if input.CapsulasQuantity != nil {
		offer.CapsulasQuantity = *input.CapsulasQuantity
	}
	if err := validateOfferQuantities(offer.GelQuantity, offer.CapsulasQuantity); err != nil {
		return nil, err
	}
	if input.Active != nil {
		offer.Active = *input.Active
	}

	newRef := offer.DisplayName(product.Name)
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.UpdateOffer(ctx, offer); err != nil {
			return err
		}
		if newRef == oldRef {
			return nil
		}
		rewritten, err := txRepo.RewriteOrderOfferRefs(ctx, oldRef, newRef)
		if err != nil {
			return err
		}
		if rewritten > 0 {
			s.logger.Info(s.logger.WithFields(ctx, map[string]any{
				"old_ref": oldRef, "new_ref": newRef, "orders": rewritten,
			}), "rewrote order offer references after offer rename")
		}
		return nil
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating offer")
	}

	s.broadcaster.Broadcast(ctx, notify.CollectionProducts, "updated", product.ID.String())
	dto := toOfferDTO(offer, product.Name)
	return &dto, nil
}

// DeleteOffer removes an unused offer outright. An offer still referenced by
// live orders is only deactivated so history keeps resolving; repeating the
// call on an already inactive offer succeeds without touching rows.
func (s *service) DeleteOffer(ctx context.Context, offerID uuid.UUID) error {
	offer, err := s.repo.FindOfferByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading offer")
	}
	product, err := s.repo.FindProductByID(ctx, offer.ProductID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}

	count, err := s.repo.CountOrdersByOfferRef(ctx, offer.DisplayName(product.Name))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting offer references")
	}
	if count == 0 {
		if err := s.repo.DeleteOffer(ctx, offerID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting offer")
		}
		s.broadcaster.Broadcast(ctx, notify.CollectionProducts, "updated", offer.ProductID.String())
		return nil
	}

	if !offer.Active {
		return nil
	}
	offer.Active = false
	if _, err := s.repo.UpdateOffer(ctx, offer); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivating offer")
	}

	s.broadcaster.Broadcast(ctx, notify.CollectionProducts, "updated", offer.ProductID.String())
	return nil
}

// ResolveOffer resolves an order's offer reference: a uuid resolves by
// primary key, anything else is treated as the "Product - Offer" composite
// display name.
func (s *service) ResolveOffer(ctx context.Context, ref string) (*OfferDTO, error) {
	trimmed := strings.TrimSpace(ref)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer reference is required")
	}

	var offer *models.Offer
	if id, err := uuid.Parse(trimmed); err == nil {
		found, err := s.repo.FindOfferByID(ctx, id)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving offer by id")
		}
		offer = found
	}
	if offer == nil {
		found, err := s.repo.FindOfferByDisplayName(ctx, trimmed)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving offer by display name")
		}
		offer = found
	}

	product, err := s.repo.FindProductByID(ctx, offer.ProductID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	dto := toOfferDTO(offer, product.Name)
	return &dto, nil
}

// ListActiveOffers returns every sellable offer with its display name.
func (s *service) ListActiveOffers(ctx context.Context) ([]OfferDTO, error) {
	rows, err := s.repo.ListActiveOffers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing active offers")
	}
	dtos := make([]OfferDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, toOfferDTO(&rows[i].Offer, rows[i].ProductName))
	}
	return dtos, nil
}

// RecomputeInUse refreshes every offer's in_use flag from the live orders
// table and returns how many offers changed.
func (s *service) RecomputeInUse(ctx context.Context) (int, error) {
	refs, err := s.repo.DistinctOrderOfferRefs(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing order offer refs")
	}

	referenced := make(map[uuid.UUID]bool, len(refs))
	for _, ref := range refs {
		trimmed := strings.TrimSpace(ref)
		if trimmed == "" {
			continue
		}
		if id, err := uuid.Parse(trimmed); err == nil {
			referenced[id] = true
			continue
		}
		offer, err := s.repo.FindOfferByDisplayName(ctx, trimmed)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving order offer ref")
		}
		referenced[offer.ID] = true
	}

	products, err := s.repo.ListProducts(ctx, true)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}

	changed := 0
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		for pi := range products {
			for oi := range products[pi].Offers {
				offer := &products[pi].Offers[oi]
				inUse := referenced[offer.ID]
				if offer.InUse == inUse {
					continue
				}
				offer.InUse = inUse
				if _, err := txRepo.UpdateOffer(ctx, offer); err != nil {
					return err
				}
				changed++
			}
		}
		return nil
	})
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recomputing offer usage")
	}
	return changed, nil
}
