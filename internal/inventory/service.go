package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vendaops/vendaops-backend/internal/catalog"
	"github.com/vendaops/vendaops-backend/pkg/config"
	"github.com/vendaops/vendaops-backend/pkg/db"
	"github.com/vendaops/vendaops-backend/pkg/db/models"
	"github.com/vendaops/vendaops-backend/pkg/enums"
	pkgerrors "github.com/vendaops/vendaops-backend/pkg/errors"
	"github.com/vendaops/vendaops-backend/pkg/logger"
	"github.com/vendaops/vendaops-backend/pkg/metrics"
	"github.com/vendaops/vendaops-backend/pkg/notify"
	"github.com/vendaops/vendaops-backend/pkg/pagination"
)

// Service exposes the stock ledger: signed transactions per SKU with the
// derived on-hand level kept in lockstep.
type Service interface {
	Post(ctx context.Context, input PostInput) (*TransactionDTO, error)
	WouldGoNegative(ctx context.Context, variation enums.VariationType, delta int) (bool, error)
	Adjust(ctx context.Context, input AdjustInput) (*TransactionDTO, error)
	AddPurchase(ctx context.Context, input PurchaseInput) (*TransactionDTO, error)
	ProcessSaleForOrder(ctx context.Context, orderID, offerRef, createdBy string) error
	ProcessReturnForOrder(ctx context.Context, orderID, offerRef, createdBy string) error
	Levels(ctx context.Context) ([]LevelDTO, error)
	SetMinimumLevel(ctx context.Context, variation enums.VariationType, level int) (*LevelDTO, error)
	Stats(ctx context.Context) (*StatsDTO, error)
	ListTransactions(ctx context.Context, filters TransactionFilters, page pagination.Params) (*TransactionListResult, error)
}

type offerResolver interface {
	ResolveOffer(ctx context.Context, ref string) (*catalog.OfferDTO, error)
}

type service struct {
	repo        *Repository
	dbClient    *db.Client
	offers      offerResolver
	cfg         config.InventoryConfig
	logger      *logger.Logger
	metrics     *metrics.Metrics
	broadcaster notify.Broadcaster
}

// NewService constructs an inventory service instance.
func NewService(
	repo *Repository,
	dbClient *db.Client,
	offers offerResolver,
	cfg config.InventoryConfig,
	logg *logger.Logger,
	m *metrics.Metrics,
	broadcaster notify.Broadcaster,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if offers == nil {
		return nil, fmt.Errorf("offer resolver required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if broadcaster == nil {
		broadcaster = notify.NoopBroadcaster{}
	}
	return &service{
		repo:        repo,
		dbClient:    dbClient,
		offers:      offers,
		cfg:         cfg,
		logger:      logg,
		metrics:     m,
		broadcaster: broadcaster,
	}, nil
}

// post appends one ledger entry and moves the item level with it. Sales are
// exempt from the negative guard: recorded reality wins over the ledger.
func (s *service) post(
	ctx context.Context,
	txRepo *Repository,
	variation enums.VariationType,
	quantity int,
	txnType enums.InventoryTransactionType,
	orderID *string,
	notes, createdBy string,
	costPerUnit *decimal.Decimal,
) (*models.InventoryTransaction, error) {
	if !variation.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown variation type")
	}
	if quantity == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be zero")
	}

	item, err := txRepo.FindItemByVariation(ctx, variation)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		item = &models.InventoryItem{
			ID:            uuid.New(),
			VariationType: variation,
			MinimumLevel:  s.cfg.DefaultMinimumLevel,
		}
		if _, err := txRepo.CreateItem(ctx, item); err != nil {
			return nil, err
		}
	}

	newLevel := item.Quantity + quantity
	if newLevel < 0 && txnType != enums.InventoryTransactionTypeSale {
		return nil, pkgerrors.New(pkgerrors.CodeNegativeInventory,
			fmt.Sprintf("%s stock is %d, change of %d would leave %d", variation, item.Quantity, quantity, newLevel),
		)
	}

	item.Quantity = newLevel
	item.LastUpdatedAt = time.Now().UTC()
	if costPerUnit != nil {
		item.CostPerUnit = *costPerUnit
	}
	if _, err := txRepo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	txn := &models.InventoryTransaction{
		ID:            uuid.New(),
		VariationType: variation,
		Quantity:      quantity,
		Type:          txnType,
		OrderID:       orderID,
		Notes:         notes,
		CreatedBy:     createdBy,
	}
	if _, err := txRepo.CreateTransaction(ctx, txn); err != nil {
		return nil, err
	}

	s.metrics.IncLedgerPost(txnType.String())
	return txn, nil
}

// Post appends one caller-specified ledger entry. Non-sale entries are
// subject to the negative guard.
func (s *service) Post(ctx context.Context, input PostInput) (*TransactionDTO, error) {
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown transaction type")
	}

	var txn *models.InventoryTransaction
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		txn, err = s.post(ctx, s.repo.WithTx(tx), input.VariationType, input.Quantity,
			input.Type, input.OrderID, input.Notes, input.CreatedBy, nil)
		return err
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "posting transaction")
	}

	s.broadcaster.Broadcast(ctx, notify.CollectionInventory, "posted", input.VariationType.String())
	dto := toTransactionDTO(txn)
	return &dto, nil
}

// WouldGoNegative reports whether applying delta to the SKU would leave a
// negative level. A missing item row counts as zero on hand.
func (s *service) WouldGoNegative(ctx context.Context, variation enums.VariationType, delta int) (bool, error) {
	if !variation.IsValid() {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "unknown variation type")
	}
	item, err := s.repo.FindItemByVariation(ctx, variation)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return delta < 0, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading inventory item")
	}
	return item.Quantity+delta < 0, nil
}

// Adjust applies a manual signed correction. Unlike sales it may not drive
// the level negative.
func (s *service) Adjust(ctx context.Context, input AdjustInput) (*TransactionDTO, error) {
	var txn *models.InventoryTransaction
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		txn, err = s.post(ctx, s.repo.WithTx(tx), input.VariationType, input.Quantity,
			enums.InventoryTransactionTypeAdjustment, nil, input.Notes, input.CreatedBy, nil)
		return err
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "posting adjustment")
	}

	s.broadcaster.Broadcast(ctx, notify.CollectionInventory, "adjusted", input.VariationType.String())
	dto := toTransactionDTO(txn)
	return &dto, nil
}

// AddPurchase records incoming stock and refreshes the unit cost.
func (s *service) AddPurchase(ctx context.Context, input PurchaseInput) (*TransactionDTO, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase quantity must be positive")
	}
	if input.CostPerUnit.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost per unit cannot be negative")
	}

	var txn *models.InventoryTransaction
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		txn, err = s.post(ctx, s.repo.WithTx(tx), input.VariationType, input.Quantity,
			enums.InventoryTransactionTypePurchase, nil, input.Notes, input.CreatedBy, &input.CostPerUnit)
		return err
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "posting purchase")
	}

	s.broadcaster.Broadcast(ctx, notify.CollectionInventory, "purchased", input.VariationType.String())
	dto := toTransactionDTO(txn)
	return &dto, nil
}

// ProcessSaleForOrder consumes stock for an order's offer. An offer
// reference that no longer resolves is logged and skipped so legacy orders
// never block the pipeline.
func (s *service) ProcessSaleForOrder(ctx context.Context, orderID, offerRef, createdBy string) error {
	return s.processOrderMovement(ctx, orderID, offerRef, createdBy,
		enums.InventoryTransactionTypeSale, -1, "sold")
}

// ProcessReturnForOrder puts an order's consumed stock back, used when a
// shipped order comes back cancelled.
func (s *service) ProcessReturnForOrder(ctx context.Context, orderID, offerRef, createdBy string) error {
	return s.processOrderMovement(ctx, orderID, offerRef, createdBy,
		enums.InventoryTransactionTypeReturn, 1, "returned")
}

func (s *service) processOrderMovement(
	ctx context.Context,
	orderID, offerRef, createdBy string,
	txnType enums.InventoryTransactionType,
	sign int,
	action string,
) error {
	offer, err := s.offers.ResolveOffer(ctx, offerRef)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) || pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			s.logger.Warn(s.logger.WithFields(ctx, map[string]any{
				"order_id": orderID, "offer_ref": offerRef,
			}), "offer reference does not resolve, skipping stock movement")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "resolving offer for stock movement")
	}

	movements := map[enums.VariationType]int{}
	if offer.GelQuantity > 0 {
		movements[enums.VariationTypeGel] = sign * offer.GelQuantity
	}
	if offer.CapsulasQuantity > 0 {
		movements[enums.VariationTypeCapsulas] = sign * offer.CapsulasQuantity
	}
	if len(movements) == 0 {
		return nil
	}

	notes := fmt.Sprintf("%s %s", offer.DisplayName, action)
	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		for _, variation := range enums.AllVariationTypes() {
			quantity, ok := movements[variation]
			if !ok {
				continue
			}
			if _, err := s.post(ctx, txRepo, variation, quantity, txnType, &orderID, notes, createdBy, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "posting order stock movement")
	}

	s.broadcaster.Broadcast(ctx, notify.CollectionInventory, action, orderID)
	return nil
}

// Levels returns the stock position for every tracked SKU. SKUs without a
// row yet are reported at zero with the configured default minimum.
func (s *service) Levels(ctx context.Context) ([]LevelDTO, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing inventory items")
	}

	byVariation := make(map[enums.VariationType]*models.InventoryItem, len(items))
	for i := range items {
		byVariation[items[i].VariationType] = &items[i]
	}

	levels := make([]LevelDTO, 0, len(enums.AllVariationTypes()))
	for _, variation := range enums.AllVariationTypes() {
		if item, ok := byVariation[variation]; ok {
			levels = append(levels, toLevelDTO(item))
			continue
		}
		levels = append(levels, LevelDTO{
			VariationType: variation,
			MinimumLevel:  s.cfg.DefaultMinimumLevel,
		})
	}
	return levels, nil
}

// SetMinimumLevel changes the low-stock threshold for one SKU.
func (s *service) SetMinimumLevel(ctx context.Context, variation enums.VariationType, level int) (*LevelDTO, error) {
	if !variation.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown variation type")
	}
	if level < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "minimum level cannot be negative")
	}

	item, err := s.repo.FindItemByVariation(ctx, variation)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading inventory item")
		}
		item = &models.InventoryItem{
			ID:            uuid.New(),
			VariationType: variation,
			MinimumLevel:  level,
		}
		if _, err := s.repo.CreateItem(ctx, item); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating inventory item")
		}
	} else {
		item.MinimumLevel = level
		if _, err := s.repo.UpdateItem(ctx, item); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating inventory item")
		}
	}

	s.broadcaster.Broadcast(ctx, notify.CollectionInventory, "updated", variation.String())
	dto := toLevelDTO(item)
	return &dto, nil
}

// Stats summarizes stock levels and ledger totals.
func (s *service) Stats(ctx context.Context) (*StatsDTO, error) {
	levels, err := s.Levels(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.SumByType(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summing ledger totals")
	}
	soldByVariation, err := s.repo.SumSalesByVariation(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summing sales per sku")
	}

	stats := &StatsDTO{
		Levels:         levels,
		TotalValue:     decimal.Zero,
		TotalSold:      totals[enums.InventoryTransactionTypeSale],
		TotalPurchased: totals[enums.InventoryTransactionTypePurchase],
		TotalAdjusted:  totals[enums.InventoryTransactionTypeAdjustment],
		TotalReturned:  totals[enums.InventoryTransactionTypeReturn],
	}
	for _, level := range levels {
		stats.TotalItems += level.Quantity
		if level.LowStock {
			stats.LowStockCount++
		}
		if level.Quantity > 0 {
			stats.TotalValue = stats.TotalValue.Add(level.CostPerUnit.Mul(decimal.NewFromInt(int64(level.Quantity))))
		}
	}

	best := 0
	for _, variation := range enums.AllVariationTypes() {
		if sold := soldByVariation[variation]; sold > best {
			best = sold
			v := variation
			stats.MostSold = &v
		}
	}
	return stats, nil
}

// ListTransactions returns a ledger page.
func (s *service) ListTransactions(ctx context.Context, filters TransactionFilters, page pagination.Params) (*TransactionListResult, error) {
	rows, nextCursor, err := s.repo.ListTransactions(ctx, filters, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing inventory transactions")
	}
	dtos := make([]TransactionDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, toTransactionDTO(&rows[i]))
	}
	return &TransactionListResult{Transactions: dtos, NextCursor: nextCursor}, nil
}
