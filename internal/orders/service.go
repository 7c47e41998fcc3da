package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/vendaops/vendaops-backend/pkg/db"
	"github.com/vendaops/vendaops-backend/pkg/db/models"
	"github.com/vendaops/vendaops-backend/pkg/enums"
	pkgerrors "github.com/vendaops/vendaops-backend/pkg/errors"
	"github.com/vendaops/vendaops-backend/pkg/logger"
	"github.com/vendaops/vendaops-backend/pkg/metrics"
	"github.com/vendaops/vendaops-backend/pkg/notify"
	"github.com/vendaops/vendaops-backend/pkg/pagination"
	"github.com/vendaops/vendaops-backend/pkg/types"
)

// Service exposes the order lifecycle: creation with duplicate detection,
// the status machine, and collection bookkeeping.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput, viewer Viewer) (*OrderDTO, error)
	Transition(ctx context.Context, orderID string, target enums.SaleStatus, note string, viewer Viewer) (*OrderDTO, error)
	Approve(ctx context.Context, orderID string, viewer Viewer) (*OrderDTO, error)
	Reject(ctx context.Context, orderID, reason string, viewer Viewer) (*OrderDTO, error)
	AttachTracking(ctx context.Context, orderID, trackingCode string, viewer Viewer) (*OrderDTO, error)
	RecordCarrierStatus(ctx context.Context, orderID, carrierStatus string) (*OrderDTO, error)
	SoftDelete(ctx context.Context, orderID string, viewer Viewer) error
	AddBillingPayment(ctx context.Context, orderID string, input BillingPaymentInput, viewer Viewer) (*OrderDTO, error)
	Get(ctx context.Context, orderID string) (*OrderDTO, error)
	List(ctx context.Context, filters ListFilters, page pagination.Params) (*OrderListResult, error)
	CountByStatus(ctx context.Context) (map[enums.SaleStatus]int64, error)
}

type stockMover interface {
	ProcessSaleForOrder(ctx context.Context, orderID, offerRef, createdBy string) error
	ProcessReturnForOrder(ctx context.Context, orderID, offerRef, createdBy string) error
}

type service struct {
	repo        *Repository
	dbClient    *db.Client
	detector    *Detector
	stock       stockMover
	logger      *logger.Logger
	metrics     *metrics.Metrics
	broadcaster notify.Broadcaster
	now         func() time.Time
}

// NewService constructs an order service instance.
func NewService(
	repo *Repository,
	dbClient *db.Client,
	detector *Detector,
	stock stockMover,
	logg *logger.Logger,
	m *metrics.Metrics,
	broadcaster notify.Broadcaster,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	if detector == nil {
		return nil, fmt.Errorf("duplicate detector required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock mover required")
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
		detector:    detector,
		stock:       stock,
		logger:      logg,
		metrics:     m,
		broadcaster: broadcaster,
		now:         time.Now,
	}, nil
}

func (s *service) today() string {
	return types.FormatDate(s.now())
}

// Create validates and records a sale. Orders resembling an existing live
// order park in Possíveis Duplicados and consume no stock until approved.
func (s *service) Create(ctx context.Context, input CreateOrderInput, viewer Viewer) (*OrderDTO, error) {
	orderID := strings.TrimSpace(input.OrderID)
	if orderID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	customer := strings.TrimSpace(input.CustomerName)
	if customer == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if !input.SaleValue.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale value must be positive")
	}
	if input.ReceivedValue.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "received value cannot be negative")
	}

	taken, err := s.repo.Exists(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking order id")
	}
	if taken {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order id already exists")
	}

	isDuplicate, matches, err := s.detector.Check(ctx, DuplicateCandidate{
		Phone:     input.Phone,
		SaleValue: input.SaleValue,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "running duplicate check")
	}

	status := enums.SaleStatusLiberacao
	if isDuplicate {
		status = enums.SaleStatusPossiveisDuplicados
	}

	saleDate := strings.TrimSpace(input.SaleDate)
	if saleDate == "" {
		saleDate = s.today()
	}

	order := &models.Order{
		OrderID:          orderID,
		SaleDate:         saleDate,
		CustomerName:     customer,
		Phone:            strings.TrimSpace(input.Phone),
		CustomerDocument: strings.TrimSpace(input.CustomerDocument),
		OfferRef:         strings.TrimSpace(input.OfferRef),
		SaleValue:        input.SaleValue,
		ReceivedValue:    input.ReceivedValue,
		SaleStatus:       status,
		LegacyStatus:     status.String(),
		SellerName:       strings.TrimSpace(input.SellerName),
		OperatorName:     strings.TrimSpace(input.OperatorName),
		LastUpdatedAt:    s.today(),
		NegotiationDate:  strings.TrimSpace(input.NegotiationDate),
		ReceiveDate:      strings.TrimSpace(input.ReceiveDate),
		PaymentMethod:    strings.TrimSpace(input.PaymentMethod),
		ShippingAddress:  input.ShippingAddress,
		BillingHistory: types.BillingHistory{}.Append(types.BillingEntry{
			Date:   s.today(),
			Note:   "Pedido registrado",
			Status: status.String(),
		}),
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).Create(ctx, order)
		return err
	}); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "order id already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
	}

	s.metrics.IncOrdersCreated()
	if isDuplicate {
		s.metrics.IncDuplicateFlag()
		s.logger.Info(s.logger.WithOrderID(ctx, orderID), "order parked as possible duplicate")
	} else if order.OfferRef != "" {
		if err := s.stock.ProcessSaleForOrder(ctx, order.OrderID, order.OfferRef, viewer.Name); err != nil {
			s.logger.Error(s.logger.WithOrderID(ctx, orderID), "posting sale stock movement", err)
		}
	}

	s.broadcaster.Broadcast(ctx, notify.CollectionOrders, "created", order.OrderID)
	dto := toOrderDTO(order)
	dto.DuplicateMatches = matches
	return dto, nil
}

// Transition moves an order through the status machine. Entering Completo
// autofills a zero received value from the sale value; every transition
// appends a billing entry and bumps the legacy bookkeeping columns.
func (s *service) Transition(ctx context.Context, orderID string, target enums.SaleStatus, note string, viewer Viewer) (*OrderDTO, error) {
	if !target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown sale status")
	}
	if target == enums.SaleStatusDeletado && viewer.Role != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins can delete orders")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := order.SaleStatus
	if err := s.applyTransition(order, target, note); err != nil {
		return nil, err
	}

	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).Update(ctx, order)
		return err
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving transition")
	}

	s.metrics.IncTransition(target.String())
	s.applyStockSideEffects(ctx, order, from, target, viewer)
	s.broadcaster.Broadcast(ctx, notify.CollectionOrders, "transitioned", order.OrderID)
	return toOrderDTO(order), nil
}

// applyTransition mutates a loaded order for a status change after consulting
// the transition table. Persistence stays with the caller so the change rides
// in one write together with any other column updates.
func (s *service) applyTransition(order *models.Order, target enums.SaleStatus, note string) error {
	from := order.SaleStatus
	if !from.CanTransition(target) {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", from, target),
		).WithDetails(map[string]string{"from": from.String(), "to": target.String()})
	}

	order.SaleStatus = target
	order.LegacyStatus = target.String()
	order.LastUpdatedAt = s.today()
	if target == enums.SaleStatusCompleto && order.ReceivedValue.IsZero() {
		order.ReceivedValue = order.SaleValue
	}
	order.BillingHistory = order.BillingHistory.Append(types.BillingEntry{
		Date:   s.today(),
		Note:   strings.TrimSpace(note),
		Status: target.String(),
	})
	return nil
}

// applyStockSideEffects keeps the ledger in step with the machine: approval
// out of the duplicate pen consumes stock, cancellation of an order that
// consumed stock returns it. Orders rejected straight out of Possíveis
// Duplicados never consumed anything.
func (s *service) applyStockSideEffects(ctx context.Context, order *models.Order, from, target enums.SaleStatus, viewer Viewer) {
	if order.OfferRef == "" {
		return
	}
	switch {
	case from == enums.SaleStatusPossiveisDuplicados && target == enums.SaleStatusEmSeparacao:
		if err := s.stock.ProcessSaleForOrder(ctx, order.OrderID, order.OfferRef, viewer.Name); err != nil {
			s.logger.Error(s.logger.WithOrderID(ctx, order.OrderID), "posting sale stock movement", err)
		}
	case target == enums.SaleStatusCancelado && from != enums.SaleStatusPossiveisDuplicados && from != enums.SaleStatusLiberacao:
		if err := s.stock.ProcessReturnForOrder(ctx, order.OrderID, order.OfferRef, viewer.Name); err != nil {
			s.logger.Error(s.logger.WithOrderID(ctx, order.OrderID), "posting return stock movement", err)
		}
	}
}

// Approve releases an order into separation, either from initial release or
// out of the duplicate pen.
func (s *service) Approve(ctx context.Context, orderID string, viewer Viewer) (*OrderDTO, error) {
	return s.Transition(ctx, orderID, enums.SaleStatusEmSeparacao, "Aprovado", viewer)
}

// Reject cancels an order; the reason is mandatory and lands in the history.
func (s *service) Reject(ctx context.Context, orderID, reason string, viewer Viewer) (*OrderDTO, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rejection reason is required")
	}
	return s.Transition(ctx, orderID, enums.SaleStatusCancelado, reason, viewer)
}

// AttachTracking stores the carrier tracking code. From Em Separação the
// order also moves to Em Trânsito; in Em Trânsito the code may be replaced.
func (s *service) AttachTracking(ctx context.Context, orderID, trackingCode string, viewer Viewer) (*OrderDTO, error) {
	code := strings.TrimSpace(trackingCode)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tracking code is required")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch order.SaleStatus {
	case enums.SaleStatusEmSeparacao:
		// The code and the status change land in the same write.
		order.TrackingCode = code
		if err := s.applyTransition(order, enums.SaleStatusEmTransito, "Código de rastreio "+code); err != nil {
			return nil, err
		}
		if err := s.saveOrder(ctx, order); err != nil {
			return nil, err
		}
		s.metrics.IncTransition(enums.SaleStatusEmTransito.String())
		s.applyStockSideEffects(ctx, order, enums.SaleStatusEmSeparacao, enums.SaleStatusEmTransito, viewer)
		s.broadcaster.Broadcast(ctx, notify.CollectionOrders, "transitioned", order.OrderID)
		return toOrderDTO(order), nil
	case enums.SaleStatusEmTransito:
		order.TrackingCode = code
		order.LastUpdatedAt = s.today()
		if err := s.saveOrder(ctx, order); err != nil {
			return nil, err
		}
		s.broadcaster.Broadcast(ctx, notify.CollectionOrders, "updated", order.OrderID)
		return toOrderDTO(order), nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot attach tracking while order is %s", order.SaleStatus))
	}
}

// RecordCarrierStatus stores the latest carrier callback without touching
// the order's own status.
func (s *service) RecordCarrierStatus(ctx context.Context, orderID, carrierStatus string) (*OrderDTO, error) {
	status := strings.TrimSpace(carrierStatus)
	if status == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "carrier status is required")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order.CarrierStatus = status
	order.CarrierUpdatedAt = s.today()
	if err := s.saveOrder(ctx, order); err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(ctx, notify.CollectionOrders, "updated", order.OrderID)
	return toOrderDTO(order), nil
}

// SoftDelete parks the order in Deletado. Admin-only and idempotent.
func (s *service) SoftDelete(ctx context.Context, orderID string, viewer Viewer) error {
	if viewer.Role != enums.RoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can delete orders")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.IsDeleted() {
		return nil
	}

	_, err = s.Transition(ctx, orderID, enums.SaleStatusDeletado, "Removido", viewer)
	return err
}

// AddBillingPayment accumulates a received amount and appends the history
// entry. Completion stays an explicit transition even on full payment.
func (s *service) AddBillingPayment(ctx context.Context, orderID string, input BillingPaymentInput, viewer Viewer) (*OrderDTO, error) {
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}

	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsDeleted() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot record payments on a deleted order")
	}

	date := strings.TrimSpace(input.Date)
	if date == "" {
		date = s.today()
	}

	order.ReceivedValue = order.ReceivedValue.Add(input.Amount)
	order.Partial = order.ReceivedValue.LessThan(order.SaleValue)
	if order.Partial {
		order.PartialAmount = order.ReceivedValue
	} else {
		order.PartialAmount = order.SaleValue
	}
	order.LastUpdatedAt = s.today()

	note := "Pagamento recebido: " + input.Amount.StringFixed(2)
	if trimmed := strings.TrimSpace(input.Note); trimmed != "" {
		note = note + " - " + trimmed
	}
	order.BillingHistory = order.BillingHistory.Append(types.BillingEntry{
		Date:   date,
		Note:   note,
		Status: order.SaleStatus.String(),
	})

	if err := s.saveOrder(ctx, order); err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(ctx, notify.CollectionOrders, "updated", order.OrderID)
	return toOrderDTO(order), nil
}

// Get loads one order.
func (s *service) Get(ctx context.Context, orderID string) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return toOrderDTO(order), nil
}

// List returns an order page. Role projection happens in the visibility
// layer above this service.
func (s *service) List(ctx context.Context, filters ListFilters, page pagination.Params) (*OrderListResult, error) {
	rows, nextCursor, err := s.repo.List(ctx, filters, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	dtos := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *toOrderDTO(&rows[i]))
	}
	return &OrderListResult{Orders: dtos, NextCursor: nextCursor}, nil
}

// CountByStatus returns dashboard counts per status.
func (s *service) CountByStatus(ctx context.Context) (map[enums.SaleStatus]int64, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting orders by status")
	}
	return counts, nil
}

func (s *service) loadOrder(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, strings.TrimSpace(orderID))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return order, nil
}

func (s *service) saveOrder(ctx context.Context, order *models.Order) error {
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).Update(ctx, order)
		return err
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order")
	}
	return nil
}
