package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vendaops/vendaops-backend/pkg/db/models"
	"github.com/vendaops/vendaops-backend/pkg/enums"
	"github.com/vendaops/vendaops-backend/pkg/types"
)

// OrderDTO is the outward order shape. ReceivedValue already carries the
// Completo autofill so readers never see a zero on a completed sale.
type OrderDTO struct {
	OrderID          string               `json:"order_id"`
	SaleDate         string               `json:"sale_date"`
	CustomerName     string               `json:"customer_name"`
	Phone            string               `json:"phone"`
	CustomerDocument string               `json:"customer_document,omitempty"`
	OfferRef         string               `json:"offer_ref"`
	SaleValue        decimal.Decimal      `json:"sale_value"`
	ReceivedValue    decimal.Decimal      `json:"received_value"`
	SaleStatus       enums.SaleStatus     `json:"sale_status"`
	SellerName       string               `json:"seller_name,omitempty"`
	OperatorName     string               `json:"operator_name,omitempty"`
	TrackingCode     string               `json:"tracking_code,omitempty"`
	CarrierStatus    string               `json:"carrier_status,omitempty"`
	CarrierUpdatedAt string               `json:"carrier_updated_at,omitempty"`
	LastUpdatedAt    string               `json:"last_updated_at,omitempty"`
	NegotiationDate  string               `json:"negotiation_date,omitempty"`
	ReceiveDate      string               `json:"receive_date,omitempty"`
	PaymentMethod    string               `json:"payment_method,omitempty"`
	Partial          bool                 `json:"partial"`
	PartialAmount    decimal.Decimal      `json:"partial_amount"`
	ShippingAddress  *types.Address       `json:"shipping_address,omitempty"`
	BillingHistory   types.BillingHistory `json:"billing_history"`
	DuplicateMatches []DuplicateMatch     `json:"duplicate_matches,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

func toOrderDTO(order *models.Order) *OrderDTO {
	return &OrderDTO{
		OrderID:          order.OrderID,
		SaleDate:         order.SaleDate,
		CustomerName:     order.CustomerName,
		Phone:            order.Phone,
		CustomerDocument: order.CustomerDocument,
		OfferRef:         order.OfferRef,
		SaleValue:        order.SaleValue,
		ReceivedValue:    order.EffectiveReceivedValue(),
		SaleStatus:       order.SaleStatus,
		SellerName:       order.SellerName,
		OperatorName:     order.OperatorName,
		TrackingCode:     order.TrackingCode,
		CarrierStatus:    order.CarrierStatus,
		CarrierUpdatedAt: order.CarrierUpdatedAt,
		LastUpdatedAt:    order.LastUpdatedAt,
		NegotiationDate:  order.NegotiationDate,
		ReceiveDate:      order.ReceiveDate,
		PaymentMethod:    order.PaymentMethod,
		Partial:          order.Partial,
		PartialAmount:    order.PartialAmount,
		ShippingAddress:  order.ShippingAddress,
		BillingHistory:   order.BillingHistory,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
}

// OrderListResult is an order page plus the cursor for the next one.
type OrderListResult struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// CreateOrderInput holds the validated payload to record a sale.
type CreateOrderInput struct {
	OrderID          string
	SaleDate         string
	CustomerName     string
	Phone            string
	CustomerDocument string
	OfferRef         string
	SaleValue        decimal.Decimal
	ReceivedValue    decimal.Decimal
	SellerName       string
	OperatorName     string
	NegotiationDate  string
	ReceiveDate      string
	PaymentMethod    string
	ShippingAddress  *types.Address
}

// BillingPaymentInput records money received against an order.
type BillingPaymentInput struct {
	Amount decimal.Decimal
	Date   string
	Note   string
}

// Viewer is the identity acting on an order, taken from trusted headers.
type Viewer struct {
	Role  enums.Role
	Name  string
	Email string
}
