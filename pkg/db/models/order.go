package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vendaops/vendaops-backend/pkg/enums"
	"github.com/vendaops/vendaops-backend/pkg/types"
)

// Order is one sale record. The primary key is the caller-supplied sale id
// (e.g. "V1700000000000"); ids are never reused and rows are never deleted.
// "Deletion" is the Deletado status.
//
// The legacy date columns (SaleDate, LastUpdatedAt, NegotiationDate,
// CarrierUpdatedAt, ReceiveDate) are DD/MM/YYYY strings exactly as they come
// in from spreadsheet exports; CreatedAt exists for stable database ordering.
type Order struct {
	OrderID  string `gorm:"column:order_id;primaryKey" json:"order_id"`
	SaleDate string `gorm:"column:sale_date" json:"sale_date"`

	CustomerName     string `gorm:"column:customer_name;not null" json:"customer_name"`
	Phone            string `gorm:"column:phone" json:"phone"`
	CustomerDocument string `gorm:"column:customer_document" json:"customer_document"`

	OfferRef      string          `gorm:"column:offer_ref" json:"offer_ref"`
	SaleValue     decimal.Decimal `gorm:"column:sale_value;type:numeric;not null" json:"sale_value"`
	ReceivedValue decimal.Decimal `gorm:"column:received_value;type:numeric;not null" json:"received_value"`

	SaleStatus   enums.SaleStatus `gorm:"column:sale_status;type:text;not null" json:"sale_status"`
	LegacyStatus string           `gorm:"column:legacy_status" json:"legacy_status"`

	SellerName   string `gorm:"column:seller_name" json:"seller_name"`
	OperatorName string `gorm:"column:operator_name" json:"operator_name"`

	TrackingCode     string `gorm:"column:tracking_code" json:"tracking_code"`
	CarrierStatus    string `gorm:"column:carrier_status" json:"carrier_status"`
	CarrierUpdatedAt string `gorm:"column:carrier_updated_at" json:"carrier_updated_at"`

	LastUpdatedAt   string `gorm:"column:last_updated_at" json:"last_updated_at"`
	NegotiationDate string `gorm:"column:negotiation_date" json:"negotiation_date"`
	ReceiveDate     string `gorm:"column:receive_date" json:"receive_date"`
	PaymentMethod   string `gorm:"column:payment_method" json:"payment_method"`

	Partial       bool            `gorm:"column:partial;not null;default:false" json:"partial"`
	PartialAmount decimal.Decimal `gorm:"column:partial_amount;type:numeric;not null;default:0" json:"partial_amount"`

	ShippingAddress *types.Address      `gorm:"column:shipping_address;type:jsonb;serializer:json" json:"shipping_address,omitempty"`
	BillingHistory  types.BillingHistory `gorm:"column:billing_history;type:jsonb;serializer:json" json:"billing_history"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// EffectiveReceivedValue is the value readers must surface: a Completo order
// whose received value was never filled in counts as fully received.
func (o *Order) EffectiveReceivedValue() decimal.Decimal {
	if o.SaleStatus == enums.SaleStatusCompleto && o.ReceivedValue.IsZero() {
		return o.SaleValue
	}
	return o.ReceivedValue
}

// IsDeleted reports whether the order is soft-deleted.
func (o *Order) IsDeleted() bool {
	return o.SaleStatus == enums.SaleStatusDeletado
}
