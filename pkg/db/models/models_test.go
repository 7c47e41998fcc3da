package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendaops/vendaops-backend/pkg/enums"
	"github.com/vendaops/vendaops-backend/pkg/types"
)

func TestOrderEffectiveReceivedValue(t *testing.T) {
	tests := []struct {
		name     string
		status   enums.SaleStatus
		sale     string
		received string
		want     string
	}{
		{
			name:     "completo with zero received falls back to sale value",
			status:   enums.SaleStatusCompleto,
			sale:     "150.00",
			received: "0",
			want:     "150.00",
		},
		{
			name:     "completo with explicit received keeps it",
			status:   enums.SaleStatusCompleto,
			sale:     "150.00",
			received: "120.00",
			want:     "120.00",
		},
		{
			name:     "non completo keeps zero received",
			status:   enums.SaleStatusEntregue,
			sale:     "150.00",
			received: "0",
			want:     "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &Order{
				SaleStatus:    tt.status,
				SaleValue:     decimal.RequireFromString(tt.sale),
				ReceivedValue: decimal.RequireFromString(tt.received),
			}
			assert.True(t, order.EffectiveReceivedValue().Equal(decimal.RequireFromString(tt.want)))
		})
	}
}

func TestOrderBillingHistoryRoundTrip(t *testing.T) {
	order := Order{
		OrderID:    "V1700000000000",
		SaleStatus: enums.SaleStatusPagamentoPendente,
		BillingHistory: types.BillingHistory{
			{Date: "01/08/2026", Note: "cliente pediu boleto", Status: "Pagamento Pendente"},
			{Date: "05/08/2026", Note: "pagamento parcial", Status: "Pagamento Pendente"},
		},
	}

	raw, err := json.Marshal(order)
	require.NoError(t, err)

	var decoded Order
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded.BillingHistory, 2)
	assert.Equal(t, "cliente pediu boleto", decoded.BillingHistory[0].Note)
	assert.Equal(t, "05/08/2026", decoded.BillingHistory[1].Date)
}

func TestOfferJSONRoundTrip(t *testing.T) {
	offer := Offer{
		ID:          uuid.New(),
		ProductID:   uuid.New(),
		Name:        "Kit 3 Unidades",
		Description: "três unidades de gel",
		Price:       decimal.RequireFromString("197.00"),
		Active:      true,
		GelQuantity: 3,
		InUse:       true,
		CreatedAt:   time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 8, 2, 9, 30, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(offer)
	require.NoError(t, err)

	var decoded Offer
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, offer, decoded)
}

func TestInventoryTransactionJSONRoundTrip(t *testing.T) {
	orderID := "V1700000000000"
	tx := InventoryTransaction{
		ID:            uuid.New(),
		VariationType: enums.VariationTypeGel,
		Quantity:      -3,
		Type:          enums.InventoryTransactionTypeSale,
		OrderID:       &orderID,
		Notes:         "Venda: Flexmax - Kit 3 Unidades",
		CreatedBy:     "Carlos Silva",
		CreatedAt:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}

	raw, err := json.Marshal(tx)
	require.NoError(t, err)

	var decoded InventoryTransaction
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, tx, decoded)
}

func TestOfferDisplayName(t *testing.T) {
	offer := Offer{Name: "Kit 3 Unidades"}
	assert.Equal(t, "Flexmax - Kit 3 Unidades", offer.DisplayName("Flexmax"))
}

func TestOrderIsDeleted(t *testing.T) {
	assert.True(t, (&Order{SaleStatus: enums.SaleStatusDeletado}).IsDeleted())
	assert.False(t, (&Order{SaleStatus: enums.SaleStatusCompleto}).IsDeleted())
}
