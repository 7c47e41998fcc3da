package orders

import (
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendaops/vendaops-backend/pkg/db"
	"github.com/vendaops/vendaops-backend/pkg/enums"
	pkgerrors "github.com/vendaops/vendaops-backend/pkg/errors"
	"github.com/vendaops/vendaops-backend/pkg/logger"
	"github.com/vendaops/vendaops-backend/pkg/notify"
	"github.com/vendaops/vendaops-backend/pkg/pagination"
)

type stockCall struct {
	kind     string
	orderID  string
	offerRef string
}

type stubStock struct {
	calls []stockCall
}

func (s *stubStock) ProcessSaleForOrder(_ context.Context, orderID, offerRef, _ string) error {
	s.calls = append(s.calls, stockCall{kind: "sale", orderID: orderID, offerRef: offerRef})
	return nil
}

func (s *stubStock) ProcessReturnForOrder(_ context.Context, orderID, offerRef, _ string) error {
	s.calls = append(s.calls, stockCall{kind: "return", orderID: orderID, offerRef: offerRef})
	return nil
}

var (
	admin  = Viewer{Role: enums.RoleAdmin, Name: "Admin"}
	seller = Viewer{Role: enums.RoleSeller, Name: "Carlos Silva"}
)

func newTestService(t *testing.T) (Service, *stubStock) {
	t.Helper()
	conn := openTestDB(t)
	client := db.NewFromConn(conn)
	repo := NewRepository(conn)
	stock := &stubStock{}
	logg := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
	svc, err := NewService(repo, client, NewDetector(repo, 0.05), stock, logg, nil, notify.NoopBroadcaster{})
	require.NoError(t, err)
	return svc, stock
}

func baseInput(orderID string) CreateOrderInput {
	return CreateOrderInput{
		OrderID:      orderID,
		SaleDate:     "01/08/2026",
		CustomerName: "Maria Oliveira",
		Phone:        "11988887777",
		OfferRef:     "Flexmax - Kit 3 Unidades",
		SaleValue:    decimal.RequireFromString("200.00"),
		SellerName:   "Carlos Silva",
	}
}

func TestCreateOrderStartsInLiberacaoAndConsumesStock(t *testing.T) {
	svc, stock := newTestService(t)

	order, err := svc.Create(context.Background(), baseInput("V1"), seller)
	require.NoError(t, err)
	assert.Equal(t, enums.SaleStatusLiberacao, order.SaleStatus)
	require.Len(t, order.BillingHistory, 1)
	assert.Equal(t, "Pedido registrado", order.BillingHistory[0].Note)

	require.Len(t, stock.calls, 1)
	assert.Equal(t, stockCall{kind: "sale", orderID: "V1", offerRef: "Flexmax - Kit 3 Unidades"}, stock.calls[0])
}

func TestCreateOrderRejectsDuplicateID(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), baseInput("V1"), seller)
	require.NoError(t, err)

	input := baseInput("V1")
	input.Phone = "11900001111"
	_, err = svc.Create(context.Background(), input, seller)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
}

func TestCreateOrderRejectsNegativeReceivedValue(t *testing.T) {
	svc, stock := newTestService(t)

	input := baseInput("V1")
	input.ReceivedValue = decimal.RequireFromString("-50.00")
	_, err := svc.Create(context.Background(), input, seller)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Empty(t, stock.calls)

	_, err = svc.Get(context.Background(), "V1")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDuplicateDetectionWithinTolerance(t *testing.T) {
	svc, stock := newTestService(t)

	_, err := svc.Create(context.Background(), baseInput("V1"), seller)
	require.NoError(t, err)
	require.Len(t, stock.calls, 1)

	// 3% below the existing 200.00: flagged, no stock movement
	near := baseInput("V2")
	near.SaleValue = decimal.RequireFromString("194.00")
	flagged, err := svc.Create(context.Background(), near, seller)
	require.NoError(t, err)
	assert.Equal(t, enums.SaleStatusPossiveisDuplicados, flagged.SaleStatus)
	require.Len(t, flagged.DuplicateMatches, 1)
	assert.Equal(t, "V1", flagged.DuplicateMatches[0].OrderID)
	assert.Len(t, stock.calls, 1)

	// 6% below: clean
	far := baseInput("V3")
	far.SaleValue = decimal.RequireFromString("188.00")
	clean, err := svc.Create(context.Background(), far, seller)
	require.NoError(t, err)
	assert.Equal(t, enums.SaleStatusLiberacao, clean.SaleStatus)
	assert.Empty(t, clean.DuplicateMatches)
}

func TestDuplicateDetectionIgnoresOtherPhones(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), baseInput("V1"), seller)
	require.NoError(t, err)

	other := baseInput("V2")
	other.Phone = "21911112222"
	order, err := svc.Create(context.Background(), other, seller)
	require.NoError(t, err)
	assert.Equal(t, enums.SaleStatusLiberacao, order.SaleStatus)
}

func TestApproveDuplicateConsumesStock(t *testing.T) {
	svc, stock := newTestService(t)

	_, err := svc.Create(context.Background(), baseInput("V1"), seller)
	require.NoError(t, err)

	dup := baseInput("V2")
	_, err = svc.Create(context.Background(), dup, seller)
	require.NoError(t, err)
	require.Len(t, stock.calls, 1)

	approved, err := svc.Approve(context.Background(), "V2", admin)
	require.NoError(t, err)
	assert.Equal(t, enums.SaleStatusEmSeparacao, approved.SaleStatus)
	require.Len(t, stock.calls, 2)
	assert.Equal(t, stockCall{kind: "sale", orderID: "V2", offerRef: "Flexmax - Kit 3 Unidades"}, stock.calls[1])
}

func TestRejectRequiresReasonAndSkipsReturnForDuplicates(t *testing.T) {
	svc, stock := newTestService(t)

	_, err := svc.Create(context.Background(), baseInput("V1"), seller)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), baseInput("V2"), seller)
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), "V2", "  ", admin)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	rejected, err := svc.Reject(context.Background(), "V2", "Cliente repetiu o pedido", admin)
	require.NoError(t, err)
	assert.Equal(t, enums.SaleStatusCancelado, rejected.SaleStatus)
	last := rejected.BillingHistory[len(rejected.BillingHistory)-1]
	assert.Equal(t, "Cliente repetiu o pedido", last.Note)

	// only V1's creation consumed stock; the rejected duplicate never did
	require.Len(t, stock.calls, 1)
	assert.Equal(t, "V1", stock.calls[0].orderID)
}

func TestCancelAfterSeparationReturnsStock(t *testing.T) {
	svc, stock := newTestService(t)

	_, err := svc.Create(context.Background(), baseInput("V1"), seller)
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), "V1", admin)
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), "V1", "Desistência", admin)
	require.NoError(t, err)

	require.Len(t, stock.calls, 2)
	assert.Equal(t, "return", stock.calls[1].kind)
	assert.Equal(t, "V1", stock.calls[1].orderID)
}

func TestTransitionTableEnforced(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), baseInput("V1"), seller)
	require.NoError(t, err)

	// Liberação cannot jump straight to Entregue
	_, err = svc.Transition(context.Background(), "V1", enums.SaleStatusEntregue, "", admin)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = svc.Transition(context.Background(), "V1", enums.SaleStatus("Inexistente"), "", admin)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCompletoAutofillsReceivedValue(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), baseInput("V1"), seller)
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), "V1", enums.SaleStatusPagamentoPendente, "", admin)
	require.NoError(t, err)

	done, err := svc.Transition(context.Background(), "V1", enums.SaleStatusCompleto, "", admin)
	require.NoError(t, err)
	assert.True(t, done.ReceivedValue.Equal(decimal.RequireFromString("200.00")))
}

func TestCompletoKeepsExplicitReceivedValue(t *testing.T) {
	svc, _ := newTestService(t)

	input := baseInput("V1")
	input.ReceivedValue = decimal.RequireFromString("150.00")
	_, err := svc.Create(context.Background(), input, seller)
	require.NoError(t, err)

	_, err = svc.Transition(context.Background(), "V1", enums.SaleStatusPagamentoPendente, "", admin)
	require.NoError(t, err)
	done, err := svc.Transition(context.Background(), "V1", enums.SaleStatusCompleto, "", admin)
	require.NoError(t, err)
	assert.True(t, done.ReceivedValue.Equal(decimal.RequireFromString("150.00")))
}

func TestNothingLeavesDeletado(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), baseInput("V1"), seller)
	require.NoError(t, err)
	require.NoError(t, svc.SoftDelete(context.Background(), "V1", admin))

	_, err = svc.Transition(context.Background(), "V1", enums.SaleStatusLiberacao, "", admin)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	// repeated delete is a no-op
	require.NoError(t, svc.SoftDelete(context.Background(), "V1", admin))
}

func TestSoftDeleteRequiresAdmin(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), baseInput("V1"), seller)
	require.NoError(t, err)

	err = svc.SoftDelete(context.Background(), "V1", seller)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = svc.Transition(context.Background(), "V1", enums.SaleStatusDeletado, "", seller)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}

func TestAttachTrackingMovesToTransit(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), baseInput("V1"), seller)
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), "V1", admin)
	require.NoError(t, err)

	shipped, err := svc.AttachTracking(context.Background(), "V1", "BR123456789", admin)
	require.NoError(t, err)
	assert.Equal(t, enums.SaleStatusEmTransito, shipped.SaleStatus)
	assert.Equal(t, "BR123456789", shipped.TrackingCode)

	// overwriting the code while in transit is permitted
	updated, err := svc.AttachTracking(context.Background(), "V1", "BR999999999", admin)
	require.NoError(t, err)
	assert.Equal(t, enums.SaleStatusEmTransito, updated.SaleStatus)
	assert.Equal(t, "BR999999999", updated.TrackingCode)
}

func TestAttachTrackingPersistsCodeWithTransition(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), baseInput("V1"), seller)
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), "V1", admin)
	require.NoError(t, err)

	_, err = svc.AttachTracking(context.Background(), "V1", "BR123456789", admin)
	require.NoError(t, err)

	stored, err := svc.Get(context.Background(), "V1")
	require.NoError(t, err)
	assert.Equal(t, enums.SaleStatusEmTransito, stored.SaleStatus)
	assert.Equal(t, "BR123456789", stored.TrackingCode)
	// one history entry covers both the code and the status change
	require.Len(t, stored.BillingHistory, 3)
	assert.Equal(t, "Código de rastreio BR123456789", stored.BillingHistory[2].Note)
}

func TestAttachTrackingRejectedOutsideSeparationOrTransit(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), baseInput("V1"), seller)
	require.NoError(t, err)

	_, err = svc.AttachTracking(context.Background(), "V1", "BR123", admin)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	_, err = svc.AttachTracking(context.Background(), "V1", "   ", admin)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestRecordCarrierStatus(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), baseInput("V1"), seller)
	require.NoError(t, err)

	order, err := svc.RecordCarrierStatus(context.Background(), "V1", "Objeto postado")
	require.NoError(t, err)
	assert.Equal(t, "Objeto postado", order.CarrierStatus)
	assert.NotEmpty(t, order.CarrierUpdatedAt)
	// carrier callbacks never move the order status
	assert.Equal(t, enums.SaleStatusLiberacao, order.SaleStatus)
}

func TestAddBillingPaymentAccumulates(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), baseInput("V1"), seller)
	require.NoError(t, err)

	order, err := svc.AddBillingPayment(context.Background(), "V1", BillingPaymentInput{
		Amount: decimal.RequireFromString("80.00"),
		Note:   "primeira parcela",
	}, admin)
	require.NoError(t, err)
	assert.True(t, order.ReceivedValue.Equal(decimal.RequireFromString("80.00")))
	assert.True(t, order.Partial)

	order, err = svc.AddBillingPayment(context.Background(), "V1", BillingPaymentInput{
		Amount: decimal.RequireFromString("120.00"),
	}, admin)
	require.NoError(t, err)
	assert.True(t, order.ReceivedValue.Equal(decimal.RequireFromString("200.00")))
	assert.False(t, order.Partial)
	// creation entry plus two payments
	assert.Len(t, order.BillingHistory, 3)

	_, err = svc.AddBillingPayment(context.Background(), "V1", BillingPaymentInput{Amount: decimal.Zero}, admin)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestListAndCountByStatus(t *testing.T) {
	svc, _ := newTestService(t)

	for _, id := range []string{"V1", "V2", "V3"} {
		input := baseInput(id)
		input.Phone = "119" + id // distinct phones so nothing is flagged
		_, err := svc.Create(context.Background(), input, seller)
		require.NoError(t, err)
	}
	_, err := svc.Approve(context.Background(), "V3", admin)
	require.NoError(t, err)

	result, err := svc.List(context.Background(), ListFilters{}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, result.Orders, 3)

	status := enums.SaleStatusEmSeparacao
	result, err = svc.List(context.Background(), ListFilters{Status: &status}, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, result.Orders, 1)
	assert.Equal(t, "V3", result.Orders[0].OrderID)

	counts, err := svc.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[enums.SaleStatusLiberacao])
	assert.Equal(t, int64(1), counts[enums.SaleStatusEmSeparacao])
}
