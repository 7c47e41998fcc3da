package catalog

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendaops/vendaops-backend/pkg/db"
	"github.com/vendaops/vendaops-backend/pkg/db/models"
	"github.com/vendaops/vendaops-backend/pkg/enums"
	pkgerrors "github.com/vendaops/vendaops-backend/pkg/errors"
	"github.com/vendaops/vendaops-backend/pkg/logger"
	"github.com/vendaops/vendaops-backend/pkg/notify"
)

func newTestService(t *testing.T) (Service, *Repository, *db.Client) {
	t.Helper()
	conn := openTestDB(t)
	client := db.NewFromConn(conn)
	repo := NewRepository(conn)
	logg := logger.New(logger.Options{ServiceName: "catalog-test", Output: io.Discard})
	svc, err := NewService(repo, client, logg, notify.NoopBroadcaster{})
	require.NoError(t, err)
	return svc, repo, client
}

func mustCreateProduct(t *testing.T, svc Service, name string, offers ...CreateOfferInput) *ProductDTO {
	t.Helper()
	product, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name:   name,
		Offers: offers,
	})
	require.NoError(t, err)
	return product
}

func TestCreateProductWithOffers(t *testing.T) {
	svc, _, _ := newTestService(t)

	product := mustCreateProduct(t, svc, "Flexmax",
		CreateOfferInput{Name: "Kit 3 Unidades", Price: decimal.RequireFromString("197.00"), GelQuantity: 3},
		CreateOfferInput{Name: "Kit Completo", Price: decimal.RequireFromString("297.00"), GelQuantity: 2, CapsulasQuantity: 1},
	)

	require.Len(t, product.Offers, 2)
	assert.Equal(t, "Flexmax - Kit 3 Unidades", product.Offers[0].DisplayName)
	assert.True(t, product.Active)
}

func TestCreateProductRejectsZeroQuantityOffer(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name: "Flexmax",
		Offers: []CreateOfferInput{
			{Name: "Kit Vazio", Price: decimal.RequireFromString("100.00")},
		},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestOfferPriceMustBePositive(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateProduct(context.Background(), CreateProductInput{
		Name: "Flexmax",
		Offers: []CreateOfferInput{
			{Name: "Kit Grátis", Price: decimal.Zero, GelQuantity: 1},
		},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	product := mustCreateProduct(t, svc, "Flexvita",
		CreateOfferInput{Name: "Kit 1 Unidade", Price: decimal.RequireFromString("97.00"), GelQuantity: 1},
	)

	_, err = svc.CreateOffer(context.Background(), product.ID, CreateOfferInput{
		Name: "Kit Zero", Price: decimal.Zero, GelQuantity: 1,
	})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	zero := decimal.Zero
	_, err = svc.UpdateOffer(context.Background(), product.Offers[0].ID, UpdateOfferInput{Price: &zero})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestResolveOfferByDisplayNameAndID(t *testing.T) {
	svc, _, _ := newTestService(t)
	product := mustCreateProduct(t, svc, "Flexmax",
		CreateOfferInput{Name: "Kit 3 Unidades", Price: decimal.RequireFromString("197.00"), GelQuantity: 3},
	)
	offerID := product.Offers[0].ID

	byName, err := svc.ResolveOffer(context.Background(), "flexmax - kit 3 unidades")
	require.NoError(t, err)
	assert.Equal(t, offerID, byName.ID)

	byID, err := svc.ResolveOffer(context.Background(), offerID.String())
	require.NoError(t, err)
	assert.Equal(t, "Flexmax - Kit 3 Unidades", byID.DisplayName)

	_, err = svc.ResolveOffer(context.Background(), "Inexistente - Kit")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestUpdateOfferRenameRewritesOrderRefs(t *testing.T) {
	svc, repo, client := newTestService(t)
	product := mustCreateProduct(t, svc, "Flexmax",
		CreateOfferInput{Name: "Kit 3 Unidades", Price: decimal.RequireFromString("197.00"), GelQuantity: 3},
	)
	offer := product.Offers[0]

	order := models.Order{
		OrderID:      "V1700000000001",
		CustomerName: "Maria Oliveira",
		OfferRef:     "Flexmax - Kit 3 Unidades",
		SaleValue:    decimal.RequireFromString("197.00"),
		SaleStatus:   enums.SaleStatusLiberacao,
	}
	require.NoError(t, client.DB().Create(&order).Error)

	newName := "Kit Trio"
	updated, err := svc.UpdateOffer(context.Background(), offer.ID, UpdateOfferInput{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Flexmax - Kit Trio", updated.DisplayName)

	var reloaded models.Order
	require.NoError(t, client.DB().First(&reloaded, "order_id = ?", order.OrderID).Error)
	assert.Equal(t, "Flexmax - Kit Trio", reloaded.OfferRef)

	count, err := repo.CountOrdersByOfferRef(context.Background(), "Flexmax - Kit 3 Unidades")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestProductRenameRewritesOrderRefs(t *testing.T) {
	svc, _, client := newTestService(t)
	product := mustCreateProduct(t, svc, "Flexmax",
		CreateOfferInput{Name: "Kit 3 Unidades", Price: decimal.RequireFromString("197.00"), GelQuantity: 3},
	)

	order := models.Order{
		OrderID:      "V1700000000002",
		CustomerName: "Carlos Silva",
		OfferRef:     "Flexmax - Kit 3 Unidades",
		SaleValue:    decimal.RequireFromString("197.00"),
		SaleStatus:   enums.SaleStatusLiberacao,
	}
	require.NoError(t, client.DB().Create(&order).Error)

	newName := "Flexmax Pro"
	_, err := svc.UpdateProduct(context.Background(), product.ID, UpdateProductInput{Name: &newName})
	require.NoError(t, err)

	var reloaded models.Order
	require.NoError(t, client.DB().First(&reloaded, "order_id = ?", order.OrderID).Error)
	assert.Equal(t, "Flexmax Pro - Kit 3 Unidades", reloaded.OfferRef)
}

func TestDeleteOfferHardDeletesUnused(t *testing.T) {
	svc, repo, _ := newTestService(t)
	product := mustCreateProduct(t, svc, "Flexmax",
		CreateOfferInput{Name: "Kit 3 Unidades", Price: decimal.RequireFromString("197.00"), GelQuantity: 3},
	)
	offerID := product.Offers[0].ID

	require.NoError(t, svc.DeleteOffer(context.Background(), offerID))

	_, err := repo.FindOfferByID(context.Background(), offerID)
	require.Error(t, err)

	err = svc.DeleteOffer(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDeleteOfferSoftDeletesInUse(t *testing.T) {
	svc, repo, client := newTestService(t)
	product := mustCreateProduct(t, svc, "Flexmax",
		CreateOfferInput{Name: "Kit 3 Unidades", Price: decimal.RequireFromString("197.00"), GelQuantity: 3},
	)
	offerID := product.Offers[0].ID

	order := models.Order{
		OrderID:      "V1700000000004",
		CustomerName: "Pedro Lima",
		OfferRef:     "Flexmax - Kit 3 Unidades",
		SaleValue:    decimal.RequireFromString("197.00"),
		SaleStatus:   enums.SaleStatusEmSeparacao,
	}
	require.NoError(t, client.DB().Create(&order).Error)

	require.NoError(t, svc.DeleteOffer(context.Background(), offerID))

	offer, err := repo.FindOfferByID(context.Background(), offerID)
	require.NoError(t, err)
	assert.False(t, offer.Active)

	// second delete is a no-op
	require.NoError(t, svc.DeleteOffer(context.Background(), offerID))

	offer, err = repo.FindOfferByID(context.Background(), offerID)
	require.NoError(t, err)
	assert.False(t, offer.Active)
}

func TestDeleteProductDeactivatesOffers(t *testing.T) {
	svc, _, _ := newTestService(t)
	product := mustCreateProduct(t, svc, "Flexmax",
		CreateOfferInput{Name: "Kit 3 Unidades", Price: decimal.RequireFromString("197.00"), GelQuantity: 3},
	)

	require.NoError(t, svc.DeleteProduct(context.Background(), product.ID))

	active, err := svc.ListActiveOffers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)

	listed, err := svc.ListProducts(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestRecomputeInUseFlagsReferencedOffers(t *testing.T) {
	svc, repo, client := newTestService(t)
	product := mustCreateProduct(t, svc, "Flexmax",
		CreateOfferInput{Name: "Kit 3 Unidades", Price: decimal.RequireFromString("197.00"), GelQuantity: 3},
		CreateOfferInput{Name: "Kit 5 Unidades", Price: decimal.RequireFromString("297.00"), GelQuantity: 5},
	)

	order := models.Order{
		OrderID:      "V1700000000003",
		CustomerName: "Ana Souza",
		OfferRef:     "Flexmax - Kit 3 Unidades",
		SaleValue:    decimal.RequireFromString("197.00"),
		SaleStatus:   enums.SaleStatusCompleto,
	}
	require.NoError(t, client.DB().Create(&order).Error)

	changed, err := svc.RecomputeInUse(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, changed)

	referenced, err := repo.FindOfferByID(context.Background(), product.Offers[0].ID)
	require.NoError(t, err)
	assert.True(t, referenced.InUse)

	idle, err := repo.FindOfferByID(context.Background(), product.Offers[1].ID)
	require.NoError(t, err)
	assert.False(t, idle.InUse)

	// a second pass changes nothing
	changed, err = svc.RecomputeInUse(context.Background())
	require.NoError(t, err)
	assert.Zero(t, changed)
}
