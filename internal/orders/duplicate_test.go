package orders

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vendaops/vendaops-backend/pkg/db/models"
)

type memoryOrders struct {
	rows []models.Order
}

func (m *memoryOrders) ListLiveByPhone(_ context.Context, phone string) ([]models.Order, error) {
	var out []models.Order
	for _, row := range m.rows {
		if row.Phone == phone {
			out = append(out, row)
		}
	}
	return out, nil
}

func TestDetectorToleranceIsRelativeToExisting(t *testing.T) {
	repo := &memoryOrders{rows: []models.Order{
		{OrderID: "V1", Phone: "11988887777", SaleValue: decimal.RequireFromString("200.00")},
	}}
	detector := NewDetector(repo, 0.05)

	// band is 200 ± 10
	flagged, matches, err := detector.Check(context.Background(), DuplicateCandidate{
		Phone: "11988887777", SaleValue: decimal.RequireFromString("190.00"),
	})
	require.NoError(t, err)
	assert.True(t, flagged)
	require.Len(t, matches, 1)
	assert.Equal(t, "V1", matches[0].OrderID)

	flagged, _, err = detector.Check(context.Background(), DuplicateCandidate{
		Phone: "11988887777", SaleValue: decimal.RequireFromString("189.99"),
	})
	require.NoError(t, err)
	assert.False(t, flagged)
}

func TestDetectorToleranceIsAsymmetric(t *testing.T) {
	repo := &memoryOrders{rows: []models.Order{
		{OrderID: "V1", Phone: "11988887777", SaleValue: decimal.RequireFromString("190.00")},
	}}
	detector := NewDetector(repo, 0.05)

	// band off the EXISTING value is 190 ± 9.50, so 200 is clean even
	// though 190 would match against an existing 200
	flagged, _, err := detector.Check(context.Background(), DuplicateCandidate{
		Phone: "11988887777", SaleValue: decimal.RequireFromString("200.00"),
	})
	require.NoError(t, err)
	assert.False(t, flagged)
}

func TestDetectorSkipsBlankPhone(t *testing.T) {
	repo := &memoryOrders{rows: []models.Order{
		{OrderID: "V1", Phone: "", SaleValue: decimal.RequireFromString("200.00")},
	}}
	detector := NewDetector(repo, 0.05)

	flagged, matches, err := detector.Check(context.Background(), DuplicateCandidate{
		Phone: "   ", SaleValue: decimal.RequireFromString("200.00"),
	})
	require.NoError(t, err)
	assert.False(t, flagged)
	assert.Nil(t, matches)
}
