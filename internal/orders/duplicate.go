package orders

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vendaops/vendaops-backend/pkg/db/models"
)

// DuplicateCandidate is the minimal shape the detector compares.
type DuplicateCandidate struct {
	Phone     string
	SaleValue decimal.Decimal
}

// DuplicateMatch points at an existing order the candidate resembles.
type DuplicateMatch struct {
	OrderID   string          `json:"order_id"`
	SaleValue decimal.Decimal `json:"sale_value"`
}

type liveOrdersByPhone interface {
	ListLiveByPhone(ctx context.Context, phone string) ([]models.Order, error)
}

// Detector flags probable duplicate orders: same phone and a sale value
// within the relative tolerance of the EXISTING order's value. The tolerance
// is measured off the existing order, not the candidate.
type Detector struct {
	repo      liveOrdersByPhone
	tolerance decimal.Decimal
}

// NewDetector builds a detector with the given relative tolerance (0.05 for
// five percent).
func NewDetector(repo liveOrdersByPhone, tolerance float64) *Detector {
	return &Detector{
		repo:      repo,
		tolerance: decimal.NewFromFloat(tolerance),
	}
}

// Check compares the candidate against every live order sharing its phone.
func (d *Detector) Check(ctx context.Context, candidate DuplicateCandidate) (bool, []DuplicateMatch, error) {
	phone := strings.TrimSpace(candidate.Phone)
	if phone == "" {
		return false, nil, nil
	}

	existing, err := d.repo.ListLiveByPhone(ctx, phone)
	if err != nil {
		return false, nil, err
	}

	var matches []DuplicateMatch
	for _, order := range existing {
		allowed := order.SaleValue.Mul(d.tolerance).Abs()
		diff := order.SaleValue.Sub(candidate.SaleValue).Abs()
		if diff.LessThanOrEqual(allowed) {
			matches = append(matches, DuplicateMatch{OrderID: order.OrderID, SaleValue: order.SaleValue})
		}
	}
	return len(matches) > 0, matches, nil
}
