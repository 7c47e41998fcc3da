// Package visibility projects order listings down to what a viewer is
// allowed to see and applies the list-level filter and sort options.
package visibility

import (
	"sort"
	"strings"
	"time"

	"github.com/vendaops/vendaops-backend/internal/orders"
	"github.com/vendaops/vendaops-backend/pkg/enums"
	"github.com/vendaops/vendaops-backend/pkg/types"
)

// Sortable fields. Each one holds a DD/MM/YYYY value, possibly with a
// trailing time-of-day suffix.
const (
	SortSaleDate         = "sale_date"
	SortLastUpdatedAt    = "last_updated_at"
	SortNegotiationDate  = "negotiation_date"
	SortCarrierUpdatedAt = "carrier_updated_at"
)

// Options narrow and order a projected listing.
type Options struct {
	// Status keeps only orders whose status equals this value,
	// case-insensitively. Empty means no status filter.
	Status string
	// ReceiveToday keeps only orders whose receive_date is today.
	ReceiveToday bool
	// SortField is one of the Sort* constants. Empty means keep the
	// incoming order.
	SortField string
	// Descending reverses the sort. Rows without a parseable date stay
	// last either way.
	Descending bool

	// now is overridable in tests for the ReceiveToday cutoff.
	now func() time.Time
}

// MatchesOwner reports whether an order's owner field belongs to the
// viewer. Matching is forgiving about spreadsheet noise: both sides are
// trimmed and case-folded, and a substring hit in either direction counts,
// so "Maria" matches "Maria Oliveira" and vice versa.
func MatchesOwner(ownerField, viewerName string) bool {
	owner := strings.ToLower(strings.TrimSpace(ownerField))
	viewer := strings.ToLower(strings.TrimSpace(viewerName))
	if owner == "" || viewer == "" {
		return false
	}
	return strings.Contains(owner, viewer) || strings.Contains(viewer, owner)
}

// Project returns the subset of orders the viewer may see, filtered and
// sorted per opts. The input slice is not modified.
func Project(rows []orders.OrderDTO, viewer orders.Viewer, opts Options) []orders.OrderDTO {
	now := time.Now
	if opts.now != nil {
		now = opts.now
	}

	wantStatus := strings.ToLower(strings.TrimSpace(opts.Status))
	deletadoRequested := wantStatus == strings.ToLower(string(enums.SaleStatusDeletado))
	today := types.FormatDate(now())

	out := make([]orders.OrderDTO, 0, len(rows))
	for _, row := range rows {
		if !visibleToViewer(row, viewer) {
			continue
		}
		if row.SaleStatus == enums.SaleStatusDeletado &&
			viewer.Role != enums.RoleAdmin && !deletadoRequested {
			continue
		}
		if wantStatus != "" && strings.ToLower(string(row.SaleStatus)) != wantStatus {
			continue
		}
		if opts.ReceiveToday && strings.TrimSpace(row.ReceiveDate) != today {
			continue
		}
		out = append(out, row)
	}

	if opts.SortField != "" {
		sortByDate(out, opts.SortField, opts.Descending)
	}
	return out
}

func visibleToViewer(row orders.OrderDTO, viewer orders.Viewer) bool {
	if viewer.Role.SeesAllOrders() {
		return true
	}
	switch viewer.Role {
	case enums.RoleSeller:
		return MatchesOwner(row.SellerName, viewer.Name) || MatchesOwner(row.SellerName, viewer.Email)
	case enums.RoleCollector:
		return MatchesOwner(row.OperatorName, viewer.Name) || MatchesOwner(row.OperatorName, viewer.Email)
	default:
		return false
	}
}

func sortField(row orders.OrderDTO, field string) string {
	switch field {
	case SortSaleDate:
		return row.SaleDate
	case SortLastUpdatedAt:
		return row.LastUpdatedAt
	case SortNegotiationDate:
		return row.NegotiationDate
	case SortCarrierUpdatedAt:
		return row.CarrierUpdatedAt
	default:
		return ""
	}
}

// sortByDate orders rows by a DD/MM/YYYY field. Rows whose value is empty
// or unparseable sort after every dated row regardless of direction, and
// ties keep their incoming order.
func sortByDate(rows []orders.OrderDTO, field string, descending bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		left, leftOK := types.ParseBRDate(sortField(rows[i], field))
		right, rightOK := types.ParseBRDate(sortField(rows[j], field))
		if leftOK != rightOK {
			return leftOK
		}
		if !leftOK {
			return false
		}
		if descending {
			return left.After(right)
		}
		return left.Before(right)
	})
}
