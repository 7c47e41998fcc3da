package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/vendaops/vendaops-backend/api/middleware"
	"github.com/vendaops/vendaops-backend/api/responses"
	"github.com/vendaops/vendaops-backend/api/validators"
	inventorysvc "github.com/vendaops/vendaops-backend/internal/inventory"
	"github.com/vendaops/vendaops-backend/pkg/enums"
	pkgerrors "github.com/vendaops/vendaops-backend/pkg/errors"
	"github.com/vendaops/vendaops-backend/pkg/logger"
	"github.com/vendaops/vendaops-backend/pkg/pagination"
)

// InventoryLevels returns the current stock position per SKU.
func InventoryLevels(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		levels, err := svc.Levels(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, levels)
	}
}

// InventoryStats returns the ledger summary for dashboards.
func InventoryStats(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := svc.Stats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// ListInventoryTransactions pages through the ledger newest first.
func ListInventoryTransactions(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := inventorysvc.TransactionFilters{}
		if raw := strings.TrimSpace(r.URL.Query().Get("variation")); raw != "" {
			variation, err := enums.ParseVariationType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variation filter"))
				return
			}
			filters.Variation = &variation
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("type")); raw != "" {
			txnType, err := enums.ParseInventoryTransactionType(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid type filter"))
				return
			}
			filters.Type = &txnType
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("order_id")); raw != "" {
			filters.OrderID = raw
		}

		result, err := svc.ListTransactions(r.Context(), filters, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type postTransactionRequest struct {
	VariationType string  `json:"variation_type" validate:"required"`
	Quantity      int     `json:"quantity" validate:"required"`
	Type          string  `json:"type" validate:"required"`
	OrderID       *string `json:"order_id,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

// PostInventoryTransaction appends a caller-specified ledger entry.
func PostInventoryTransaction(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload postTransactionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variation, err := enums.ParseVariationType(payload.VariationType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variation type"))
			return
		}
		txnType, err := enums.ParseInventoryTransactionType(payload.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid transaction type"))
			return
		}

		txn, err := svc.Post(r.Context(), inventorysvc.PostInput{
			VariationType: variation,
			Quantity:      payload.Quantity,
			Type:          txnType,
			OrderID:       payload.OrderID,
			Notes:         payload.Notes,
			CreatedBy:     middleware.ViewerFrom(r.Context()).Name,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}

type adjustRequest struct {
	VariationType string `json:"variation_type" validate:"required"`
	Quantity      int    `json:"quantity" validate:"required"`
	Notes         string `json:"notes,omitempty"`
}

// AdjustInventory posts a guarded manual correction.
func AdjustInventory(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload adjustRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variation, err := enums.ParseVariationType(payload.VariationType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variation type"))
			return
		}

		txn, err := svc.Adjust(r.Context(), inventorysvc.AdjustInput{
			VariationType: variation,
			Quantity:      payload.Quantity,
			Notes:         payload.Notes,
			CreatedBy:     middleware.ViewerFrom(r.Context()).Name,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}

type purchaseRequest struct {
	VariationType string          `json:"variation_type" validate:"required"`
	Quantity      int             `json:"quantity" validate:"required,gt=0"`
	CostPerUnit   decimal.Decimal `json:"cost_per_unit" validate:"required"`
	Notes         string          `json:"notes,omitempty"`
}

// AddPurchase records incoming stock with its unit cost.
func AddPurchase(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload purchaseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variation, err := enums.ParseVariationType(payload.VariationType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variation type"))
			return
		}

		txn, err := svc.AddPurchase(r.Context(), inventorysvc.PurchaseInput{
			VariationType: variation,
			Quantity:      payload.Quantity,
			CostPerUnit:   payload.CostPerUnit,
			Notes:         payload.Notes,
			CreatedBy:     middleware.ViewerFrom(r.Context()).Name,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, txn)
	}
}

type minimumLevelRequest struct {
	VariationType string `json:"variation_type" validate:"required"`
	MinimumLevel  int    `json:"minimum_level" validate:"min=0"`
}

// SetMinimumLevel updates the low-stock threshold for one SKU.
func SetMinimumLevel(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload minimumLevelRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variation, err := enums.ParseVariationType(payload.VariationType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variation type"))
			return
		}

		level, err := svc.SetMinimumLevel(r.Context(), variation, payload.MinimumLevel)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, level)
	}
}
