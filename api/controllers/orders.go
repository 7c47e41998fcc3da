package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/vendaops/vendaops-backend/api/middleware"
	"github.com/vendaops/vendaops-backend/api/responses"
	"github.com/vendaops/vendaops-backend/api/validators"
	ordersvc "github.com/vendaops/vendaops-backend/internal/orders"
	"github.com/vendaops/vendaops-backend/internal/visibility"
	"github.com/vendaops/vendaops-backend/pkg/enums"
	pkgerrors "github.com/vendaops/vendaops-backend/pkg/errors"
	"github.com/vendaops/vendaops-backend/pkg/logger"
	"github.com/vendaops/vendaops-backend/pkg/pagination"
	"github.com/vendaops/vendaops-backend/pkg/types"
)

type createOrderRequest struct {
	OrderID          string           `json:"order_id" validate:"required"`
	SaleDate         string           `json:"sale_date,omitempty"`
	CustomerName     string           `json:"customer_name" validate:"required"`
	Phone            string           `json:"phone,omitempty"`
	CustomerDocument string           `json:"customer_document,omitempty"`
	OfferRef         string           `json:"offer_ref,omitempty"`
	SaleValue        decimal.Decimal  `json:"sale_value" validate:"required"`
	ReceivedValue    decimal.Decimal  `json:"received_value,omitempty"`
	SellerName       string           `json:"seller_name,omitempty"`
	OperatorName     string           `json:"operator_name,omitempty"`
	NegotiationDate  string           `json:"negotiation_date,omitempty"`
	ReceiveDate      string           `json:"receive_date,omitempty"`
	PaymentMethod    string           `json:"payment_method,omitempty"`
	ShippingAddress  *types.Address   `json:"shipping_address,omitempty"`
}

func (r createOrderRequest) toInput() ordersvc.CreateOrderInput {
	return ordersvc.CreateOrderInput{
		OrderID:          r.OrderID,
		SaleDate:         r.SaleDate,
		CustomerName:     r.CustomerName,
		Phone:            r.Phone,
		CustomerDocument: r.CustomerDocument,
		OfferRef:         r.OfferRef,
		SaleValue:        r.SaleValue,
		ReceivedValue:    r.ReceivedValue,
		SellerName:       r.SellerName,
		OperatorName:     r.OperatorName,
		NegotiationDate:  r.NegotiationDate,
		ReceiveDate:      r.ReceiveDate,
		PaymentMethod:    r.PaymentMethod,
		ShippingAddress:  r.ShippingAddress,
	}
}

// CreateOrder records a sale, running it through the duplicate screen.
func CreateOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Create(r.Context(), payload.toInput(), middleware.ViewerFrom(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ListOrders returns a page of orders projected through the viewer's
// visibility rules, with the filter and sort options from the query string.
func ListOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		receiveToday, err := validators.ParseQueryBool(r, "receive_today")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := ordersvc.ListFilters{
			SellerName: strings.TrimSpace(r.URL.Query().Get("seller")),
			Phone:      strings.TrimSpace(r.URL.Query().Get("phone")),
			Search:     strings.TrimSpace(r.URL.Query().Get("search")),
		}

		statusParam := strings.TrimSpace(r.URL.Query().Get("status"))
		if statusParam != "" {
			status, err := enums.ParseSaleStatus(statusParam)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filters.Status = &status
		}

		sortField := strings.TrimSpace(r.URL.Query().Get("sort"))
		switch sortField {
		case "", visibility.SortSaleDate, visibility.SortLastUpdatedAt,
			visibility.SortNegotiationDate, visibility.SortCarrierUpdatedAt:
		default:
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown sort field"))
			return
		}

		result, err := svc.List(r.Context(), filters, pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result.Orders = visibility.Project(result.Orders, middleware.ViewerFrom(r.Context()), visibility.Options{
			Status:       statusParam,
			ReceiveToday: receiveToday,
			SortField:    sortField,
			Descending:   strings.EqualFold(r.URL.Query().Get("dir"), "desc"),
		})
		responses.WriteSuccess(w, result)
	}
}

// GetOrder returns a single order when the viewer may see it.
func GetOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := svc.Get(r.Context(), chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		viewer := middleware.ViewerFrom(r.Context())
		projected := visibility.Project([]ordersvc.OrderDTO{*order}, viewer, visibility.Options{})
		if len(projected) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
			return
		}
		responses.WriteSuccess(w, &projected[0])
	}
}

type transitionRequest struct {
	Target string `json:"target" validate:"required"`
	Note   string `json:"note,omitempty"`
}

// TransitionOrder moves an order to a new status.
func TransitionOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload transitionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseSaleStatus(payload.Target)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target status"))
			return
		}

		order, err := svc.Transition(r.Context(), chi.URLParam(r, "orderId"), target, payload.Note, middleware.ViewerFrom(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// ApproveOrder releases an order into separation.
func ApproveOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := svc.Approve(r.Context(), chi.URLParam(r, "orderId"), middleware.ViewerFrom(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// RejectOrder cancels an order with a mandatory reason.
func RejectOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload rejectRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Reject(r.Context(), chi.URLParam(r, "orderId"), payload.Reason, middleware.ViewerFrom(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type trackingRequest struct {
	TrackingCode string `json:"tracking_code" validate:"required"`
}

// AttachTracking stores the carrier tracking code.
func AttachTracking(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload trackingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.AttachTracking(r.Context(), chi.URLParam(r, "orderId"), payload.TrackingCode, middleware.ViewerFrom(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type carrierStatusRequest struct {
	CarrierStatus string `json:"carrier_status" validate:"required"`
}

// RecordCarrierStatus is the tracking poller's callback.
func RecordCarrierStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload carrierStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.RecordCarrierStatus(r.Context(), chi.URLParam(r, "orderId"), payload.CarrierStatus)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type billingPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	Date   string          `json:"date,omitempty"`
	Note   string          `json:"note,omitempty"`
}

// AddBillingPayment accumulates a received amount on the order.
func AddBillingPayment(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload billingPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.AddBillingPayment(r.Context(), chi.URLParam(r, "orderId"), ordersvc.BillingPaymentInput{
			Amount: payload.Amount,
			Date:   payload.Date,
			Note:   payload.Note,
		}, middleware.ViewerFrom(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// SoftDeleteOrder parks the order in the deleted status.
func SoftDeleteOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.SoftDelete(r.Context(), chi.URLParam(r, "orderId"), middleware.ViewerFrom(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// OrderStatusCounts returns the dashboard counters per status.
func OrderStatusCounts(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := svc.CountByStatus(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, counts)
	}
}
