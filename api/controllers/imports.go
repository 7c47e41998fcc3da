package controllers

import (
	"net/http"

	"github.com/vendaops/vendaops-backend/api/middleware"
	"github.com/vendaops/vendaops-backend/api/responses"
	importsvc "github.com/vendaops/vendaops-backend/internal/imports"
	"github.com/vendaops/vendaops-backend/pkg/logger"
)

// ImportOrders ingests a CSV/TSV export posted as the raw request body and
// returns the per-row outcome report.
func ImportOrders(svc importsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.ImportOrders(r.Context(), r.Body, middleware.ViewerFrom(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
