package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/vendaops/vendaops-backend/api/responses"
	"github.com/vendaops/vendaops-backend/internal/orders"
	"github.com/vendaops/vendaops-backend/pkg/enums"
	pkgerrors "github.com/vendaops/vendaops-backend/pkg/errors"
	"github.com/vendaops/vendaops-backend/pkg/logger"
)

// Viewer identity headers. Authentication itself lives in front of this
// service; these headers arrive already verified.
const (
	viewerRoleHeader  = "X-Viewer-Role"
	viewerNameHeader  = "X-Viewer-Name"
	viewerEmailHeader = "X-Viewer-Email"
)

type viewerCtxKey struct{}

// ViewerContext resolves the acting viewer from the trusted identity headers
// and rejects requests carrying an unknown role.
func ViewerContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, err := enums.ParseRole(strings.TrimSpace(r.Header.Get(viewerRoleHeader)))
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "missing or invalid viewer role header"))
				return
			}

			viewer := orders.Viewer{
				Role:  role,
				Name:  strings.TrimSpace(r.Header.Get(viewerNameHeader)),
				Email: strings.TrimSpace(r.Header.Get(viewerEmailHeader)),
			}

			ctx := context.WithValue(r.Context(), viewerCtxKey{}, viewer)
			if logg != nil {
				ctx = logg.WithField(ctx, "viewer_role", role.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ViewerFrom returns the viewer resolved by ViewerContext. The zero viewer
// means the middleware did not run on this route.
func ViewerFrom(ctx context.Context) orders.Viewer {
	if viewer, ok := ctx.Value(viewerCtxKey{}).(orders.Viewer); ok {
		return viewer
	}
	return orders.Viewer{}
}
