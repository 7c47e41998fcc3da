package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vendaops/vendaops-backend/api/controllers"
	"github.com/vendaops/vendaops-backend/api/middleware"
	catalogsvc "github.com/vendaops/vendaops-backend/internal/catalog"
	importsvc "github.com/vendaops/vendaops-backend/internal/imports"
	inventorysvc "github.com/vendaops/vendaops-backend/internal/inventory"
	ordersvc "github.com/vendaops/vendaops-backend/internal/orders"
	"github.com/vendaops/vendaops-backend/pkg/config"
	"github.com/vendaops/vendaops-backend/pkg/db"
	"github.com/vendaops/vendaops-backend/pkg/logger"
	"github.com/vendaops/vendaops-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        db.Pinger
	Redis     *redis.Client
	Registry  *prometheus.Registry
	Orders    ordersvc.Service
	Catalog   catalogsvc.Service
	Inventory inventorysvc.Service
	Imports   importsvc.Service
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.Logger, deps.DB, deps.Redis))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.ViewerContext(deps.Logger))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(deps.Orders, deps.Logger))
			r.Get("/", controllers.ListOrders(deps.Orders, deps.Logger))
			r.Get("/status-counts", controllers.OrderStatusCounts(deps.Orders, deps.Logger))
			r.Get("/{orderId}", controllers.GetOrder(deps.Orders, deps.Logger))
			r.Post("/{orderId}/transition", controllers.TransitionOrder(deps.Orders, deps.Logger))
			r.Post("/{orderId}/approve", controllers.ApproveOrder(deps.Orders, deps.Logger))
			r.Post("/{orderId}/reject", controllers.RejectOrder(deps.Orders, deps.Logger))
			r.Post("/{orderId}/tracking", controllers.AttachTracking(deps.Orders, deps.Logger))
			r.Post("/{orderId}/carrier-status", controllers.RecordCarrierStatus(deps.Orders, deps.Logger))
			r.Post("/{orderId}/billing", controllers.AddBillingPayment(deps.Orders, deps.Logger))
			r.Delete("/{orderId}", controllers.SoftDeleteOrder(deps.Orders, deps.Logger))
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.CreateProduct(deps.Catalog, deps.Logger))
				r.Get("/", controllers.ListProducts(deps.Catalog, deps.Logger))
				r.Get("/{productId}", controllers.GetProduct(deps.Catalog, deps.Logger))
				r.Patch("/{productId}", controllers.UpdateProduct(deps.Catalog, deps.Logger))
				r.Delete("/{productId}", controllers.DeleteProduct(deps.Catalog, deps.Logger))
				r.Post("/{productId}/offers", controllers.CreateOffer(deps.Catalog, deps.Logger))
			})
			r.Route("/offers", func(r chi.Router) {
				r.Get("/active", controllers.ListActiveOffers(deps.Catalog, deps.Logger))
				r.Get("/resolve", controllers.ResolveOffer(deps.Catalog, deps.Logger))
				r.Post("/recompute-in-use", controllers.RecomputeInUse(deps.Catalog, deps.Logger))
				r.Patch("/{offerId}", controllers.UpdateOffer(deps.Catalog, deps.Logger))
				r.Delete("/{offerId}", controllers.DeleteOffer(deps.Catalog, deps.Logger))
			})
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/levels", controllers.InventoryLevels(deps.Inventory, deps.Logger))
			r.Get("/stats", controllers.InventoryStats(deps.Inventory, deps.Logger))
			r.Get("/transactions", controllers.ListInventoryTransactions(deps.Inventory, deps.Logger))
			r.Post("/transactions", controllers.PostInventoryTransaction(deps.Inventory, deps.Logger))
			r.Post("/adjust", controllers.AdjustInventory(deps.Inventory, deps.Logger))
			r.Post("/purchase", controllers.AddPurchase(deps.Inventory, deps.Logger))
			r.Put("/minimum-level", controllers.SetMinimumLevel(deps.Inventory, deps.Logger))
		})

		r.Post("/imports/orders", controllers.ImportOrders(deps.Imports, deps.Logger))
	})

	return r
}
