package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kickzhub/storefront-backend/api/controllers"
	cartcontrollers "github.com/kickzhub/storefront-backend/api/controllers/cart"
	"github.com/kickzhub/storefront-backend/api/middleware"
	"github.com/kickzhub/storefront-backend/internal/address"
	cartsvc "github.com/kickzhub/storefront-backend/internal/cart"
	checkoutsvc "github.com/kickzhub/storefront-backend/internal/checkout"
	promotionsvc "github.com/kickzhub/storefront-backend/internal/promotions"
	reconcilesvc "github.com/kickzhub/storefront-backend/internal/reconcile"
	"github.com/kickzhub/storefront-backend/internal/shopper"
	"github.com/kickzhub/storefront-backend/pkg/config"
	"github.com/kickzhub/storefront-backend/pkg/logger"
	"github.com/kickzhub/storefront-backend/pkg/redis"
)

// Deps collects everything the router needs.
type Deps struct {
	Config     *config.Config
	Logger     *logger.Logger
	Store      redis.Pinger
	Watcher    *shopper.Watcher
	Gatherer   prometheus.Gatherer
	Carts      cartsvc.Service
	Promotions promotionsvc.Service
	Addresses  address.Service
	Checkout   checkoutsvc.Service
	Reconciler reconcilesvc.Service
}

// NewRouter assembles the storefront HTTP surface.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Store))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Watcher, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.Fetch(deps.Carts, logg))
			r.Delete("/", cartcontrollers.Clear(deps.Carts, logg))
			r.Post("/items", cartcontrollers.AddItem(deps.Carts, logg))
			r.Put("/items/{productId}", cartcontrollers.UpdateItem(deps.Carts, logg))
			r.Delete("/items/{productId}", cartcontrollers.RemoveItem(deps.Carts, logg))
			r.Post("/promotion", cartcontrollers.ApplyPromotion(deps.Carts, deps.Promotions, logg))
			r.Delete("/promotion", cartcontrollers.RemovePromotion(deps.Carts, logg))
		})

		r.Get("/promotions", controllers.ListPromotions(deps.Promotions, logg))
		r.Get("/addresses", controllers.ListAddresses(deps.Addresses, logg))

		r.Route("/checkout", func(r chi.Router) {
			r.Get("/options", controllers.CheckoutOptions(deps.Checkout, logg))
			r.Post("/", controllers.SubmitCOD(deps.Checkout, deps.Addresses, logg))
			r.Post("/gateway", controllers.SubmitGateway(deps.Checkout, deps.Addresses, logg))
		})

		r.Get("/payment/return", controllers.PaymentReturn(deps.Reconciler, logg))
	})

	return r
}
