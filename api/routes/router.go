package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veloramarket/storefront-checkout/api/controllers"
	"github.com/veloramarket/storefront-checkout/api/middleware"
	checkoutsvc "github.com/veloramarket/storefront-checkout/internal/checkout"
	"github.com/veloramarket/storefront-checkout/internal/polling"
	"github.com/veloramarket/storefront-checkout/pkg/config"
	"github.com/veloramarket/storefront-checkout/pkg/logger"
	"github.com/veloramarket/storefront-checkout/pkg/redis"
)

// Dependencies carries everything the router wires into handlers. Nil
// optional fields (idempotency store, metrics gatherer) degrade the
// matching feature instead of panicking.
type Dependencies struct {
	Orders          controllers.OrdersService
	Checkout        *checkoutsvc.Service
	Poller          *polling.Controller
	Idempotency     redis.IdempotencyStore
	BackendPinger   controllers.Pinger
	CachePinger     controllers.Pinger
	MetricsGatherer prometheus.Gatherer
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.BackendPinger, deps.CachePinger))
	})

	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Idempotency, logg))

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", controllers.CheckoutSubmit(deps.Checkout, logg))
			r.Get("/{sessionId}", controllers.CheckoutSession(deps.Checkout, logg))
			r.Post("/{sessionId}/gateway/success", controllers.GatewaySuccess(deps.Checkout, logg))
			r.Post("/{sessionId}/gateway/failure", controllers.GatewayFailure(deps.Checkout, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/{orderId}", controllers.OrderDetail(deps.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(deps.Orders, logg))
			r.Get("/{orderId}/status/stream", controllers.OrderStatusStream(deps.Poller, logg))
		})
	})

	return r
}
