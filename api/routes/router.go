package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tradesphere/tradesphere-backend/api/controllers"
	orderscontroller "github.com/tradesphere/tradesphere-backend/api/controllers/orders"
	vendorcontroller "github.com/tradesphere/tradesphere-backend/api/controllers/vendor"
	"github.com/tradesphere/tradesphere-backend/api/middleware"
	ordersvc "github.com/tradesphere/tradesphere-backend/internal/orders"
	"github.com/tradesphere/tradesphere-backend/internal/payments"
	"github.com/tradesphere/tradesphere-backend/pkg/config"
	"github.com/tradesphere/tradesphere-backend/pkg/db"
	"github.com/tradesphere/tradesphere-backend/pkg/enums"
	"github.com/tradesphere/tradesphere-backend/pkg/logger"
	"github.com/tradesphere/tradesphere-backend/pkg/redis"
)

// Deps collects everything the router needs.
type Deps struct {
	Config   *config.Config
	Log      *logger.Logger
	DB       *db.Client
	Redis    *redis.Client
	Orders   *ordersvc.Service
	Payments *payments.Service
	Registry *prometheus.Registry
}

// New assembles the HTTP router.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer(deps.Log))
	r.Use(middleware.RequestID(deps.Log))
	r.Use(middleware.Logging(deps.Log))

	r.Get("/health/live", controllers.HealthLive())
	r.Get("/health/ready", controllers.HealthReady(deps.DB, deps.Log))
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Auth(deps.Config.JWT, deps.Log))
		api.Use(middleware.Idempotency(deps.Redis, deps.Log))

		api.Route("/orders", func(orders chi.Router) {
			orders.Post("/", orderscontroller.Place(deps.Orders, deps.Log))
			orders.Get("/", orderscontroller.ListMine(deps.Orders, deps.Log))
			orders.Post("/verify-payment", orderscontroller.VerifyPayment(deps.Payments, deps.Log))
			orders.Get("/{orderId}", orderscontroller.Detail(deps.Orders, deps.Log))
			orders.Put("/{orderId}/confirm-transfer", orderscontroller.ConfirmTransfer(deps.Payments, deps.Log))
			orders.Put("/{orderId}/approve-payment", orderscontroller.ApprovePayment(deps.Payments, deps.Log))
			orders.Put("/{orderId}/status", orderscontroller.UpdateStatus(deps.Orders, deps.Log))
		})

		api.Route("/vendor", func(vendor chi.Router) {
			vendor.Use(middleware.RequireRole(deps.Log, enums.RoleVendor, enums.RoleAdmin))
			vendor.Get("/orders", vendorcontroller.Orders(deps.Orders, deps.Log))
			vendor.Get("/dashboard", vendorcontroller.Dashboard(deps.Orders, deps.Log))
		})
	})

	return r
}
