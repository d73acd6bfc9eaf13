package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/quoteflow/quoteflow-backend/api/controllers"
	"github.com/quoteflow/quoteflow-backend/api/middleware"
	"github.com/quoteflow/quoteflow-backend/internal/auth"
	"github.com/quoteflow/quoteflow-backend/internal/customers"
	"github.com/quoteflow/quoteflow-backend/internal/estimates"
	"github.com/quoteflow/quoteflow-backend/internal/items"
	"github.com/quoteflow/quoteflow-backend/internal/taxes"
	"github.com/quoteflow/quoteflow-backend/pkg/auth/session"
	"github.com/quoteflow/quoteflow-backend/pkg/config"
	"github.com/quoteflow/quoteflow-backend/pkg/db"
	"github.com/quoteflow/quoteflow-backend/pkg/logger"
	"github.com/quoteflow/quoteflow-backend/pkg/metrics"
	"github.com/quoteflow/quoteflow-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Deps bundles everything the router composes into the HTTP surface.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Redis           *redis.Client
	SessionManager  sessionManager
	Registry        *prometheus.Registry
	HTTPMetrics     *metrics.HTTPMetrics
	AuthService     auth.Service
	RegisterService auth.RegisterService
	CustomerService customers.Service
	ItemService     items.Service
	TaxService      taxes.Service
	EstimateService estimates.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	// Typed nils must not reach the readiness probe as non-nil interfaces.
	var cache interface{ Ping(context.Context) error }
	if d.Redis != nil {
		cache = d.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive())
		r.Get("/ready", controllers.HealthReady(d.DB, cache, logg))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(d.RegisterService, logg))
		r.Post("/login", controllers.AuthLogin(d.AuthService, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.SessionManager, cfg.JWT, logg))
		r.Post("/logout", controllers.AuthLogout(d.SessionManager, cfg.JWT, logg))
		r.With(middleware.Auth(cfg.JWT, d.SessionManager, logg)).
			Get("/me", controllers.AuthMe(d.AuthService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.SessionManager, logg))

		r.Route("/customers", func(r chi.Router) {
			r.Post("/", controllers.CustomerCreate(d.CustomerService, logg))
			r.Get("/", controllers.CustomerList(d.CustomerService, logg))
			r.Get("/search", controllers.CustomerSearch(d.CustomerService, logg))
			r.Route("/{customerId}", func(r chi.Router) {
				r.Get("/", controllers.CustomerGet(d.CustomerService, logg))
				r.Put("/", controllers.CustomerUpdate(d.CustomerService, logg))
				r.Delete("/", controllers.CustomerDelete(d.CustomerService, logg))
				r.Get("/estimates", controllers.CustomerEstimates(d.EstimateService, logg))
			})
		})

		r.Route("/items", func(r chi.Router) {
			r.Post("/", controllers.ItemCreate(d.ItemService, logg))
			r.Get("/", controllers.ItemList(d.ItemService, logg))
			r.Get("/search", controllers.ItemSearch(d.ItemService, logg))
			r.Route("/{itemId}", func(r chi.Router) {
				r.Get("/", controllers.ItemGet(d.ItemService, logg))
				r.Put("/", controllers.ItemUpdate(d.ItemService, logg))
				r.Delete("/", controllers.ItemDelete(d.ItemService, logg))
			})
		})

		r.Route("/taxes", func(r chi.Router) {
			r.Post("/", controllers.TaxCreate(d.TaxService, logg))
			r.Get("/", controllers.TaxList(d.TaxService, logg))
			r.Delete("/{taxId}", controllers.TaxDelete(d.TaxService, logg))
		})

		r.Route("/estimates", func(r chi.Router) {
			r.Post("/", controllers.EstimateCreate(d.EstimateService, logg))
			r.Get("/{estimateId}", controllers.EstimateGet(d.EstimateService, logg))
			r.Get("/number/{estimateNumber}", controllers.EstimateGetByNumber(d.EstimateService, logg))
		})
	})

	return r
}
