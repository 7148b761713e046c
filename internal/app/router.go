package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/dukkan-erp/dukkan-erp/internal/checkout"
	"github.com/dukkan-erp/dukkan-erp/internal/ledger"
	"github.com/dukkan-erp/dukkan-erp/internal/observability"
	"github.com/dukkan-erp/dukkan-erp/internal/rbac"
	"github.com/dukkan-erp/dukkan-erp/internal/settlement"
	"github.com/dukkan-erp/dukkan-erp/internal/zones"
	"github.com/dukkan-erp/dukkan-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	ZonesHandler      *zones.Handler
	CheckoutHandler   *checkout.Handler
	LedgerHandler     *ledger.Handler
	SettlementHandler *settlement.Handler
	JobHandler        *jobs.Handler
	RBACMiddleware    rbac.Middleware
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router. The storefront surfaces (zones,
// checkout) are public; the back-office surfaces sit behind the capability
// checks.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/zones", func(r chi.Router) {
		zones.MountRoutes(r, params.ZonesHandler)
	})
	r.Route("/checkout", func(r chi.Router) {
		checkout.MountRoutes(r, params.CheckoutHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(params.RBACMiddleware.Authenticate)

		r.Route("/parties", func(r chi.Router) {
			r.Use(params.RBACMiddleware.Require(rbac.PermLedgerView))
			ledger.MountRoutes(r, params.LedgerHandler)
		})
		r.Route("/settlements", func(r chi.Router) {
			r.Use(params.RBACMiddleware.RequireAny(
				rbac.PermLedgerView, rbac.PermSettlementCreate, rbac.PermSettlementVoid))
			settlement.MountRoutes(r, params.SettlementHandler)
		})
		if params.JobHandler != nil {
			r.Route("/jobs", func(r chi.Router) {
				r.Use(params.RBACMiddleware.Require(rbac.PermJobsTrigger))
				params.JobHandler.MountRoutes(r)
			})
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
