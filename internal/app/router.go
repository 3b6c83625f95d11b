package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tienda-pos/tienda/internal/auth"
	"github.com/tienda-pos/tienda/internal/catalog/categories"
	"github.com/tienda-pos/tienda/internal/catalog/products"
	"github.com/tienda-pos/tienda/internal/dashboard"
	"github.com/tienda-pos/tienda/internal/observability"
	"github.com/tienda-pos/tienda/internal/sales/customers"
	"github.com/tienda-pos/tienda/internal/sales/pos"
	"github.com/tienda-pos/tienda/internal/sales/reports"
	"github.com/tienda-pos/tienda/internal/shared"
	"github.com/tienda-pos/tienda/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler      *auth.Handler
	CategoryHandler  *categories.Handler
	ProductHandler   *products.Handler
	CustomerHandler  *customers.Handler
	SaleHandler      *pos.Handler
	ReportHandler    *reports.Handler
	DashboardHandler *dashboard.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi router. Everything except auth, health and
// metrics sits behind RequireAuth.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(RequireAuth)

		r.Route("/dashboard", params.DashboardHandler.MountRoutes)
		r.Route("/catalog/categories", params.CategoryHandler.MountRoutes)
		r.Route("/catalog/products", params.ProductHandler.MountRoutes)
		r.Route("/customers", params.CustomerHandler.MountRoutes)
		r.Route("/sales", func(r chi.Router) {
			params.ReportHandler.MountRoutes(r)
			params.SaleHandler.MountRoutes(r)
		})
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	if params.Config != nil && params.Config.UploadDir != "" {
		fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(params.Config.UploadDir)))
		r.Handle("/uploads/*", uploadCacheHandler(fileServer))
	}

	return r
}

// uploadCacheHandler adds browser caching for served product images.
func uploadCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
