package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kindred-stories/kindred/internal/admin"
	"github.com/kindred-stories/kindred/internal/auth"
	"github.com/kindred-stories/kindred/internal/observability"
	"github.com/kindred-stories/kindred/internal/platform/httpx"
	"github.com/kindred-stories/kindred/internal/rbac"
	"github.com/kindred-stories/kindred/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	AuthMiddleware auth.Middleware
	RBACMiddleware rbac.Middleware
	AdminHandler   *admin.Handler
	JobHandler     *jobs.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with Kindred defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	if params.AdminHandler != nil {
		r.Route("/admin", func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireBearer)
			r.Use(params.RBACMiddleware.RequireAdmin)
			params.AdminHandler.MountRoutes(r)
		})
	}

	if params.JobHandler != nil {
		r.Route("/jobs", func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireBearer)
			r.Use(params.RBACMiddleware.RequireAdmin)
			params.JobHandler.MountRoutes(r)
		})
	}

	return r
}
