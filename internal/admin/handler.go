// Package admin mounts the admin API consumed by the dashboard shell.
package admin

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/kindred-stories/kindred/internal/dashboard"
	"github.com/kindred-stories/kindred/internal/platform/httpx"
	"github.com/kindred-stories/kindred/internal/rbac"
	"github.com/kindred-stories/kindred/internal/shared"
	"github.com/kindred-stories/kindred/internal/users"
)

// AuditLister reads recorded audit entries.
type AuditLister interface {
	List(ctx context.Context, entity string, limit int) ([]shared.AuditLog, error)
}

// Handler serves the /admin subtree. Mount it behind auth.RequireBearer and
// rbac.RequireAdmin.
type Handler struct {
	logger *slog.Logger
	rbac   rbac.Middleware
	audit  AuditLister
	users  *users.Handler
	roles  *rbac.PermissionsHandler
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, mw rbac.Middleware, audit AuditLister, usersHandler *users.Handler) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger: logger,
		rbac:   mw,
		audit:  audit,
		users:  usersHandler,
		roles:  rbac.NewPermissionsHandler(mw),
	}
}

// MountRoutes registers admin routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/me", h.me)
	r.Get("/tabs/{tab}", h.tab)
	r.Route("/roles", h.roles.MountRoutes)
	if h.users != nil {
		r.Route("/users", h.users.MountRoutes)
	}
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireTab(dashboard.TabAudit))
		r.Get("/audit", h.listAudit)
	})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	res, _ := rbac.ResolutionFromContext(r.Context())
	view, ok := dashboard.BuildView(res)
	if !ok {
		http.NotFound(w, r)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) tab(w http.ResponseWriter, r *http.Request) {
	tab, err := dashboard.ParseTab(chi.URLParam(r, "tab"))
	if err != nil {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	res, _ := rbac.ResolutionFromContext(r.Context())
	httpx.JSON(w, http.StatusOK, dashboard.CheckTab(res, tab))
}

type auditResponse struct {
	Entries []shared.AuditLog `json:"entries"`
}

func (h *Handler) listAudit(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "limit must be between 1 and 500")
			return
		}
		limit = parsed
	}
	entries, err := h.audit.List(r.Context(), users.AuditEntity, limit)
	if err != nil {
		h.logger.Error("list audit entries failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if entries == nil {
		entries = []shared.AuditLog{}
	}
	httpx.JSON(w, http.StatusOK, auditResponse{Entries: entries})
}
