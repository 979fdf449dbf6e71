package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kindred-stories/kindred/internal/adminroles"
	"github.com/kindred-stories/kindred/internal/dashboard"
	"github.com/kindred-stories/kindred/internal/platform/httpx"
)

// PermissionsHandler serves the role matrix for the roles tab.
type PermissionsHandler struct {
	rbac Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(rbac Middleware) *PermissionsHandler {
	return &PermissionsHandler{rbac: rbac}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireTab(dashboard.TabRoles))
		r.Get("/", h.listRoles)
	})
}

type matrixResponse struct {
	Capabilities []adminroles.Capability     `json:"capabilities"`
	Roles        []adminroles.RoleDefinition `json:"roles"`
}

func (h *PermissionsHandler) listRoles(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, matrixResponse{
		Capabilities: adminroles.Capabilities(),
		Roles:        adminroles.Matrix(),
	})
}
