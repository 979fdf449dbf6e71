package rbac

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/kindred-stories/kindred/internal/access"
	"github.com/kindred-stories/kindred/internal/adminroles"
	"github.com/kindred-stories/kindred/internal/auth"
	"github.com/kindred-stories/kindred/internal/dashboard"
	"github.com/kindred-stories/kindred/internal/platform/httpx"
)

// Resolver resolves the admin role of an authenticated caller.
type Resolver interface {
	Resolve(ctx context.Context, p access.Principal) (access.Resolution, error)
}

// Middleware wires admin authorization helpers for HTTP handlers.
type Middleware struct {
	Resolver Resolver
	Logger   *slog.Logger
}

// RequireAdmin resolves the caller's admin role and stores it in the request
// context. Callers without an admin role get 404 so no admin surface is
// revealed. Must run after auth.Middleware.RequireBearer.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
			return
		}
		res, err := m.Resolver.Resolve(r.Context(), access.Principal{
			UserID:     id.UserID,
			Email:      id.Email,
			LegacyRole: id.LegacyRole,
		})
		if err != nil {
			m.logError("rbac resolve", err)
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
		if !res.OK {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithResolution(r.Context(), res)))
	})
}

// RequireAny ensures the caller has at least one of the capabilities.
func (m Middleware) RequireAny(caps ...adminroles.Capability) func(http.Handler) http.Handler {
	return m.require(caps, func(res access.Resolution) bool {
		for _, c := range caps {
			if res.Can(c) {
				return true
			}
		}
		return false
	})
}

// RequireAll ensures the caller has every capability.
func (m Middleware) RequireAll(caps ...adminroles.Capability) func(http.Handler) http.Handler {
	return m.require(caps, func(res access.Resolution) bool {
		for _, c := range caps {
			if !res.Can(c) {
				return false
			}
		}
		return true
	})
}

// RequireTab ensures the caller may open the dashboard tab.
func (m Middleware) RequireTab(tab dashboard.Tab) func(http.Handler) http.Handler {
	return m.RequireAll(dashboard.RequiredCapability(tab))
}

func (m Middleware) require(caps []adminroles.Capability, allowed func(access.Resolution) bool) func(http.Handler) http.Handler {
	for _, c := range caps {
		// Route tables are static; a typo must fail at mount time.
		adminroles.MustParseCapability(string(c))
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(caps) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			res, ok := ResolutionFromContext(r.Context())
			if !ok || !res.OK {
				http.NotFound(w, r)
				return
			}
			if !allowed(res) {
				if m.Logger != nil {
					m.Logger.Info("rbac denied", slog.String("user_id", res.UserID), slog.String("role", string(res.Role)), slog.String("path", r.URL.Path))
				}
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "missing capability")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) logError(msg string, err error) {
	if m.Logger != nil {
		m.Logger.Error(msg, slog.Any("error", err))
	}
}
