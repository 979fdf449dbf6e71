package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/kindred-stories/kindred/internal/platform/httpx"
)

// Middleware authenticates requests with bearer tokens.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
}

// RequireBearer rejects requests without a valid bearer token and stores the
// caller identity in the request context.
func (m Middleware) RequireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := m.Service.Verify(bearerToken(r))
		if err != nil {
			if m.Logger != nil {
				m.Logger.Info("bearer auth rejected", slog.String("path", r.URL.Path), slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "valid bearer token required")
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), id)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return token
}
