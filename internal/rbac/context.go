package rbac

import (
	"context"

	"github.com/kindred-stories/kindred/internal/access"
)

type resolutionContextKey struct{}

// ContextWithResolution stores the caller's resolved admin role in context.
func ContextWithResolution(ctx context.Context, res access.Resolution) context.Context {
	return context.WithValue(ctx, resolutionContextKey{}, res)
}

// ResolutionFromContext extracts the caller's resolved admin role.
func ResolutionFromContext(ctx context.Context) (access.Resolution, bool) {
	res, ok := ctx.Value(resolutionContextKey{}).(access.Resolution)
	return res, ok
}
