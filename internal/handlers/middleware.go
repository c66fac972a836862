package handlers

import (
	"context"
	"strings"

	"github.com/milkroute/delivery-gateway/internal/model"
	xhttp "github.com/milkroute/delivery-gateway/pkg/http"
)

// identityKey is where the resolved user is parked on the request context.
const identityKey = "identity"

// IdentityResolver maps a bearer token to the current identity record.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, raw string) (*model.User, error)
}

// Guard wraps route handlers with token resolution. Role checks beyond
// "authenticated" live in the services so they are enforced no matter which
// transport calls them.
type Guard struct {
	auth IdentityResolver
}

func NewGuard(auth IdentityResolver) *Guard {
	return &Guard{auth: auth}
}

// Authenticated resolves the bearer token and rejects the request with 401
// before the wrapped handler runs.
func (g *Guard) Authenticated(next xhttp.RequestHandler) xhttp.RequestHandler {
	return func(ctx *xhttp.RequestCtx) {
		user, err := g.auth.ResolveIdentity(ctx, bearerToken(ctx))
		if err != nil {
			writeServiceError(ctx, err)
			return
		}
		ctx.SetUserValue(identityKey, user)
		next(ctx)
	}
}

func bearerToken(ctx *xhttp.RequestCtx) string {
	raw := string(ctx.Request.Header.Peek("Authorization"))
	if raw == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(raw, prefix) {
		return ""
	}
	return strings.TrimSpace(raw[len(prefix):])
}

// identity returns the user resolved by Guard.Authenticated. Handlers behind
// the guard may assume it is non-nil.
func identity(ctx *xhttp.RequestCtx) *model.User {
	user, _ := ctx.UserValue(identityKey).(*model.User)
	return user
}
