package httpx

import (
	"context"

	"github.com/aussiebroadwan/tabauth/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyIdentity ctxKey = "identity"
	CtxKeyClaims   ctxKey = "claims" // full verified jwtx.Claims
)

// WithClaims attaches verified bearer claims and the identity they assert.
func WithClaims(ctx context.Context, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyIdentity, c.Identity())
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// IdentityFromContext returns the identity attached by Authenticate, if any.
func IdentityFromContext(ctx context.Context) (jwtx.Identity, bool) {
	id, ok := ctx.Value(CtxKeyIdentity).(jwtx.Identity)
	if !ok || id.Subject == "" {
		return jwtx.Identity{}, false
	}
	return id, true
}

// ClaimsFromContext returns the verified bearer claims attached by
// Authenticate, if any.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return c, ok
}
