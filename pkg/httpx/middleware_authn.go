package httpx

import (
	"net/http"
	"regexp"

	"github.com/aussiebroadwan/tabauth/pkg/jwtx"
	"github.com/aussiebroadwan/tabauth/pkg/slogx"
)

var bearerPattern = regexp.MustCompile(`(?i)^Bearer\s+(.+)$`)

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, bool) {
	m := bearerPattern.FindStringSubmatch(r.Header.Get("Authorization"))
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Authenticate attaches the identity asserted by a valid bearer token to the
// request context. It never rejects: a missing header or a token that fails
// verification just means no identity is attached, and handlers that need
// one enforce it themselves (see RequireIdentity). Only the token is checked,
// no store is consulted.
func Authenticate(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				slogx.FromContext(r.Context()).Debug("bearer token rejected", "err", err)
				next.ServeHTTP(w, r)
				return
			}
			if claims.IsRefresh() {
				// Rotation tokens are not bearer credentials.
				next.ServeHTTP(w, r)
				return
			}

			ctx := slogx.WithAccount(WithClaims(r.Context(), claims), claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
