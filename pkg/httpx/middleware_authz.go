package httpx

import (
	"net/http"
	"slices"
)

// RequireIdentity rejects requests that carry no identity by serving deny,
// after setting an RFC 6750 challenge header.
func RequireIdentity(deny http.Handler) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := IdentityFromContext(r.Context()); !ok {
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				deny.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireRole lets the request through only when the attached identity holds
// one of roles. Requests without identity are denied too; chain it after
// RequireIdentity to answer those with a 401 instead.
func RequireRole(deny http.Handler, roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok || !slices.Contains(roles, id.Role) {
				deny.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
