package http

import (
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/tabauth/internal/auth/metrics"
	"github.com/aussiebroadwan/tabauth/internal/auth/service"
	"github.com/aussiebroadwan/tabauth/pkg/authsdk"
	"github.com/aussiebroadwan/tabauth/pkg/httpx"
	"github.com/aussiebroadwan/tabauth/pkg/jwtx"
	"github.com/aussiebroadwan/tabauth/pkg/slogx"

	_ "github.com/aussiebroadwan/tabauth/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier jwtx.Verifier
	health   *Health
	logger   *slog.Logger

	AuthService *service.AuthService
	Metrics     *metrics.Metrics // Optional: /metrics is only served when set

	Cookie CookieConfig

	// Dev adds internal error text to error envelopes.
	Dev bool

	// TrustProxy makes session metadata use forwarding headers.
	TrustProxy bool
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	checks ReadinessChecks,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:      http.NewServeMux(),
		verifier: verifier,
		health:   NewHealth(buildVersion, checks),
		logger:   logger,
		Cookie:   DefaultCookieConfig(),
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.Authenticate(r.verifier),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			TabAuth Authentication Service API
//	@version		0.1.0
//	@description	Email and password authentication issuing short-lived bearer tokens and single-use rotation credentials.
//	@description
//	@description				Bearer tokens are HS256 JWTs. The rotation credential is delivered in the refresh_token cookie scoped to /api/auth.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/tabauth
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService: r.AuthService,
		Cookie:      r.Cookie,
		Dev:         r.Dev,
		TrustProxy:  r.TrustProxy,
	}

	r.Mux.HandleFunc("POST /api/auth/register", h.HandleRegister)
	r.Mux.HandleFunc("POST /api/auth/login", h.HandleLogin)
	r.Mux.HandleFunc("POST /api/auth/refresh", h.HandleRefresh)
	r.Mux.HandleFunc("POST /api/auth/logout", h.HandleLogout)

	// The bearer token was already checked by the global Authenticate
	// middleware; RequireIdentity only turns its absence into a 401.
	r.Mux.Handle("GET /api/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.RequireIdentity(unauthorized),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.HandleFunc("GET /livez", r.health.HandleLive)
	r.Mux.HandleFunc("GET /readyz", r.health.HandleReady)

	if r.Metrics != nil {
		r.Mux.Handle("GET /metrics", r.Metrics.Handler())
	}
}

// unauthorized answers requests that reached a protected route without an
// identity.
var unauthorized = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	authsdk.ErrUnauthorized.WriteError(w, r)
})

// forbidden answers requests whose identity lacks a required role.
var forbidden = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	authsdk.ErrForbidden.WriteError(w, r)
})

// RequireRole guards a downstream handler so that only identities holding one
// of roles reach it. Anonymous callers get a 401, the rest a 403.
func RequireRole(next http.Handler, roles ...string) http.Handler {
	return httpx.Chain(next,
		httpx.RequireIdentity(unauthorized),
		httpx.RequireRole(forbidden, roles...),
	)
}
