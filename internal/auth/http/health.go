package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/tabauth/pkg/authsdk"
	"github.com/aussiebroadwan/tabauth/pkg/httpx"
)

// Pinger is anything whose backend can be health checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessChecks are the dependencies /readyz reports on. The session
// backend may be the account store itself or a separate redis.
type ReadinessChecks struct {
	Accounts Pinger
	Sessions Pinger
}

const defaultPingTimeout = 2 * time.Second

// Health serves the liveness and readiness endpoints of one process.
type Health struct {
	version     string
	started     time.Time
	checks      ReadinessChecks
	pingTimeout time.Duration
}

func NewHealth(version string, checks ReadinessChecks) *Health {
	return &Health{
		version:     version,
		started:     time.Now(),
		checks:      checks,
		pingTimeout: defaultPingTimeout,
	}
}

// HandleLive godoc
//
//	@Summary		Liveness
//	@Description	Reports that the process is serving requests. No dependency is contacted, so the answer is always 200
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func (h *Health) HandleLive(w http.ResponseWriter, _ *http.Request) {
	h.write(w, http.StatusOK, "ok", nil)
}

// HandleReady godoc
//
//	@Summary		Readiness
//	@Description	Pings the account store and the session backend. Any failing dependency turns the status to degraded
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"degraded, with the failing check"
//	@Router			/readyz [get].
func (h *Health) HandleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.pingTimeout)
	defer cancel()

	checks := &authsdk.HealthChecks{
		Accounts: ping(ctx, h.checks.Accounts),
		Sessions: ping(ctx, h.checks.Sessions),
	}
	if checks.Accounts != "ok" || checks.Sessions != "ok" {
		h.write(w, http.StatusServiceUnavailable, "degraded", checks)
		return
	}
	h.write(w, http.StatusOK, "ok", checks)
}

func (h *Health) write(w http.ResponseWriter, code int, status string, checks *authsdk.HealthChecks) {
	httpx.NoCache(w)
	httpx.WriteJSON(w, code, authsdk.HealthResponse{
		Status:  status,
		Uptime:  time.Since(h.started).Truncate(time.Second).String(),
		Version: h.version,
		Checks:  checks,
	})
}

func ping(ctx context.Context, p Pinger) string {
	if p == nil {
		return "error: not configured"
	}
	if err := p.Ping(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}
