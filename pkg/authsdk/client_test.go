package authsdk_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/tabauth/pkg/authsdk"
	"github.com/aussiebroadwan/tabauth/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

// fakeServer issues real tokens and a rotation cookie, and counts refreshes.
type fakeServer struct {
	codec     *jwtx.Codec
	refreshes atomic.Int32
	lastBody  atomic.Value
}

func newFakeServer(t *testing.T, accessTTL time.Duration) (*fakeServer, *httptest.Server) {
	t.Helper()

	codec, err := jwtx.NewCodec([]byte("0123456789abcdef0123456789abcdef"), jwtx.WithTTL(accessTTL, time.Hour))
	require.NoError(t, err)
	f := &fakeServer{codec: codec}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req authsdk.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "Passw0rd1" {
			authsdk.ErrUnauthorized.WriteError(w, r)
			return
		}
		f.issue(t, w, r, http.StatusOK, &authsdk.Account{ID: "acc-1", Email: req.Email})
	})
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshes.Add(1)
		ck, err := r.Cookie(authsdk.RefreshCookieName)
		if err != nil {
			var body authsdk.RefreshRequest
			_ = json.NewDecoder(r.Body).Decode(&body)
			f.lastBody.Store(body.RefreshToken)
			if body.RefreshToken == "" {
				authsdk.ErrUnauthorized.WriteError(w, r)
				return
			}
		} else if ck.Value == "" {
			authsdk.ErrUnauthorized.WriteError(w, r)
			return
		}
		f.issue(t, w, r, http.StatusOK, nil)
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: authsdk.RefreshCookieName, Path: "/api/auth", MaxAge: -1})
		authsdk.WriteData(w, r, http.StatusOK, "logged out", authsdk.LogoutResponse{})
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("Authorization")
		if len(raw) < 8 {
			authsdk.ErrUnauthorized.WriteError(w, r)
			return
		}
		claims, err := codec.Verify(raw[len("Bearer "):])
		if err != nil {
			authsdk.ErrUnauthorized.WriteError(w, r)
			return
		}
		authsdk.WriteData(w, r, http.StatusOK, "ok", authsdk.Account{ID: claims.Subject, Email: claims.Email})
	})
	mux.HandleFunc("GET /livez", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(authsdk.HealthResponse{Status: "ok", Version: "test"})
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(authsdk.HealthResponse{
			Status: "degraded",
			Checks: &authsdk.HealthChecks{Accounts: "ok", Sessions: "error: down"},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeServer) issue(t *testing.T, w http.ResponseWriter, r *http.Request, status int, acc *authsdk.Account) {
	pair, err := f.codec.MintPair(jwtx.Identity{Subject: "acc-1", Email: "alice@example.com"})
	require.NoError(t, err)

	http.SetCookie(w, &http.Cookie{
		Name:     authsdk.RefreshCookieName,
		Value:    pair.RefreshToken,
		Path:     "/api/auth",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   3600,
	})
	authsdk.WriteData(w, r, status, "ok", authsdk.AuthResponse{
		Account:     acc,
		AccessToken: pair.AccessToken,
		ExpiresIn:   int(pair.AccessExpiresIn.Seconds()),
	})
}

func TestSDKClient_CookieRoundTrip(t *testing.T) {
	t.Parallel()

	fake, srv := newFakeServer(t, 15*time.Minute)
	client := authsdk.NewSDKClient(srv.URL + "/")
	ctx := context.Background()

	_, ok := client.RefreshCookie()
	require.False(t, ok)

	res, err := client.Login(ctx, authsdk.LoginRequest{Email: "alice@example.com", Password: "Passw0rd1"})
	require.NoError(t, err)
	require.NotNil(t, res.Account)
	require.Equal(t, 900, res.ExpiresIn)

	cookie, ok := client.RefreshCookie()
	require.True(t, ok)
	require.NotEmpty(t, cookie)

	me, err := client.Me(ctx, res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "acc-1", me.ID)

	rotated, err := client.Refresh(ctx)
	require.NoError(t, err)
	require.Nil(t, rotated.Account)
	require.EqualValues(t, 1, fake.refreshes.Load())

	require.NoError(t, client.Logout(ctx, ""))
	_, ok = client.RefreshCookie()
	require.False(t, ok, "logout clears the cookie")

	_, err = client.Refresh(ctx)
	require.ErrorIs(t, err, authsdk.ErrUnauthorized)
}

func TestSDKClient_RefreshWithToken(t *testing.T) {
	t.Parallel()

	fake, srv := newFakeServer(t, 15*time.Minute)
	client := authsdk.NewSDKClient(srv.URL)

	_, err := client.RefreshWithToken(context.Background(), "explicit-token")
	require.NoError(t, err)
	require.Equal(t, "explicit-token", fake.lastBody.Load())
}

func TestSDKClient_ExplicitTokenBypassesJar(t *testing.T) {
	t.Parallel()

	fake, srv := newFakeServer(t, 15*time.Minute)
	client := authsdk.NewSDKClient(srv.URL)
	ctx := context.Background()

	_, err := client.Login(ctx, authsdk.LoginRequest{Email: "alice@example.com", Password: "Passw0rd1"})
	require.NoError(t, err)
	before, ok := client.RefreshCookie()
	require.True(t, ok)

	// The server prefers the cookie, so it must not be sent alongside the
	// explicit credential.
	_, err = client.RefreshWithToken(ctx, "explicit-token")
	require.NoError(t, err)
	require.Equal(t, "explicit-token", fake.lastBody.Load())

	after, ok := client.RefreshCookie()
	require.True(t, ok)
	require.NotEqual(t, before, after, "a successful rotation updates the jar")

	// Logging out another credential keeps the jar's session.
	require.NoError(t, client.Logout(ctx, "explicit-token"))
	kept, ok := client.RefreshCookie()
	require.True(t, ok)
	require.Equal(t, after, kept)
}

func TestSDKClient_Errors(t *testing.T) {
	t.Parallel()

	_, srv := newFakeServer(t, 15*time.Minute)
	client := authsdk.NewSDKClient(srv.URL)

	_, err := client.Login(context.Background(), authsdk.LoginRequest{Email: "alice@example.com", Password: "nope"})
	require.ErrorIs(t, err, authsdk.ErrUnauthorized)

	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	_, err = client.Me(context.Background(), "")
	require.ErrorIs(t, err, authsdk.ErrUnauthorized)
}

func TestSDKClient_Health(t *testing.T) {
	t.Parallel()

	_, srv := newFakeServer(t, 15*time.Minute)
	client := authsdk.NewSDKClient(srv.URL)

	live, err := client.GetLiveness(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)

	ready, err := client.GetReadiness(context.Background())
	require.Error(t, err)
	require.Equal(t, "degraded", ready.Status)
	require.Equal(t, "error: down", ready.Checks.Sessions)
}

func TestSession_RefreshesBeforeExpiry(t *testing.T) {
	t.Parallel()

	// Bearer tokens live for two minutes, inside the default five minute
	// threshold, so every call refreshes first.
	fake, srv := newFakeServer(t, 2*time.Minute)
	client := authsdk.NewSDKClient(srv.URL)
	ctx := context.Background()

	session, err := client.LoginSession(ctx, authsdk.LoginRequest{Email: "alice@example.com", Password: "Passw0rd1"})
	require.NoError(t, err)
	require.Equal(t, "acc-1", session.Account().ID)

	_, err = session.Me(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, fake.refreshes.Load())

	session.SetRefreshThreshold(time.Second)
	_, err = session.Me(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, fake.refreshes.Load(), "fresh token is reused")

	require.NoError(t, session.Logout(ctx))
	_, err = session.Me(ctx)
	require.Error(t, err, "refresh fails once the cookie is gone")
}
