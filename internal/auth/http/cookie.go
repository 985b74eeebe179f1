package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/tabauth/pkg/authsdk"
	"github.com/aussiebroadwan/tabauth/pkg/jwtx"
)

// CookieConfig controls the refresh_token cookie.
type CookieConfig struct {
	Path   string
	Secure bool
	MaxAge time.Duration
}

// DefaultCookieConfig scopes the cookie to the auth routes for the default
// rotation validity.
func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		Path:   "/api/auth",
		Secure: true,
		MaxAge: jwtx.DefaultRefreshTokenTTL,
	}
}

func (c CookieConfig) set(w http.ResponseWriter, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     authsdk.RefreshCookieName,
		Value:    value,
		Path:     c.Path,
		MaxAge:   int(c.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// clear tells the client to drop any rotation credential it holds.
func (c CookieConfig) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     authsdk.RefreshCookieName,
		Value:    "",
		Path:     c.Path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

// readRefreshCookie returns the rotation credential from the cookie, if any.
func readRefreshCookie(r *http.Request) string {
	ck, err := r.Cookie(authsdk.RefreshCookieName)
	if err != nil {
		return ""
	}
	return ck.Value
}
