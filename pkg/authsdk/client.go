package authsdk

import (
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// RefreshCookieName is the cookie carrying the rotation credential.
const RefreshCookieName = "refresh_token"

// SDKClient is a client for the authentication service. It keeps a cookie
// jar so the rotation cookie set by register and login is sent back on
// refresh and logout.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a client with its own cookie jar.
func NewSDKClient(baseURL string) *SDKClient {
	jar, _ := cookiejar.New(nil) // never fails without options
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
}

// RefreshCookie returns the rotation credential currently held in the jar.
func (c *SDKClient) RefreshCookie() (string, bool) {
	if c.HTTPClient.Jar == nil {
		return "", false
	}
	req, err := http.NewRequest(http.MethodPost, c.url("/api/auth/refresh"), nil)
	if err != nil {
		return "", false
	}
	for _, ck := range c.HTTPClient.Jar.Cookies(req.URL) {
		if ck.Name == RefreshCookieName && ck.Value != "" {
			return ck.Value, true
		}
	}
	return "", false
}
