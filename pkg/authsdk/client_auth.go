package authsdk

import (
	"context"
	"net/http"
)

// Register creates an account and signs it in.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/register", req, "")
	if err != nil {
		return nil, err
	}

	out, err := decodeEnvelope[AuthResponse](resp, http.StatusCreated)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Login signs in with email and password.
func (c *SDKClient) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", req, "")
	if err != nil {
		return nil, err
	}

	out, err := decodeEnvelope[AuthResponse](resp, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh rotates the credential held in the cookie jar.
func (c *SDKClient) Refresh(ctx context.Context) (*AuthResponse, error) {
	return c.RefreshWithToken(ctx, "")
}

// RefreshWithToken rotates an explicit credential, or the jar's cookie when
// refreshToken is empty. The rotated cookie replaces whatever the jar held.
func (c *SDKClient) RefreshWithToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	var (
		resp *http.Response
		err  error
	)
	if refreshToken != "" {
		resp, err = c.doWithoutJar(ctx, http.MethodPost, "/api/auth/refresh", RefreshRequest{RefreshToken: refreshToken}, true)
	} else {
		resp, err = c.doRequest(ctx, http.MethodPost, "/api/auth/refresh", nil, "")
	}
	if err != nil {
		return nil, err
	}

	out, err := decodeEnvelope[AuthResponse](resp, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes the session behind the cookie, or behind refreshToken when
// set. An explicit credential leaves the jar's own session alone. The server
// reports success whether or not anything was revoked.
func (c *SDKClient) Logout(ctx context.Context, refreshToken string) error {
	var (
		resp *http.Response
		err  error
	)
	if refreshToken != "" {
		resp, err = c.doWithoutJar(ctx, http.MethodPost, "/api/auth/logout", RefreshRequest{RefreshToken: refreshToken}, false)
	} else {
		resp, err = c.doRequest(ctx, http.MethodPost, "/api/auth/logout", nil, "")
	}
	if err != nil {
		return err
	}

	_, err = decodeEnvelope[LogoutResponse](resp, http.StatusOK)
	return err
}

// Me returns the account behind accessToken.
func (c *SDKClient) Me(ctx context.Context, accessToken string) (*Account, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/auth/me", nil, accessToken)
	if err != nil {
		return nil, err
	}

	out, err := decodeEnvelope[Account](resp, http.StatusOK)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
