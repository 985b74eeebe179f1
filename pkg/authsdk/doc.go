/*
Package authsdk is the client SDK for the authentication service, and holds the
response envelope and error types the service itself writes.

# SDKClient and Session

SDKClient talks to the public endpoints. Its HTTP client carries a cookie jar,
so the refresh_token cookie set by register and login is replayed on refresh
and logout without the caller ever handling the rotation credential:

	client := authsdk.NewSDKClient("https://auth.example.com")

	res, err := client.Login(ctx, authsdk.LoginRequest{
		Email:    "alice@example.com",
		Password: "Passw0rd1",
	})

	account, err := client.Me(ctx, res.AccessToken)

	res, err = client.Refresh(ctx)
	err = client.Logout(ctx, "")

Session wraps a login and keeps the bearer token fresh. Before each call it
decodes the token's expiry and refreshes once the token is within the
threshold (jwtx.DefaultExpiringSoonThreshold unless changed):

	session, err := client.LoginSession(ctx, req)
	account, err := session.Me(ctx)
	err = session.Logout(ctx)

# Errors

Every failed call returns an *APIError decoded from the envelope. Predefined
errors compare by code:

	if errors.Is(err, authsdk.ErrUnauthorized) {
		// log in again
	}

	var apiErr *authsdk.APIError
	if errors.As(err, &apiErr) {
		for _, fe := range apiErr.ValidationErrors {
			fmt.Println(fe.Field, fe.Message)
		}
	}

# Envelope

All API responses share one shape:

	{"success":true,"code":200,"message":"...","data":{...},"timestamp":"...","path":"/api/auth/login"}
	{"success":false,"code":401,"message":"...","error":{"code":"UNAUTHORIZED"},"timestamp":"...","path":"..."}

The server side writes these with APIError.WriteError and WriteData.
*/
package authsdk
