package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/aussiebroadwan/tabauth/internal/auth/domain"
	"github.com/aussiebroadwan/tabauth/internal/auth/service"
	"github.com/aussiebroadwan/tabauth/pkg/authsdk"
	"github.com/aussiebroadwan/tabauth/pkg/httpx"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

// AuthHandler serves the /api/auth endpoints.
type AuthHandler struct {
	AuthService *service.AuthService
	Cookie      CookieConfig
	Dev         bool
	TrustProxy  bool
}

// HandleRegister godoc
//
//	@Summary		Register an account
//	@Description	Creates an active account with the regular role and signs it in.
//	@Description	The rotation credential is set in the refresh_token cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest	true	"email, password, optional name and botToken"
//	@Success		201		{object}	authsdk.Envelope[authsdk.AuthResponse]
//	@Failure		400		{object}	authsdk.Envelope[any]	"VALIDATION_ERROR, BAD_REQUEST or BOT_CHECK_FAILED"
//	@Failure		409		{object}	authsdk.Envelope[any]	"CONFLICT"
//	@Failure		500		{object}	authsdk.Envelope[any]	"INTERNAL_ERROR"
//	@Header			201		{string}	Set-Cookie				"refresh_token"
//	@Router			/api/auth/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		authsdk.ErrBadRequest.WriteError(w, r)
		return
	}

	res, err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		BotToken: req.BotToken,
		Meta:     h.meta(r),
	})
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}

	h.Cookie.set(w, res.RefreshToken)
	account := toAPIAccount(res.Account)
	authsdk.WriteData(w, r, http.StatusCreated, "account registered", authsdk.AuthResponse{
		Account:     &account,
		AccessToken: res.AccessToken,
		ExpiresIn:   int(res.ExpiresIn.Seconds()),
	})
}

// HandleLogin godoc
//
//	@Summary		Log in
//	@Description	Authenticates by email and password. Unknown emails and wrong passwords are indistinguishable.
//	@Description	Suspended and inactive accounts are refused with 403 once the password is proven.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest	true	"email, password, optional botToken"
//	@Success		200		{object}	authsdk.Envelope[authsdk.AuthResponse]
//	@Failure		400		{object}	authsdk.Envelope[any]	"VALIDATION_ERROR, BAD_REQUEST or BOT_CHECK_FAILED"
//	@Failure		401		{object}	authsdk.Envelope[any]	"UNAUTHORIZED"
//	@Failure		403		{object}	authsdk.Envelope[any]	"FORBIDDEN"
//	@Header			200		{string}	Set-Cookie				"refresh_token"
//	@Router			/api/auth/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		h.Cookie.clear(w)
		authsdk.ErrBadRequest.WriteError(w, r)
		return
	}

	res, err := h.AuthService.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		BotToken: req.BotToken,
		Meta:     h.meta(r),
	})
	if err != nil {
		h.Cookie.clear(w)
		writeServiceError(w, r, err, h.Dev)
		return
	}

	h.Cookie.set(w, res.RefreshToken)
	account := toAPIAccount(res.Account)
	authsdk.WriteData(w, r, http.StatusOK, "logged in", authsdk.AuthResponse{
		Account:     &account,
		AccessToken: res.AccessToken,
		ExpiresIn:   int(res.ExpiresIn.Seconds()),
	})
}

// HandleRefresh godoc
//
//	@Summary		Rotate the session
//	@Description	Exchanges the rotation credential for a new bearer token and a new rotation credential.
//	@Description	The credential is read from the refresh_token cookie, or from the refreshToken body field when no cookie is sent.
//	@Description	Each credential works once. Any failure clears the cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest	false	"refreshToken for clients without cookies"
//	@Success		200		{object}	authsdk.Envelope[authsdk.AuthResponse]
//	@Failure		401		{object}	authsdk.Envelope[any]	"UNAUTHORIZED"
//	@Failure		403		{object}	authsdk.Envelope[any]	"FORBIDDEN"
//	@Header			200		{string}	Set-Cookie				"refresh_token"
//	@Router			/api/auth/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	credential, err := credentialFrom(r)
	if err != nil {
		h.Cookie.clear(w)
		authsdk.ErrBadRequest.WriteError(w, r)
		return
	}

	tokens, err := h.AuthService.Refresh(r.Context(), credential, h.meta(r))
	if err != nil {
		h.Cookie.clear(w)
		writeServiceError(w, r, err, h.Dev)
		return
	}

	h.Cookie.set(w, tokens.RefreshToken)
	authsdk.WriteData(w, r, http.StatusOK, "session refreshed", authsdk.AuthResponse{
		AccessToken: tokens.AccessToken,
		ExpiresIn:   int(tokens.ExpiresIn.Seconds()),
	})
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Revokes the session behind the rotation credential from the cookie or the refreshToken body field.
//	@Description	Always succeeds and always clears the cookie.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RefreshRequest	false	"refreshToken for clients without cookies"
//	@Success		200		{object}	authsdk.Envelope[authsdk.LogoutResponse]
//	@Router			/api/auth/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	// A malformed body is ignored: logout never fails.
	credential, _ := credentialFrom(r)

	h.AuthService.Logout(r.Context(), credential)

	h.Cookie.clear(w)
	authsdk.WriteData(w, r, http.StatusOK, "logged out", authsdk.LogoutResponse{})
}

// HandleMe godoc
//
//	@Summary		Current account
//	@Description	Returns the account behind the bearer token. The stored status is checked, so a suspended account gets 403 even with a valid token.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.Envelope[authsdk.Account]
//	@Failure		401	{object}	authsdk.Envelope[any]	"UNAUTHORIZED"
//	@Failure		403	{object}	authsdk.Envelope[any]	"FORBIDDEN"
//	@Router			/api/auth/me [get].
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		authsdk.ErrUnauthorized.WriteError(w, r)
		return
	}

	account, err := h.AuthService.ResolveCurrentIdentity(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, h.Dev)
		return
	}

	authsdk.WriteData(w, r, http.StatusOK, "ok", toAPIAccount(account))
}

func (h *AuthHandler) meta(r *http.Request) domain.SessionMetadata {
	return domain.SessionMetadata{
		RemoteAddr: httpx.ClientIP(r, h.TrustProxy),
		UserAgent:  r.UserAgent(),
	}
}

// decodeBody decodes a JSON body into v. An empty body leaves v untouched.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// credentialFrom prefers the cookie and falls back to the refreshToken body
// field.
func credentialFrom(r *http.Request) (string, error) {
	if c := readRefreshCookie(r); c != "" {
		return c, nil
	}
	var body authsdk.RefreshRequest
	if err := decodeBody(r, &body); err != nil {
		return "", err
	}
	return body.RefreshToken, nil
}

func toAPIAccount(a domain.Account) authsdk.Account {
	return authsdk.Account{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Role:      string(a.Role),
		Status:    string(a.Status),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
