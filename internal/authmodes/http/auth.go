package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/service"
	"github.com/aussiebroadwan/authmodes/pkg/authsdk"
	"github.com/aussiebroadwan/authmodes/pkg/httpx"
	"github.com/aussiebroadwan/authmodes/pkg/slogx"
)

// AuthHandler serves register, login, logout and refresh for every mode.
type AuthHandler struct {
	Dispatcher *service.Dispatcher
	Cookies    httpx.Cookies
}

// HandleRegister godoc
//
//	@Summary		Register
//	@Description	Creates an account and signs it in under the requested mode.
//	@Description	The mode's credential is set as an HttpOnly cookie; hybrid also returns an access token.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.Credentials	true	"email, password, mode"
//	@Success		200		{object}	authsdk.Envelope	"data: {email, accessToken?}"
//	@Failure		400		{object}	authsdk.Envelope	"validation failure or registration failed"
//	@Failure		500		{object}	authsdk.Envelope	"internal server error"
//	@Router			/api/v1/register [post].
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, service.Strategy.Register)
}

// HandleLogin godoc
//
//	@Summary		Login
//	@Description	Signs in under the requested mode. Unknown emails and wrong passwords get the same answer.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.Credentials	true	"email, password, mode"
//	@Success		200		{object}	authsdk.Envelope	"data: {email, accessToken?}"
//	@Failure		400		{object}	authsdk.Envelope	"validation failure or invalid credentials"
//	@Failure		500		{object}	authsdk.Envelope	"internal server error"
//	@Router			/api/v1/login [post].
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	h.authenticate(w, r, service.Strategy.Login)
}

type authenticateFunc func(s service.Strategy, ctx context.Context, email, password string) (*service.Grant, error)

func (h *AuthHandler) authenticate(w http.ResponseWriter, r *http.Request, do authenticateFunc) {
	ctx := r.Context()

	var creds authsdk.Credentials
	if err := httpx.DecodeJSON(w, r, &creds); err != nil {
		httpx.WriteReason(w, http.StatusBadRequest, reasonInvalidBody)
		return
	}
	if errs := creds.Validate(); errs != nil {
		writeServiceError(w, r, h.Cookies, "", &service.ValidationError{Fields: errs})
		return
	}

	strategy, err := h.Dispatcher.Select(creds.Mode)
	if err != nil {
		writeServiceError(w, r, h.Cookies, "", err)
		return
	}

	grant, err := do(strategy, ctx, creds.Email, creds.Password)
	if err != nil {
		writeServiceError(w, r, h.Cookies, "", err)
		return
	}

	slogx.FromContext(ctx).Info("user authenticated",
		"mode", creds.Mode,
		"user_id", grant.UserID,
	)

	h.Cookies.Set(w, authsdk.CookieForMode(creds.Mode), grant.Credential, grant.CredentialTTL)
	httpx.WriteData(w, http.StatusOK, authsdk.AuthData{
		Email:       grant.Email,
		AccessToken: grant.AccessToken,
	})
}

// HandleLogout godoc
//
//	@Summary		Logout
//	@Description	Ends the login held in the mode's cookie and clears the cookie.
//	@Description	Stateless logout only clears the cookie. Hybrid logout with an unverifiable refresh token still succeeds.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.LogoutRequest	true	"mode"
//	@Success		200		{object}	authsdk.Envelope		"data: Logged out"
//	@Failure		400		{object}	authsdk.Envelope		"invalid mode"
//	@Failure		401		{object}	authsdk.Envelope		"session is invalid"
//	@Failure		500		{object}	authsdk.Envelope		"internal server error"
//	@Router			/api/v1/logout [post].
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req authsdk.LogoutRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.WriteReason(w, http.StatusBadRequest, reasonInvalidBody)
		return
	}
	if errs := req.Validate(); errs != nil {
		writeServiceError(w, r, h.Cookies, "", &service.ValidationError{Fields: errs})
		return
	}

	strategy, err := h.Dispatcher.Select(req.Mode)
	if err != nil {
		writeServiceError(w, r, h.Cookies, "", err)
		return
	}

	cookie := authsdk.CookieForMode(req.Mode)
	if err := strategy.Logout(ctx, httpx.CookieValue(r, cookie)); err != nil {
		writeServiceError(w, r, h.Cookies, cookie, err)
		return
	}

	h.Cookies.Clear(w, cookie)
	httpx.WriteData(w, http.StatusOK, "Logged out")
}

// HandleRefresh godoc
//
//	@Summary		Refresh hybrid tokens
//	@Description	Redeems the refreshToken cookie for a new access token and a new refresh cookie.
//	@Description	Each refresh token works once; replaying it fails with 401 and clears the cookie.
//	@Tags			Authentication
//	@Produce		json
//	@Success		200	{object}	authsdk.Envelope	"data: {accessToken}"
//	@Failure		401	{object}	authsdk.Envelope	"token is invalid"
//	@Failure		500	{object}	authsdk.Envelope	"internal server error"
//	@Router			/api/v1/refresh [post].
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	strategy, err := h.Dispatcher.Strategy(service.ModeHybrid)
	if err != nil {
		writeServiceError(w, r, h.Cookies, "", err)
		return
	}

	grant, err := strategy.Refresh(ctx, httpx.CookieValue(r, authsdk.CookieRefreshToken))
	if err != nil {
		writeServiceError(w, r, h.Cookies, authsdk.CookieRefreshToken, err)
		return
	}

	h.Cookies.Set(w, authsdk.CookieRefreshToken, grant.Credential, grant.CredentialTTL)
	httpx.WriteData(w, http.StatusOK, authsdk.AccessData{AccessToken: grant.AccessToken})
}
