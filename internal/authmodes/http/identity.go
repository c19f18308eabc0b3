package http

import (
	"math/rand/v2"
	"net/http"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/service"
	"github.com/aussiebroadwan/authmodes/pkg/authsdk"
	"github.com/aussiebroadwan/authmodes/pkg/httpx"
	"github.com/aussiebroadwan/authmodes/pkg/slogx"
)

// MeHandler returns the caller resolved by the mode's authn middleware.
type MeHandler struct {
	Accounts *service.Accounts
	Cookies  httpx.Cookies
}

// ServeHTTP godoc
//
//	@Summary		Current user
//	@Description	Returns the email of the authenticated user.
//	@Description	/user reads the token cookie, /hybrid-user a bearer access token, /session-user the sid cookie.
//	@Tags			Identity
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.Envelope	"data: {email}"
//	@Failure		401	{object}	authsdk.Envelope	"missing or invalid credential"
//	@Failure		404	{object}	authsdk.Envelope	"user not found"
//	@Router			/api/v1/user [get]
//	@Router			/api/v1/hybrid-user [get]
//	@Router			/api/v1/session-user [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.Accounts.Lookup(ctx, httpx.UserIDFromContext(ctx))
	if err != nil {
		writeServiceError(w, r, h.Cookies, "", err)
		return
	}

	// Stateless tokens keep the email they were signed with.
	if claimed := httpx.EmailFromContext(ctx); claimed != "" && claimed != user.Email {
		slogx.FromContext(ctx).Warn("credential email differs from account", "credential_email", claimed)
	}

	httpx.WriteData(w, http.StatusOK, authsdk.UserData{Email: user.Email})
}

// ResourcesHandler godoc
//
//	@Summary		Demo resources
//	@Description	Lists placeholder resources; only reachable with a valid credential for the route's mode.
//	@Tags			Identity
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.Envelope	"data: [{id, name}]"
//	@Failure		401	{object}	authsdk.Envelope	"missing or invalid credential"
//	@Router			/api/v1/resources [get]
//	@Router			/api/v1/hybrid-resources [get]
//	@Router			/api/v1/session-resources [get].
func ResourcesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resources := []authsdk.Resource{
			{ID: rand.IntN(1000), Name: "Resource 1"},
			{ID: rand.IntN(1000), Name: "Resource 2"},
			{ID: rand.IntN(1000), Name: "Resource 3"},
		}
		httpx.WriteData(w, http.StatusOK, resources)
	}
}
