package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/service"
	"github.com/aussiebroadwan/authmodes/pkg/authsdk"
	"github.com/aussiebroadwan/authmodes/pkg/httpx"
	"github.com/aussiebroadwan/authmodes/pkg/slogx"
)

// requireMode guards a route with the credential of mode m: the token or
// sid cookie, or a bearer access token for hybrid.
func (r *Router) requireMode(m service.Mode) httpx.Middleware {
	extract := httpx.FromCookie(authsdk.CookieForMode(m.String()))
	clearOnFail := authsdk.CookieForMode(m.String())
	if m == service.ModeHybrid {
		// the refresh cookie is still good when an access token is not
		extract = httpx.BearerToken
		clearOnFail = ""
	}

	verify := func(ctx context.Context, credential string) (string, string, error) {
		strategy, err := r.Dispatcher.Strategy(m)
		if err != nil {
			return "", "", err
		}
		id, err := strategy.Verify(ctx, credential)
		return id.UserID, id.Email, err
	}

	reject := func(w http.ResponseWriter, req *http.Request, err error) {
		if err == nil {
			httpx.WriteReason(w, http.StatusUnauthorized, reasonUnauthorized)
			return
		}
		writeServiceError(w, req, r.cookies, clearOnFail, err)
	}

	return httpx.AuthnMiddleware(m.String(), extract, verify, reject)
}

// logCaller tags the request logger with the caller the authn middleware
// verified. It must run after it.
func logCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		ctx = slogx.With(ctx,
			"auth_mode", httpx.ModeFromContext(ctx),
			"user_id", httpx.UserIDFromContext(ctx),
		)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}
