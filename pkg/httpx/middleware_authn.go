package httpx

import (
	"context"
	"net/http"
	"strings"
)

// CredentialFunc pulls the raw credential off a request, "" when absent.
type CredentialFunc func(*http.Request) string

// VerifyFunc resolves a credential to the caller.
type VerifyFunc func(ctx context.Context, credential string) (userID, email string, err error)

// RejectFunc answers a request whose credential was missing (err == nil)
// or failed verification.
type RejectFunc func(w http.ResponseWriter, r *http.Request, err error)

// AuthnMiddleware verifies the credential found by extract and injects the
// caller's identity into the request context for downstream handlers.
func AuthnMiddleware(mode string, extract CredentialFunc, verify VerifyFunc, reject RejectFunc) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			credential := extract(r)
			if credential == "" {
				reject(w, r, nil)
				return
			}

			userID, email, err := verify(ctx, credential)
			if err != nil {
				reject(w, r, err)
				return
			}
			if userID == "" {
				reject(w, r, nil)
				return
			}

			ctx = WithIdentity(ctx, mode, userID, email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken reads an RFC 6750 Authorization header.
func BearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
}

// FromCookie reads the credential from the named cookie.
func FromCookie(name string) CredentialFunc {
	return func(r *http.Request) string { return CookieValue(r, name) }
}
