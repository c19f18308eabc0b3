package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/authmodes/internal/authmodes/service"
	"github.com/aussiebroadwan/authmodes/pkg/httpx"
	"github.com/aussiebroadwan/authmodes/pkg/slogx"
)

// Client-facing reasons. Internal detail never goes past this file.
const (
	reasonInvalidBody        = "Invalid request body"
	reasonInvalidCredentials = "Invalid credentials"
	reasonRegistrationFailed = "Registration failed"
	reasonUnsupported        = "Operation not supported for this mode"
	reasonTokenInvalid       = "Token is invalid"
	reasonSessionInvalid     = "Session is invalid"
	reasonUnauthorized       = "Unauthorized"
	reasonUserNotFound       = "User not found"
	reasonInternal           = "Internal server error"
)

// writeServiceError maps a service failure kind to a response. When
// clearCookie is set, credential failures also drop that cookie so the
// client stops presenting it.
func writeServiceError(w http.ResponseWriter, r *http.Request, cookies httpx.Cookies, clearCookie string, err error) {
	log := slogx.FromContext(r.Context())

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.WriteReason(w, http.StatusBadRequest, verr.Message())
	case errors.Is(err, service.ErrValidation):
		httpx.WriteReason(w, http.StatusBadRequest, reasonInvalidBody)
	case errors.Is(err, service.ErrInvalidCredentials):
		httpx.WriteReason(w, http.StatusBadRequest, reasonInvalidCredentials)
	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteReason(w, http.StatusBadRequest, reasonRegistrationFailed)
	case errors.Is(err, service.ErrUnsupported):
		httpx.WriteReason(w, http.StatusBadRequest, reasonUnsupported)
	case errors.Is(err, service.ErrTokenInvalid):
		log.Info("rejected token", "err", err)
		dropCookie(w, cookies, clearCookie)
		httpx.WriteReason(w, http.StatusUnauthorized, reasonTokenInvalid)
	case errors.Is(err, service.ErrSessionInvalid):
		dropCookie(w, cookies, clearCookie)
		httpx.WriteReason(w, http.StatusUnauthorized, reasonSessionInvalid)
	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteReason(w, http.StatusNotFound, reasonUserNotFound)
	default:
		log.Error("request failed", "err", err)
		httpx.WriteReason(w, http.StatusInternalServerError, reasonInternal)
	}
}

func dropCookie(w http.ResponseWriter, cookies httpx.Cookies, name string) {
	if name != "" {
		cookies.Clear(w, name)
	}
}
