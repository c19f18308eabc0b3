package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/authmodes/pkg/authsdk"
	"github.com/aussiebroadwan/authmodes/pkg/httpx"
	"github.com/aussiebroadwan/authmodes/pkg/slogx"
)

// Pinger is a dependency readiness can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe endpoint returning service health status and checks for critical dependencies
//	@Description	Includes uptime, version, and the status of the user database and the session backend
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	authsdk.HealthResponse	"status, uptime, version, checks - service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	database Pinger,
	sessions Pinger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		checks := &authsdk.HealthChecks{
			Database: "ok",
			Sessions: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		// Check database connectivity
		if err := database.Ping(ctx); err != nil {
			slogx.FromContext(ctx).Warn("readiness: database ping failed", "err", err)
			checks.Database = "error"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if err := sessions.Ping(ctx); err != nil {
			slogx.FromContext(ctx).Warn("readiness: session backend ping failed", "err", err)
			checks.Sessions = "error"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		response := authsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		}
		httpx.WriteJSON(w, statusCode, response)
	}
}
