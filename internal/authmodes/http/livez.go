package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/authmodes/pkg/authsdk"
	"github.com/aussiebroadwan/authmodes/pkg/httpx"
)

// handleLivez godoc
//
//	@Summary		Liveness
//	@Description	Answers 200 while the process serves HTTP. No dependency is touched; see /readyz for those.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	authsdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func (r *Router) handleLivez(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, authsdk.HealthResponse{
		Status:  "ok",
		Uptime:  time.Since(r.startTime).Truncate(time.Second).String(),
		Version: r.buildVersion,
	})
}
