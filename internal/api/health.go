package api

import (
	"net/http"
	"time"
)

// handleHealthz serves GET /healthz — a liveness probe. It always
// returns 200 once the process is serving requests; readiness of
// individual layers is not distinguished here, matching spec.md's
// "out of scope, consumed only through interfaces" boundary for the
// HTTP surface.
func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"uptime_sec": int64(time.Since(a.startedAt).Seconds()),
	})
}
