package handlers

import (
	"context"
	"net/http"
	"time"
)

const healthTimeout = 2 * time.Second

// Health reports 200 only when the device store answers a ping. A result that
// disagrees with the background monitor triggers an early monitor ping.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	err := a.store.Ping(ctx)
	if a.monitor != nil && a.monitor.Up() != (err == nil) {
		a.monitor.TriggerRefresh()
	}
	if err != nil {
		a.logger.Warn("health check failed", "err", err)
		a.writeError(w, http.StatusServiceUnavailable, codeServiceUnavailable, "Database connectivity error.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
