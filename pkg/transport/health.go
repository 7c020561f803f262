package transport

import (
	"log/slog"
	"net/http"
)

// handleHealthz handles GET /healthz. Liveness only; it never touches a
// dependency.
func (rt *Router) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz handles GET /readyz. Readiness requires both the user
// store and the object store to answer their health checks.
func (rt *Router) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := rt.users.HealthCheck(r.Context()); err != nil {
		slog.Warn("readiness check failed", "check", "user_store", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"check":  "user_store",
		})
		return
	}

	if err := rt.objects.HealthCheck(r.Context()); err != nil {
		slog.Warn("readiness check failed", "check", "object_store", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"check":  "object_store",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
