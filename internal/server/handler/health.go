package handler

import (
	"net/http"
	"time"
)

// HealthHandler answers liveness checks. It reports only that the process is
// up; brokerage connectivity is surfaced on /api/status instead, so
// monitoring never burns Alpaca rate limit.
type HealthHandler struct {
	startedAt time.Time
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{startedAt: time.Now().UTC()}
}

// Check responds to liveness checks.
// GET /api/health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
	})
}
