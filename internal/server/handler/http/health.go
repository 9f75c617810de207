package http

import (
	"net/http"
	"time"
)

// HealthStatus reports the state of the storage backend.
type HealthStatus interface {
	Healthy() bool
}

// HealthHandler answers liveness probes.
type HealthHandler struct {
	Database string
	Status   HealthStatus
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Database  string    `json:"database"`
	Reachable bool      `json:"reachable"`
}

// Health handles GET /api/health. The server answers OK as long as it runs;
// reachable tells whether the last storage probe succeeded.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	reachable := true
	if h.Status != nil {
		reachable = h.Status.Healthy()
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "OK",
		Timestamp: time.Now().UTC(),
		Message:   "server running",
		Database:  h.Database,
		Reachable: reachable,
	})
}
