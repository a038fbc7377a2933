package handlers

import (
	"net/http"

	"github.com/dingwen07/httpmq/internal/models"
)

// Health reports liveness for load balancers and uptime checks.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{Status: "ok"})
}
