package handlers

import (
	"net/http"
	"time"

	"cinehound/services/agents"
)

type registryStats interface {
	Stats() (agents.RegistryStats, error)
}

// HealthHandler answers the liveness probe with uptime and agent counts.
type HealthHandler struct {
	Registry registryStats
	started  time.Time
}

func NewHealthHandler(registry registryStats) *HealthHandler {
	return &HealthHandler{Registry: registry, started: time.Now()}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":         "ok",
		"uptime_seconds": int(time.Since(h.started).Seconds()),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	}
	if stats, err := h.Registry.Stats(); err == nil {
		resp["agents"] = stats
	}
	writeJSON(w, http.StatusOK, resp)
}
