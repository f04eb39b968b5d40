package handlers

import (
	"net/http"
	"time"
)

// BuildInfo describes the running binary for the health endpoint.
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"buildTime,omitempty"`
	Store     string `json:"store"`
}

type HealthHandler struct {
	info    BuildInfo
	started time.Time
}

func NewHealthHandler(info BuildInfo) *HealthHandler {
	return &HealthHandler{info: info, started: time.Now()}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"build":  h.info,
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}
