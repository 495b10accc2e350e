package handlers

import (
	"net/http"
	"runtime"
	"time"
)

type HealthHandler struct {
	startTime time.Time
	version   string
	registry  *Registry
}

type HealthStatus struct {
	Status     string    `json:"status"`
	Timestamp  time.Time `json:"timestamp"`
	Version    string    `json:"version"`
	Uptime     string    `json:"uptime"`
	Samplers   int       `json:"samplers"`
	Goroutines int       `json:"goroutines"`
}

func NewHealthHandler(version string, registry *Registry) *HealthHandler {
	return &HealthHandler{
		startTime: time.Now(),
		version:   version,
		registry:  registry,
	}
}

func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:     "healthy",
		Timestamp:  time.Now().UTC(),
		Version:    h.version,
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		Goroutines: runtime.NumGoroutine(),
	}
	if h.registry != nil {
		status.Samplers = h.registry.Len()
	}

	writeJSON(w, http.StatusOK, status)
}
