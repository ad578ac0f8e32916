package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/arvai/internal/httpserver/deps"
	"github.com/MrSnakeDoc/arvai/internal/httpserver/respond"
)

type healthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Commit        string  `json:"commit,omitempty"`
	BuildDate     string  `json:"build_date,omitempty"`
	GoVersion     string  `json:"go_version,omitempty"`
}

// Health is the unauthenticated liveness probe the extension uses to check
// that the server is reachable.
func Health(d deps.Deps) http.HandlerFunc {
	start := d.StartTime
	return func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, http.StatusOK, healthResponse{
			Status:        "ok",
			Version:       d.Version,
			UptimeSeconds: time.Since(start).Seconds(),
			Commit:        d.Commit,
			BuildDate:     d.BuildDate,
			GoVersion:     d.GoVersion,
		})
	}
}
