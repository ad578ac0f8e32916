package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/arvai/internal/httpserver/deps"
	"github.com/MrSnakeDoc/arvai/internal/httpserver/respond"
)

type componentStatus struct {
	OK        bool   `json:"ok"`
	Bookmarks *int   `json:"bookmarks,omitempty"`
	KeysTotal *int   `json:"keys_total,omitempty"`
	KeysLive  *int   `json:"keys_active,omitempty"`
	Error     string `json:"error,omitempty"`
}

type infraResponse struct {
	App        string                     `json:"app"`
	Version    string                     `json:"version"`
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra is the admin overview: database reachability and row counts.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		components := map[string]componentStatus{
			"database": checkDatabase(ctx, d),
			"api_keys": checkKeys(ctx, d),
		}

		respond.JSON(w, http.StatusOK, infraResponse{
			App:        d.AppName,
			Version:    d.Version,
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

// determineMode is "critical" without a database, "locked" while no key can
// authenticate the extension, "ready" otherwise.
func determineMode(components map[string]componentStatus) string {
	if db := components["database"]; !db.OK {
		return "critical"
	}
	if keys := components["api_keys"]; !keys.OK {
		return "locked"
	}
	return "ready"
}

func checkDatabase(ctx context.Context, d deps.Deps) componentStatus {
	if err := d.DB.PingContext(ctx); err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}
	n, err := d.Bookmarks.Count(ctx)
	if err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}
	return componentStatus{OK: true, Bookmarks: &n}
}

func checkKeys(ctx context.Context, d deps.Deps) componentStatus {
	active, total, err := d.APIKeys.Count(ctx)
	if err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}
	return componentStatus{OK: active > 0, KeysTotal: &total, KeysLive: &active}
}
