package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/arvai/internal/httpserver/deps"
	"github.com/MrSnakeDoc/arvai/internal/httpserver/respond"
	"github.com/MrSnakeDoc/arvai/internal/logger"
)

type readyzResponse struct {
	Ready bool `json:"ready"`
}

// Readyz reports whether the database answers.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()

		if err := d.DB.PingContext(ctx); err != nil {
			d.Logger.Warn("readiness check failed", logger.Error(err))
			respond.JSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false})
			return
		}
		respond.JSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}
