package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/arvai/internal/httpserver/deps"
	"github.com/MrSnakeDoc/arvai/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/arvai/internal/httpserver/mw"
)

func init() { Register("keys", registerKeys) }

// Key management is an admin surface: local callers only.
func registerKeys(r chi.Router, d deps.Deps) {
	r.Route("/api/keys", func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))
		r.Use(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))

		r.With(mw.RateLimit(mw.RateLimitConfig{
			Burst:      d.KeyRateLimit,
			Window:     d.KeyRateWindow,
			MaxEntries: 1024,
			TrustProxy: d.TrustProxy,
		})).Post("/", handlers.CreateKey(d))
		r.Get("/", handlers.ListKeys(d))
		r.Delete("/{id}", handlers.DeleteKey(d))
	})
}
