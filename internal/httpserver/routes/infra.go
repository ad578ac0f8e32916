package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/arvai/internal/httpserver/deps"
	"github.com/MrSnakeDoc/arvai/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/arvai/internal/httpserver/mw"
)

func init() { Register("infra", registerInfra) }

func registerInfra(r chi.Router, d deps.Deps) {
	r.With(
		mw.EnforceHost(d.AllowedHosts, d.Logger),
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
	).Get("/infra", handlers.Infra(d))
}
