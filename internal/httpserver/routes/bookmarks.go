package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/arvai/internal/httpserver/deps"
	"github.com/MrSnakeDoc/arvai/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/arvai/internal/httpserver/mw"
)

func init() { Register("bookmarks", registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	r.Route("/api/bookmarks", func(r chi.Router) {
		r.Use(mw.APIKey(d.APIKeys, d.Logger))

		r.Get("/check", handlers.CheckBookmark(d))
		r.Post("/", handlers.CreateBookmark(d))
		r.Get("/", handlers.ListBookmarks(d))
		r.Get("/{id}", handlers.GetBookmark(d))
		r.Patch("/{id}", handlers.UpdateBookmark(d))
		r.Delete("/{id}", handlers.DeleteBookmark(d))
	})
}
