package bookmarks

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matth2611/Holy-navigator/internal/middleware"
)

func (h *Handler) SetupRoutes(res *middleware.Resolver) http.Handler {
	r := chi.NewRouter()
	r.Use(res.RequireAuth)

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Delete("/{bookmarkID}", h.Delete)

	return r
}
