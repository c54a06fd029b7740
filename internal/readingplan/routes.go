package readingplan

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matth2611/Holy-navigator/internal/middleware"
)

func (h *Handler) SetupRoutes(res *middleware.Resolver) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Get("/today", h.Today)
	r.Get("/day/{day}", h.Day)

	r.Group(func(r chi.Router) {
		r.Use(res.RequireAuth)
		r.Get("/progress", h.Progress)
		r.Post("/complete/{day}", h.Complete)
		r.Delete("/complete/{day}", h.Uncomplete)
	})

	return r
}
