package media

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matth2611/Holy-navigator/internal/middleware"
)

func (h *Handler) SetupRoutes(res *middleware.Resolver) http.Handler {
	r := chi.NewRouter()
	r.Use(res.RequirePremium)

	r.Get("/videos", h.Videos)
	r.Get("/audio", h.Audio)
	r.Get("/all", h.All)
	r.Get("/watched", h.Watched)
	r.Post("/track/{mediaID}", h.Track)
	r.Delete("/track/{mediaID}", h.Untrack)

	return r
}
