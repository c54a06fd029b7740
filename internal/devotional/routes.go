package devotional

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Get("/today", h.Today)
	r.Get("/all", h.All)
	r.Get("/{day}", h.Day)

	return r
}
