package journal

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matth2611/Holy-navigator/internal/middleware"
)

func (h *Handler) SetupRoutes(res *middleware.Resolver) http.Handler {
	r := chi.NewRouter()
	r.Use(res.RequirePremium)

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{journalID}", h.Get)
	r.Put("/{journalID}", h.Update)
	r.Delete("/{journalID}", h.Delete)

	return r
}
