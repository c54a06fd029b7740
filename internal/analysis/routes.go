package analysis

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matth2611/Holy-navigator/internal/middleware"
)

// SetupRoutes mounts the premium analysis endpoints. limit wraps only the
// LLM call; it may be nil.
func (h *Handler) SetupRoutes(res *middleware.Resolver, limit func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(res.RequirePremium)

	r.Group(func(r chi.Router) {
		if limit != nil {
			r.Use(limit)
		}
		r.Post("/news", h.Analyze)
	})
	r.Get("/history", h.History)
	r.Get("/headlines", h.Headlines)

	return r
}
