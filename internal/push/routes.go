package push

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matth2611/Holy-navigator/internal/middleware"
)

func (h *Handler) SetupRoutes(res *middleware.Resolver) http.Handler {
	r := chi.NewRouter()

	r.Get("/vapid-key", h.VAPIDKey)

	r.Group(func(r chi.Router) {
		r.Use(res.RequireAuth)
		r.Post("/subscribe", h.Subscribe)
		r.Delete("/unsubscribe", h.Unsubscribe)
		r.Get("/status", h.Status)
	})

	return r
}
