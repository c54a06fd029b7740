package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matth2611/Holy-navigator/internal/middleware"
)

func (h *Handler) SetupRoutes(res *middleware.Resolver) http.Handler {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Post("/session", h.Session)

	r.Group(func(r chi.Router) {
		r.Use(res.RequireAuth)
		r.Get("/me", h.Me)
		r.Post("/password", h.UpdatePassword)
	})

	return r
}
