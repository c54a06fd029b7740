package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matth2611/Holy-navigator/internal/middleware"
)

func (h *Handler) SetupRoutes(res *middleware.Resolver) http.Handler {
	r := chi.NewRouter()
	r.Use(res.RequireAuth)

	r.Get("/", h.Get)
	r.Put("/", h.Update)
	r.Get("/reading-progress", h.ReadingProgress)
	r.Post("/picture-upload", h.PictureUpload)

	return r
}

// NotificationRoutes is mounted at /notifications.
func (h *Handler) NotificationRoutes(res *middleware.Resolver) http.Handler {
	r := chi.NewRouter()
	r.Use(res.RequireAuth)

	r.Get("/preferences", h.Preferences)
	r.Put("/preferences", h.UpdatePreferences)

	return r
}
