package subscription

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matth2611/Holy-navigator/internal/middleware"
)

func (h *Handler) SetupRoutes(res *middleware.Resolver) http.Handler {
	r := chi.NewRouter()

	r.Get("/plan", h.Plan)

	r.Group(func(r chi.Router) {
		r.Use(res.RequireAuth)
		r.Post("/create-checkout", h.CreateCheckout)
		r.Get("/status/{sessionID}", h.Status)
	})

	return r
}

// WebhookRoutes is mounted at /webhook; Stripe authenticates by signature.
func (h *Handler) WebhookRoutes() http.Handler {
	r := chi.NewRouter()
	r.Post("/stripe", h.StripeWebhook)
	return r
}
