package forum

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matth2611/Holy-navigator/internal/middleware"
)

func (h *Handler) SetupRoutes(res *middleware.Resolver) http.Handler {
	r := chi.NewRouter()
	r.Use(res.RequirePremium)

	r.Route("/posts", func(r chi.Router) {
		r.Post("/", h.CreatePost)
		r.Get("/", h.ListPosts)
		r.Get("/{postID}", h.GetPost)
		r.Delete("/{postID}", h.DeletePost)
		r.Post("/{postID}/comments", h.CreateComment)
		r.Post("/{postID}/upvote", h.UpvotePost)
	})

	r.Delete("/comments/{commentID}", h.DeleteComment)
	r.Post("/comments/{commentID}/upvote", h.UpvoteComment)

	return r
}
