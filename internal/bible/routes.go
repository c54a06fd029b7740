package bible

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) SetupRoutes(dict DictionaryRoutes) http.Handler {
	r := chi.NewRouter()

	r.Get("/books", h.Books)
	r.Get("/chapter/{book}/{chapter}", h.Chapter)
	r.Get("/verse/{book}/{chapter}/{verse}", h.Verse)
	r.Get("/search/verses", h.SearchVerses)

	if dict != nil {
		r.Get("/dictionary", dict.List)
		r.Get("/dictionary/{word}", dict.Word)
		r.Get("/search", dict.Search)
	}

	return r
}
