package dictionary

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matth2611/Holy-navigator/internal/apperr"
	"github.com/matth2611/Holy-navigator/internal/utils"
)

type Handler struct {
	dict *Dictionary
}

func NewHandler(dict *Dictionary) *Handler {
	return &Handler{dict: dict}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]any{"words": h.dict.All()})
}

func (h *Handler) Word(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.dict.Lookup(chi.URLParam(r, "word"))
	if !ok {
		apperr.Write(w, r, apperr.NotFound("Word not found in dictionary"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"results": h.dict.Search(r.URL.Query().Get("q")),
	})
}
