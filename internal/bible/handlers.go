package bible

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matth2611/Holy-navigator/internal/apperr"
	"github.com/matth2611/Holy-navigator/internal/utils"
)

const searchLimit = 20

// DictionaryRoutes serves the dictionary under its legacy /bible paths.
type DictionaryRoutes interface {
	List(w http.ResponseWriter, r *http.Request)
	Word(w http.ResponseWriter, r *http.Request)
	Search(w http.ResponseWriter, r *http.Request)
}

type Handler struct {
	catalog *Catalog
	svc     *Service
	index   *SearchIndex
}

func NewHandler(catalog *Catalog, svc *Service, index *SearchIndex) *Handler {
	return &Handler{catalog: catalog, svc: svc, index: index}
}

func (h *Handler) Books(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]any{"books": h.catalog.Books()})
}

func (h *Handler) Chapter(w http.ResponseWriter, r *http.Request) {
	chapter, err := strconv.Atoi(chi.URLParam(r, "chapter"))
	if err != nil {
		apperr.Write(w, r, apperr.Validation("Chapter must be a number"))
		return
	}

	resp, err := h.svc.Chapter(r.Context(), chi.URLParam(r, "book"), chapter)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Verse(w http.ResponseWriter, r *http.Request) {
	chapter, err := strconv.Atoi(chi.URLParam(r, "chapter"))
	if err != nil {
		apperr.Write(w, r, apperr.Validation("Chapter must be a number"))
		return
	}
	verse, err := strconv.Atoi(chi.URLParam(r, "verse"))
	if err != nil {
		apperr.Write(w, r, apperr.Validation("Verse must be a number"))
		return
	}

	resp, err := h.svc.Verse(r.Context(), chi.URLParam(r, "book"), chapter, verse)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) SearchVerses(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		apperr.Write(w, r, apperr.Validation("Query parameter q is required"))
		return
	}

	results := h.index.Search(q, searchLimit)
	if results == nil {
		results = []Passage{}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"query":   q,
		"results": results,
	})
}
