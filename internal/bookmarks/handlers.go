package bookmarks

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matth2611/Holy-navigator/internal/apperr"
	"github.com/matth2611/Holy-navigator/internal/bible"
	"github.com/matth2611/Holy-navigator/internal/security"
	"github.com/matth2611/Holy-navigator/internal/utils"
)

const (
	listLimit     = 100
	maxNoteLength = 2000
)

type Handler struct {
	store     Store
	catalog   *bible.Catalog
	sanitizer *security.Sanitizer
}

func NewHandler(store Store, catalog *bible.Catalog, sanitizer *security.Sanitizer) *Handler {
	return &Handler{store: store, catalog: catalog, sanitizer: sanitizer}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	var req createRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, apperr.Validation("Invalid request body"))
		return
	}

	book, ok := h.catalog.Lookup(req.Book)
	if !ok {
		apperr.Write(w, r, apperr.Validation("Unknown book"))
		return
	}
	if req.Chapter < 1 || req.Chapter > book.Chapters {
		apperr.Write(w, r, apperr.Validation("Chapter is out of range for "+book.Name))
		return
	}
	if req.Verse != nil && *req.Verse < 1 {
		apperr.Write(w, r, apperr.Validation("Verse must be a positive number"))
		return
	}

	var note *string
	if req.Note != nil {
		clean := h.sanitizer.PlainText(*req.Note)
		if len(clean) > maxNoteLength {
			apperr.Write(w, r, apperr.Validation("Note is too long"))
			return
		}
		if clean != "" {
			note = &clean
		}
	}

	b := &Bookmark{
		BookmarkID: utils.NewID("bm"),
		UserID:     userID,
		Book:       book.Name,
		Chapter:    req.Chapter,
		Verse:      req.Verse,
		Note:       note,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.store.Create(r.Context(), b); err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}

	utils.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	list, err := h.store.List(r.Context(), userID, listLimit)
	if err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	if list == nil {
		list = []Bookmark{}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"bookmarks": list})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	err := h.store.Delete(r.Context(), userID, chi.URLParam(r, "bookmarkID"))
	if errors.Is(err, ErrNotFound) {
		apperr.Write(w, r, apperr.NotFound("Bookmark not found"))
		return
	}
	if err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Bookmark deleted"})
}
