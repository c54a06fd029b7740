package media

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matth2611/Holy-navigator/internal/apperr"
	"github.com/matth2611/Holy-navigator/internal/utils"
)

type Handler struct {
	catalog *Catalog
	store   Store
}

func NewHandler(catalog *Catalog, store Store) *Handler {
	return &Handler{catalog: catalog, store: store}
}

func (h *Handler) Videos(w http.ResponseWriter, r *http.Request) {
	watched, ok := h.watched(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"videos": h.catalog.Videos(r.URL.Query().Get("category"), watched),
	})
}

func (h *Handler) Audio(w http.ResponseWriter, r *http.Request) {
	watched, ok := h.watched(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"audio": h.catalog.Audio(r.URL.Query().Get("category"), watched),
	})
}

func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	watched, ok := h.watched(w, r)
	if !ok {
		return
	}
	videos := h.catalog.Videos("", watched)
	audio := h.catalog.Audio("", watched)

	seen := 0
	for id := range watched {
		if h.catalog.Has(id) {
			seen++
		}
	}

	utils.WriteJSON(w, http.StatusOK, libraryResponse{
		Videos:     videos,
		Audio:      audio,
		Notice:     h.catalog.Notice,
		Categories: h.catalog.Categories,
		Stats: libraryStats{
			TotalVideos: len(videos),
			TotalAudio:  len(audio),
			Watched:     seen,
		},
	})
}

func (h *Handler) Watched(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	ids, err := h.store.Watched(r.Context(), userID)
	if err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	if ids == nil {
		ids = []string{}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"watched": ids})
}

func (h *Handler) Track(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())
	id := chi.URLParam(r, "mediaID")
	if !h.catalog.Has(id) {
		apperr.Write(w, r, apperr.NotFound("Media not found"))
		return
	}
	if err := h.store.Mark(r.Context(), userID, id); err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"message": "Marked as watched", "media_id": id, "watched": true})
}

func (h *Handler) Untrack(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())
	id := chi.URLParam(r, "mediaID")
	if !h.catalog.Has(id) {
		apperr.Write(w, r, apperr.NotFound("Media not found"))
		return
	}
	if err := h.store.Unmark(r.Context(), userID, id); err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"message": "Removed from watched list", "media_id": id, "watched": false})
}

func (h *Handler) watched(w http.ResponseWriter, r *http.Request) (map[string]bool, bool) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	ids, err := h.store.Watched(r.Context(), userID)
	if err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return nil, false
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, true
}
