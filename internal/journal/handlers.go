package journal

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matth2611/Holy-navigator/internal/apperr"
	"github.com/matth2611/Holy-navigator/internal/security"
	"github.com/matth2611/Holy-navigator/internal/utils"
)

const (
	listLimit        = 100
	maxTitleLength   = 200
	maxContentLength = 20000
)

type Handler struct {
	store     Store
	sanitizer *security.Sanitizer
}

func NewHandler(store Store, sanitizer *security.Sanitizer) *Handler {
	return &Handler{store: store, sanitizer: sanitizer}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	var req createRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, apperr.Validation("Invalid request body"))
		return
	}

	title := h.sanitizer.PlainText(req.Title)
	content := h.sanitizer.PlainText(req.Content)
	if err := validate(title, content); err != nil {
		apperr.Write(w, r, err)
		return
	}

	now := time.Now().UTC()
	e := &Entry{
		JournalID:    utils.NewID("jrn"),
		UserID:       userID,
		Title:        title,
		Content:      content,
		ScriptureRef: h.optional(req.ScriptureRef),
		Mood:         h.optional(req.Mood),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.store.Create(r.Context(), e); err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	entries, err := h.store.List(r.Context(), userID, listLimit)
	if err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"journals": entries})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	e, err := h.store.Get(r.Context(), userID, chi.URLParam(r, "journalID"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	var req updateRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, apperr.Validation("Invalid request body"))
		return
	}

	fields := map[string]any{}
	if req.Title != nil {
		title := h.sanitizer.PlainText(*req.Title)
		if title == "" || len(title) > maxTitleLength {
			apperr.Write(w, r, apperr.Validation("Title is required and must be at most 200 characters"))
			return
		}
		fields["title"] = title
	}
	if req.Content != nil {
		content := h.sanitizer.PlainText(*req.Content)
		if content == "" || len(content) > maxContentLength {
			apperr.Write(w, r, apperr.Validation("Content is required and must be at most 20000 characters"))
			return
		}
		fields["content"] = content
	}
	if req.ScriptureRef != nil {
		fields["scripture_ref"] = h.optional(req.ScriptureRef)
	}
	if req.Mood != nil {
		fields["mood"] = h.optional(req.Mood)
	}
	if len(fields) > 0 {
		fields["updated_at"] = time.Now().UTC()
	}

	e, err := h.store.Update(r.Context(), userID, chi.URLParam(r, "journalID"), fields)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	if err := h.store.Delete(r.Context(), userID, chi.URLParam(r, "journalID")); err != nil {
		writeStoreError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Journal entry deleted"})
}

// optional sanitizes s and maps blank values to nil.
func (h *Handler) optional(s *string) *string {
	if s == nil {
		return nil
	}
	clean := h.sanitizer.PlainText(*s)
	if clean == "" {
		return nil
	}
	return &clean
}

func validate(title, content string) error {
	switch {
	case title == "":
		return apperr.Validation("Title is required")
	case content == "":
		return apperr.Validation("Content is required")
	case len(title) > maxTitleLength:
		return apperr.Validation("Title must be at most 200 characters")
	case len(content) > maxContentLength:
		return apperr.Validation("Content must be at most 20000 characters")
	}
	return nil
}

func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotFound) {
		apperr.Write(w, r, apperr.NotFound("Journal entry not found"))
		return
	}
	apperr.Write(w, r, apperr.Internal(err))
}
