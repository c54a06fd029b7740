package forum

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matth2611/Holy-navigator/internal/apperr"
	"github.com/matth2611/Holy-navigator/internal/security"
	"github.com/matth2611/Holy-navigator/internal/utils"
)

const (
	defaultPageSize  = 20
	maxPageSize      = 100
	commentLimit     = 100
	maxTags          = 5
	maxTagLength     = 30
	maxTitleLength   = 200
	maxContentLength = 10000
)

// UpvoteRecorder observes toggles for metrics.
type UpvoteRecorder interface {
	RecordUpvoteToggle(target string, upvoted bool)
}

type Handler struct {
	store     Store
	sanitizer *security.Sanitizer
	markdown  *security.MarkdownRenderer
	metrics   UpvoteRecorder
}

func NewHandler(store Store, sanitizer *security.Sanitizer, markdown *security.MarkdownRenderer, metrics UpvoteRecorder) *Handler {
	return &Handler{
		store:     store,
		sanitizer: sanitizer,
		markdown:  markdown,
		metrics:   metrics,
	}
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.PrincipalFromContext(r.Context())

	var req createPostRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, apperr.Validation("Invalid request body"))
		return
	}

	title := h.sanitizer.PlainText(req.Title)
	if title == "" || len(title) > maxTitleLength {
		apperr.Write(w, r, apperr.Validation("Title is required and must be at most 200 characters"))
		return
	}
	content, html, err := h.renderContent(req.Content)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	tags, err := h.cleanTags(req.Tags)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	var ref *string
	if req.ScriptureRef != nil {
		if clean := h.sanitizer.PlainText(*req.ScriptureRef); clean != "" {
			ref = &clean
		}
	}

	post := &Post{
		PostID:       utils.NewID("post"),
		UserID:       p.UserID,
		UserName:     p.Name,
		Title:        title,
		Content:      content,
		ContentHTML:  html,
		ScriptureRef: ref,
		Tags:         tags,
		UpvotedBy:    []string{},
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.store.CreatePost(r.Context(), post); err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, post)
}

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	skip := max(utils.QueryInt(r, "skip", 0), 0)
	limit := utils.QueryInt(r, "limit", defaultPageSize)
	if limit < 1 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPageSize)
	tag := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("tag")))

	posts, err := h.store.ListPosts(r.Context(), skip, limit, tag)
	if err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	if posts == nil {
		posts = []Post{}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	post, err := h.store.GetPost(r.Context(), postID)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	comments, err := h.store.ListComments(r.Context(), postID, commentLimit)
	if err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	if comments == nil {
		comments = []Comment{}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"post": post, "comments": comments})
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	if err := h.store.DeletePost(r.Context(), userID, chi.URLParam(r, "postID")); err != nil {
		writeStoreError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Post deleted"})
}

func (h *Handler) CreateComment(w http.ResponseWriter, r *http.Request) {
	p, _ := utils.PrincipalFromContext(r.Context())

	var req createCommentRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, apperr.Validation("Invalid request body"))
		return
	}
	content, html, err := h.renderContent(req.Content)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	c := &Comment{
		CommentID:   utils.NewID("cmt"),
		PostID:      chi.URLParam(r, "postID"),
		UserID:      p.UserID,
		UserName:    p.Name,
		Content:     content,
		ContentHTML: html,
		UpvotedBy:   []string{},
		CreatedAt:   time.Now().UTC(),
	}
	if err := h.store.CreateComment(r.Context(), c); err != nil {
		writeStoreError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	if err := h.store.DeleteComment(r.Context(), userID, chi.URLParam(r, "commentID")); err != nil {
		writeStoreError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted"})
}

func (h *Handler) UpvotePost(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	res, err := h.store.TogglePostUpvote(r.Context(), chi.URLParam(r, "postID"), userID)
	h.writeToggle(w, r, "post", res, err)
}

func (h *Handler) UpvoteComment(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	res, err := h.store.ToggleCommentUpvote(r.Context(), chi.URLParam(r, "commentID"), userID)
	h.writeToggle(w, r, "comment", res, err)
}

func (h *Handler) writeToggle(w http.ResponseWriter, r *http.Request, target string, res ToggleResult, err error) {
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordUpvoteToggle(target, res.Upvoted)
	}

	message := "Upvote removed"
	if res.Upvoted {
		message = "Upvoted"
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"message": message,
		"upvoted": res.Upvoted,
		"upvotes": res.Upvotes,
	})
}

// renderContent renders the markdown source as given and stores it with
// tags stripped. goldmark drops raw HTML and the output is sanitized, so
// autolinks and markup inside code spans survive rendering.
func (h *Handler) renderContent(raw string) (string, string, error) {
	source := strings.TrimSpace(raw)
	if len(source) > maxContentLength {
		return "", "", apperr.Validation("Content must be at most 10000 characters")
	}
	content := h.sanitizer.PlainText(source)
	if content == "" {
		return "", "", apperr.Validation("Content is required")
	}
	html, err := h.markdown.Render(source)
	if err != nil {
		return "", "", apperr.Internal(err)
	}
	return content, html, nil
}

func (h *Handler) cleanTags(raw []string) ([]string, error) {
	tags := []string{}
	seen := make(map[string]bool)
	for _, t := range raw {
		tag := strings.ToLower(h.sanitizer.PlainText(t))
		if tag == "" || seen[tag] {
			continue
		}
		if len(tag) > maxTagLength {
			return nil, apperr.Validation("Tags must be at most 30 characters")
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	if len(tags) > maxTags {
		return nil, apperr.Validation("At most 5 tags are allowed")
	}
	return tags, nil
}

func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrPostNotFound):
		apperr.Write(w, r, apperr.NotFound("Post not found"))
	case errors.Is(err, ErrCommentNotFound):
		apperr.Write(w, r, apperr.NotFound("Comment not found"))
	default:
		apperr.Write(w, r, apperr.Internal(err))
	}
}
