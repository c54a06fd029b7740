package profile

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matth2611/Holy-navigator/internal/apperr"
	"github.com/matth2611/Holy-navigator/internal/auth"
	"github.com/matth2611/Holy-navigator/internal/bible"
	"github.com/matth2611/Holy-navigator/internal/bookmarks"
	"github.com/matth2611/Holy-navigator/internal/security"
	"github.com/matth2611/Holy-navigator/internal/storage"
	"github.com/matth2611/Holy-navigator/internal/utils"
)

const (
	maxNameLength = 100
	pictureDir    = "profile-pictures"
)

var (
	themes = map[string]bool{"light": true, "dark": true, "system": true}

	pictureTypes = map[string]string{
		"image/jpeg": "jpg",
		"image/png":  "png",
		"image/webp": "webp",
	}
)

type Accounts interface {
	FindByID(ctx context.Context, userID string) (*auth.User, error)
	UpdateProfile(ctx context.Context, userID string, fields map[string]any) (*auth.User, error)
}

type BookmarkStats interface {
	Count(ctx context.Context, userID string) (int64, error)
	Chapters(ctx context.Context, userID string) ([]bookmarks.ChapterRef, error)
}

type JournalCounter interface {
	Count(ctx context.Context, userID string) (int64, error)
}

type PostCounter interface {
	CountPosts(ctx context.Context, userID string) (int64, error)
}

type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string) (*storage.Upload, error)
	PublicURL(key string) string
}

// Deps are the stores the profile view aggregates. Presigner may be nil
// when object storage is not configured.
type Deps struct {
	Store     Store
	Accounts  Accounts
	Bookmarks BookmarkStats
	Journals  JournalCounter
	Posts     PostCounter
	Catalog   *bible.Catalog
	Sanitizer *security.Sanitizer
	Presigner Presigner
}

type Handler struct {
	Deps
}

func NewHandler(deps Deps) *Handler {
	return &Handler{Deps: deps}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	u, err := h.Accounts.FindByID(r.Context(), userID)
	if err != nil {
		writeAccountError(w, r, err)
		return
	}
	settings, err := h.Store.GetSettings(r.Context(), userID)
	if err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	stats, err := h.stats(r.Context(), userID)
	if err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, buildProfile(u, stats, settings))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	var req updateProfileRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, apperr.Validation("Invalid request body"))
		return
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := h.Sanitizer.PlainText(*req.Name)
		if name == "" || len(name) > maxNameLength {
			apperr.Write(w, r, apperr.Validation("Name is required and must be at most 100 characters"))
			return
		}
		fields["name"] = name
	}
	if req.Picture != nil {
		picture, err := h.resolvePicture(userID, strings.TrimSpace(*req.Picture))
		if err != nil {
			apperr.Write(w, r, err)
			return
		}
		fields["picture"] = picture
	}

	settings, err := h.Store.GetSettings(r.Context(), userID)
	if err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	changed := false
	if req.NotificationEmail != nil {
		settings.NotificationEmail = *req.NotificationEmail
		changed = true
	}
	if req.NotificationForum != nil {
		settings.NotificationForum = *req.NotificationForum
		changed = true
	}
	if req.PreferredTranslation != nil {
		t := strings.ToUpper(strings.TrimSpace(*req.PreferredTranslation))
		if t == "" || len(t) > 10 {
			apperr.Write(w, r, apperr.Validation("Invalid preferred_translation"))
			return
		}
		settings.PreferredTranslation = t
		changed = true
	}
	if req.ThemePreference != nil {
		theme := strings.ToLower(strings.TrimSpace(*req.ThemePreference))
		if !themes[theme] {
			apperr.Write(w, r, apperr.Validation("theme_preference must be light, dark or system"))
			return
		}
		settings.ThemePreference = theme
		changed = true
	}

	u, err := h.Accounts.UpdateProfile(r.Context(), userID, fields)
	if err != nil {
		writeAccountError(w, r, err)
		return
	}
	if changed {
		if err := h.Store.SaveSettings(r.Context(), &settings); err != nil {
			apperr.Write(w, r, apperr.Internal(err))
			return
		}
	}

	stats, err := h.stats(r.Context(), userID)
	if err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, buildProfile(u, stats, settings))
}

func (h *Handler) ReadingProgress(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	chapters, err := h.Bookmarks.Chapters(r.Context(), userID)
	if err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}

	books := make(map[string]bool)
	seen := make(map[bookmarks.ChapterRef]bool)
	for _, c := range chapters {
		books[c.Book] = true
		seen[c] = true
	}

	total := h.Catalog.TotalChapters()
	utils.WriteJSON(w, http.StatusOK, readingProgress{
		BooksStarted:       len(books),
		TotalBooks:         h.Catalog.TotalBooks(),
		ChaptersBookmarked: len(seen),
		TotalChapters:      total,
		ProgressPercentage: math.Round(float64(len(seen))/float64(total)*1000) / 10,
	})
}

func (h *Handler) PictureUpload(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	if h.Presigner == nil {
		apperr.Write(w, r, apperr.Unavailable("File storage is not configured"))
		return
	}

	var req uploadRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, apperr.Validation("Invalid request body"))
		return
	}
	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	ext, ok := pictureTypes[contentType]
	if !ok {
		apperr.Write(w, r, apperr.Validation("content_type must be image/jpeg, image/png or image/webp"))
		return
	}

	key := fmt.Sprintf("%s/%s/%s.%s", pictureDir, userID, uuid.NewString(), ext)
	up, err := h.Presigner.PresignPut(r.Context(), key, contentType)
	if err != nil {
		apperr.Write(w, r, apperr.Upstream("Could not prepare upload", err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, up)
}

func (h *Handler) Preferences(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	s, err := h.Store.GetSettings(r.Context(), userID)
	if err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, preferencesOf(s))
}

func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	var req updatePreferencesRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, apperr.Validation("Invalid request body"))
		return
	}

	s, err := h.Store.GetSettings(r.Context(), userID)
	if err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	if req.DailyDevotional != nil {
		s.DailyDevotional = *req.DailyDevotional
	}
	if req.DailyNews != nil {
		s.DailyNews = *req.DailyNews
	}
	if req.ReadingPlanReminder != nil {
		s.ReadingPlanReminder = *req.ReadingPlanReminder
	}
	if req.WeeklySermonUpdates != nil {
		s.WeeklySermonUpdates = *req.WeeklySermonUpdates
	}
	if req.ReminderTime != nil {
		t, err := time.Parse("15:04", strings.TrimSpace(*req.ReminderTime))
		if err != nil {
			apperr.Write(w, r, apperr.Validation("reminder_time must be HH:MM"))
			return
		}
		s.ReminderTime = t.Format("15:04")
	}

	if err := h.Store.SaveSettings(r.Context(), &s); err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, preferencesOf(s))
}

func (h *Handler) stats(ctx context.Context, userID string) (Stats, error) {
	var (
		st  Stats
		err error
	)
	if st.Bookmarks, err = h.Bookmarks.Count(ctx, userID); err != nil {
		return Stats{}, fmt.Errorf("count bookmarks: %w", err)
	}
	if st.Journals, err = h.Journals.Count(ctx, userID); err != nil {
		return Stats{}, fmt.Errorf("count journals: %w", err)
	}
	if st.ForumPosts, err = h.Posts.CountPosts(ctx, userID); err != nil {
		return Stats{}, fmt.Errorf("count forum posts: %w", err)
	}
	return st, nil
}

// resolvePicture turns a submitted picture into the value stored on the
// account: nil clears it, an http(s) URL is kept, and an upload key issued
// to this user becomes its public URL.
func (h *Handler) resolvePicture(userID, raw string) (*string, error) {
	if raw == "" {
		return nil, nil
	}
	if u, err := url.Parse(raw); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return &raw, nil
	}
	prefix := pictureDir + "/" + userID + "/"
	if h.Presigner != nil && strings.HasPrefix(raw, prefix) && !strings.Contains(raw[len(prefix):], "/") {
		public := h.Presigner.PublicURL(raw)
		return &public, nil
	}
	return nil, apperr.Validation("picture must be an http(s) URL or an uploaded picture key")
}

func buildProfile(u *auth.User, stats Stats, s Settings) profileResponse {
	return profileResponse{
		UserID:    u.UserID,
		Name:      u.Name,
		Email:     u.Email,
		Picture:   u.Picture,
		IsPremium: u.IsPremium,
		CreatedAt: u.CreatedAt,
		Stats:     stats,
		Settings: profileSettings{
			NotificationEmail:    s.NotificationEmail,
			NotificationForum:    s.NotificationForum,
			PreferredTranslation: s.PreferredTranslation,
			ThemePreference:      s.ThemePreference,
		},
	}
}

func preferencesOf(s Settings) NotificationPreferences {
	return NotificationPreferences{
		DailyDevotional:     s.DailyDevotional,
		DailyNews:           s.DailyNews,
		ReadingPlanReminder: s.ReadingPlanReminder,
		WeeklySermonUpdates: s.WeeklySermonUpdates,
		ReminderTime:        s.ReminderTime,
	}
}

func writeAccountError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, auth.ErrNotFound) {
		apperr.Write(w, r, apperr.NotFound("User not found"))
		return
	}
	apperr.Write(w, r, apperr.Internal(err))
}
