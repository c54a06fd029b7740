package readingplan

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matth2611/Holy-navigator/internal/apperr"
	"github.com/matth2611/Holy-navigator/internal/devotional"
	"github.com/matth2611/Holy-navigator/internal/utils"
)

const (
	defaultPageSize = 31
	maxPageSize     = 100
)

var errDayRange = apperr.Validation("Day must be between 1 and 365")

type Handler struct {
	plan  *Plan
	store Store
	now   func() time.Time
}

func NewHandler(plan *Plan, store Store, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{plan: plan, store: store, now: now}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := max(utils.QueryInt(r, "page", 1), 1)
	limit := utils.QueryInt(r, "limit", defaultPageSize)
	if limit < 1 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPageSize)

	readings, pages := h.plan.Page(page, limit)
	utils.WriteJSON(w, http.StatusOK, pageResponse{
		Readings: readings,
		Page:     page,
		Pages:    pages,
		Total:    h.plan.Len(),
	})
}

func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	now := h.now().UTC()
	reading, _ := h.plan.Day(devotional.DayOfYear(now))
	utils.WriteJSON(w, http.StatusOK, todayResponse{
		Reading: reading,
		Date:    now.Format(time.DateOnly),
	})
}

func (h *Handler) Day(w http.ResponseWriter, r *http.Request) {
	day, err := parseDay(r)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}
	reading, _ := h.plan.Day(day)
	utils.WriteJSON(w, http.StatusOK, reading)
}

func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	days, err := h.store.CompletedDays(r.Context(), userID)
	if err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, ComputeProgress(days, devotional.DayOfYear(h.now())))
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())
	day, err := parseDay(r)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	if err := h.store.Complete(r.Context(), userID, day); err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"message": "Day marked as complete", "day": day})
}

func (h *Handler) Uncomplete(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())
	day, err := parseDay(r)
	if err != nil {
		apperr.Write(w, r, err)
		return
	}

	if err := h.store.Uncomplete(r.Context(), userID, day); err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"message": "Day marked as incomplete", "day": day})
}

func parseDay(r *http.Request) (int, error) {
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil || day < 1 || day > TotalDays {
		return 0, errDayRange
	}
	return day, nil
}
