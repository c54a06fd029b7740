package devotional

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matth2611/Holy-navigator/internal/apperr"
	"github.com/matth2611/Holy-navigator/internal/utils"
)

type Handler struct {
	year *Year
	now  func() time.Time
}

func NewHandler(year *Year, now func() time.Time) *Handler {
	if now == nil {
		now = time.Now
	}
	return &Handler{year: year, now: now}
}

type todayResponse struct {
	Devotional
	Date string `json:"date"`
}

func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	now := h.now().UTC()
	utils.WriteJSON(w, http.StatusOK, todayResponse{
		Devotional: h.year.Today(now),
		Date:       now.Format(time.DateOnly),
	})
}

func (h *Handler) All(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]any{"devotionals": h.year.All()})
}

func (h *Handler) Day(w http.ResponseWriter, r *http.Request) {
	day, err := strconv.Atoi(chi.URLParam(r, "day"))
	if err != nil {
		apperr.Write(w, r, apperr.Validation("Day must be a number"))
		return
	}
	d, ok := h.year.Day(day)
	if !ok {
		apperr.Write(w, r, apperr.NotFound("Devotional not found"))
		return
	}
	utils.WriteJSON(w, http.StatusOK, d)
}
