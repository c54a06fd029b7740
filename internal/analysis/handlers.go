package analysis

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/matth2611/Holy-navigator/internal/apperr"
	"github.com/matth2611/Holy-navigator/internal/security"
	"github.com/matth2611/Holy-navigator/internal/utils"
)

const (
	historyLimit      = 50
	maxHeadlineLength = 500
	maxContentLength  = 10000
)

// LLMRecorder observes completion outcomes for metrics.
type LLMRecorder interface {
	RecordLLMRequest(result string)
}

type Deps struct {
	Store       Store
	LLM         Completer
	Feeds       *FeedReader
	Sanitizer   *security.Sanitizer
	Metrics     LLMRecorder
	DefaultFeed string
	Log         *slog.Logger
}

type Handler struct {
	deps Deps
	now  func() time.Time
}

func NewHandler(deps Deps) *Handler {
	if deps.Log == nil {
		deps.Log = slog.Default()
	}
	return &Handler{deps: deps, now: time.Now}
}

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	var req analyzeRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		apperr.Write(w, r, apperr.Validation("Invalid request body"))
		return
	}
	headline := h.deps.Sanitizer.PlainText(req.NewsHeadline)
	content := h.deps.Sanitizer.PlainText(req.NewsContent)
	if headline == "" || content == "" {
		apperr.Write(w, r, apperr.Validation("news_headline and news_content are required"))
		return
	}
	if len(headline) > maxHeadlineLength || len(content) > maxContentLength {
		apperr.Write(w, r, apperr.Validation("News headline or content is too long"))
		return
	}

	reply, err := h.deps.LLM.Complete(r.Context(), systemPrompt, buildPrompt(headline, content))
	if errors.Is(err, ErrNotConfigured) {
		apperr.Write(w, r, apperr.Unavailable("News analysis is not configured"))
		return
	}
	if err != nil {
		h.record("error")
		apperr.Write(w, r, apperr.Upstream("Analysis failed", err))
		return
	}

	result, parsed := ParseResult(reply)
	if parsed {
		h.record("success")
	} else {
		h.record("unparsed")
		h.deps.Log.Warn("llm reply was not JSON; storing as plain analysis",
			slog.String("user_id", userID),
			slog.Int("reply_len", len(reply)),
		)
	}

	a := &Analysis{
		AnalysisID:           utils.NewID("ana"),
		UserID:               userID,
		NewsHeadline:         headline,
		NewsContent:          content,
		ScriptureReferences:  result.ScriptureReferences,
		Analysis:             result.Analysis,
		SpiritualApplication: result.SpiritualApplication,
		CreatedAt:            h.now().UTC(),
	}
	if err := h.deps.Store.Create(r.Context(), a); err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	list, err := h.deps.Store.List(r.Context(), userID, historyLimit)
	if err != nil {
		apperr.Write(w, r, apperr.Internal(err))
		return
	}
	if list == nil {
		list = []Analysis{}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{"analyses": list})
}

func (h *Handler) Headlines(w http.ResponseWriter, r *http.Request) {
	source := strings.TrimSpace(r.URL.Query().Get("feed"))
	userSupplied := source != ""
	if !userSupplied {
		source = h.deps.DefaultFeed
		if source == "" {
			apperr.Write(w, r, apperr.Unavailable("News feed is not configured"))
			return
		}
	}

	headlines, err := h.deps.Feeds.Headlines(r.Context(), source, userSupplied)
	if err != nil {
		if userSupplied && security.ValidateURL(source) != nil {
			apperr.Write(w, r, apperr.Validation("feed must be a public http(s) URL"))
			return
		}
		apperr.Write(w, r, apperr.Upstream("Could not load news feed", err))
		return
	}
	utils.WriteJSON(w, http.StatusOK, headlinesResponse{Source: source, Headlines: headlines})
}

func (h *Handler) record(result string) {
	if h.deps.Metrics != nil {
		h.deps.Metrics.RecordLLMRequest(result)
	}
}
