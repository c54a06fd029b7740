package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matth2611/Holy-navigator/internal/middleware"
	"github.com/matth2611/Holy-navigator/internal/security"
	"github.com/matth2611/Holy-navigator/internal/testutil"
)

type fakeStore struct {
	mu   sync.Mutex
	rows []Analysis
}

func (s *fakeStore) Create(_ context.Context, a *Analysis) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, *a)
	return nil
}

func (s *fakeStore) List(_ context.Context, userID string, limit int) ([]Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Analysis
	for _, a := range s.rows {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out[:min(limit, len(out))], nil
}

type fakeLLM struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeLLM) Complete(_ context.Context, system, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

type countingRecorder struct {
	got map[string]int
}

func (c *countingRecorder) RecordLLMRequest(result string) {
	if c.got == nil {
		c.got = make(map[string]int)
	}
	c.got[result]++
}

const jsonReply = "Here you go:\n```json\n" + `{
  "scripture_references": [{"reference": "Micah 6:8", "text": "Do justly...", "connection": "Justice"}],
  "analysis": "A call to justice.",
  "spiritual_application": "Act justly."
}` + "\n```"

func newRouter(t *testing.T, auth *testutil.Auth, llm Completer, metrics LLMRecorder, limit func(http.Handler) http.Handler) http.Handler {
	t.Helper()
	san := security.NewSanitizer()
	h := NewHandler(Deps{
		Store:     &fakeStore{},
		LLM:       llm,
		Sanitizer: san,
		Metrics:   metrics,
		Feeds:     &FeedReader{Trusted: http.DefaultClient, Untrusted: http.DefaultClient, Sanitizer: san},
	})
	return h.SetupRoutes(auth.Resolver, limit)
}

func TestParseResult(t *testing.T) {
	res, ok := ParseResult(jsonReply)
	require.True(t, ok)
	assert.Equal(t, "A call to justice.", res.Analysis)
	require.Len(t, res.ScriptureReferences, 1)
	assert.Equal(t, "Micah 6:8", res.ScriptureReferences[0].Reference)

	res, ok = ParseResult("```\n{\"analysis\":\"bare fence\"}\n```")
	require.True(t, ok)
	assert.Equal(t, "bare fence", res.Analysis)
	assert.NotNil(t, res.ScriptureReferences)

	res, ok = ParseResult(`{"analysis":"no fence","spiritual_application":"pray"}`)
	require.True(t, ok)
	assert.Equal(t, "pray", res.SpiritualApplication)

	long := strings.Repeat("word ", 200)
	res, ok = ParseResult(long)
	assert.False(t, ok)
	assert.Equal(t, long, res.Analysis)
	assert.Equal(t, defaultApplication, res.SpiritualApplication)
	require.Len(t, res.ScriptureReferences, 1)
	assert.Equal(t, "Romans 8:28", res.ScriptureReferences[0].Reference)
	assert.Len(t, res.ScriptureReferences[0].Connection, 500)
}

func TestAnalyze_PremiumGate(t *testing.T) {
	auth := testutil.NewAuth()
	router := newRouter(t, auth, &fakeLLM{reply: jsonReply}, nil, nil)

	rec := testutil.Do(t, router, http.MethodPost, "/news", "", map[string]string{"news_headline": "h", "news_content": "c"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = testutil.Do(t, router, http.MethodPost, "/news", auth.Free(t, "user_free"), map[string]string{"news_headline": "h", "news_content": "c"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAnalyze_StoresAndLists(t *testing.T) {
	auth := testutil.NewAuth()
	llm := &fakeLLM{reply: jsonReply}
	metrics := &countingRecorder{}
	router := newRouter(t, auth, llm, metrics, nil)
	tok := auth.Premium(t, "user_reader")

	rec := testutil.Do(t, router, http.MethodPost, "/news", tok, map[string]string{"news_headline": "", "news_content": "c"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = testutil.Do(t, router, http.MethodPost, "/news", tok, map[string]string{
		"news_headline": "Flood relief <b>efforts</b>",
		"news_content":  "Communities gather to help.",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var a Analysis
	testutil.Decode(t, rec, &a)
	assert.True(t, strings.HasPrefix(a.AnalysisID, "ana_"))
	assert.Equal(t, "Flood relief efforts", a.NewsHeadline)
	assert.Equal(t, "Act justly.", a.SpiritualApplication)
	assert.Contains(t, llm.prompt, "Headline: Flood relief efforts")
	assert.Equal(t, 1, metrics.got["success"])

	rec = testutil.Do(t, router, http.MethodGet, "/history", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var hist struct {
		Analyses []Analysis `json:"analyses"`
	}
	testutil.Decode(t, rec, &hist)
	require.Len(t, hist.Analyses, 1)
	assert.Equal(t, a.AnalysisID, hist.Analyses[0].AnalysisID)

	rec = testutil.Do(t, router, http.MethodGet, "/history", auth.Premium(t, "user_other"), nil)
	assert.JSONEq(t, `{"analyses":[]}`, rec.Body.String())
}

func TestAnalyze_UpstreamErrors(t *testing.T) {
	auth := testutil.NewAuth()
	tok := auth.Premium(t, "user_reader")
	body := map[string]string{"news_headline": "h", "news_content": "c"}

	router := newRouter(t, auth, &fakeLLM{err: errors.New("boom")}, nil, nil)
	rec := testutil.Do(t, router, http.MethodPost, "/news", tok, body)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Analysis failed", testutil.Detail(t, rec))

	router = newRouter(t, auth, &fakeLLM{err: ErrNotConfigured}, nil, nil)
	rec = testutil.Do(t, router, http.MethodPost, "/news", tok, body)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestAnalyze_RateLimited(t *testing.T) {
	auth := testutil.NewAuth()
	limiter := middleware.NewRateLimiter(middleware.PerHour("analysis", 1))
	t.Cleanup(limiter.Stop)
	router := newRouter(t, auth, &fakeLLM{reply: jsonReply}, nil, limiter.Middleware)
	tok := auth.Premium(t, "user_busy")
	body := map[string]string{"news_headline": "h", "news_content": "c"}

	rec := testutil.Do(t, router, http.MethodPost, "/news", tok, body)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = testutil.Do(t, router, http.MethodPost, "/news", tok, body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// History is not limited.
	rec = testutil.Do(t, router, http.MethodGet, "/history", tok, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestOpenAIClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		if r.Header.Get("Authorization") != "Bearer key" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":{"type":"auth","message":"bad key"}}`))
			return
		}
		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`))
	}))
	defer srv.Close()

	got, err := NewOpenAIClient(srv.URL+"/", "key", "test-model", srv.Client()).Complete(context.Background(), "sys", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)

	_, err = NewOpenAIClient(srv.URL, "wrong", "test-model", srv.Client()).Complete(context.Background(), "sys", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")

	_, err = NewOpenAIClient(srv.URL, "", "m", nil).Complete(context.Background(), "sys", "hi")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

const rssFeed = `<?xml version="1.0"?>
<rss version="2.0"><channel><title>World</title>
<item><title>First &lt;b&gt;story&lt;/b&gt;</title><link>https://news.test/1</link><description>&lt;p&gt;Summary one&lt;/p&gt;</description><pubDate>Mon, 02 Mar 2026 10:00:00 GMT</pubDate></item>
<item><title></title><link>https://news.test/skip</link></item>
<item><title>Second story</title><link>https://news.test/2</link></item>
</channel></rss>`

func TestFeedReader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(rssFeed))
	}))
	defer srv.Close()

	san := security.NewSanitizer()
	reader := &FeedReader{Trusted: srv.Client(), Untrusted: http.DefaultClient, Sanitizer: san}

	got, err := reader.Headlines(context.Background(), srv.URL, false)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "First story", got[0].Title)
	assert.Equal(t, "Summary one", got[0].Summary)
	assert.Equal(t, "https://news.test/1", got[0].Link)
	require.NotNil(t, got[0].Published)
	assert.Equal(t, 2026, got[0].Published.Year())
	assert.Nil(t, got[1].Published)

	// The test server is on loopback, which user-supplied feeds may not reach.
	_, err = reader.Headlines(context.Background(), srv.URL, true)
	assert.Error(t, err)
}

func TestHeadlines_RejectsPrivateFeed(t *testing.T) {
	auth := testutil.NewAuth()
	router := newRouter(t, auth, &fakeLLM{}, nil, nil)
	tok := auth.Premium(t, "user_reader")

	rec := testutil.Do(t, router, http.MethodGet, "/headlines?feed=http://127.0.0.1/rss", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHeadlines_FeedNotConfigured(t *testing.T) {
	auth := testutil.NewAuth()
	router := newRouter(t, auth, &fakeLLM{}, nil, nil)
	tok := auth.Premium(t, "user_reader")

	rec := testutil.Do(t, router, http.MethodGet, "/headlines", tok, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "News feed is not configured", testutil.Detail(t, rec))
}
