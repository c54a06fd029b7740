package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveHTTP("GET", "/bookmarks", 200, 10*time.Millisecond)
	c.RecordUpvoteToggle("post", true)
	c.RecordUpvoteToggle("post", false)
	c.RecordPaymentConfirmed("webhook")
	c.RecordBibleFallback()
	c.RecordLLMRequest("ok")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "/bookmarks", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.upvoteToggles.WithLabelValues("post", "added")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.upvoteToggles.WithLabelValues("post", "removed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.paymentsConfirmed.WithLabelValues("webhook")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.bibleFallbacks))
}

func TestHandler_Exposes(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordBibleFallback()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "holynav_bible_fallbacks_total 1")
}
