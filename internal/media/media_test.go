package media

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matth2611/Holy-navigator/internal/testutil"
)

type fakeStore struct {
	mu sync.Mutex
	m  map[string]map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{m: make(map[string]map[string]bool)}
}

func (s *fakeStore) Mark(_ context.Context, userID, mediaID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m[userID] == nil {
		s.m[userID] = make(map[string]bool)
	}
	s.m[userID][mediaID] = true
	return nil
}

func (s *fakeStore) Unmark(_ context.Context, userID, mediaID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m[userID], mediaID)
	return nil
}

func (s *fakeStore) Watched(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for id := range s.m[userID] {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func newRouter(t *testing.T, auth *testutil.Auth) http.Handler {
	t.Helper()
	catalog, err := Load()
	require.NoError(t, err)
	return NewHandler(catalog, newFakeStore()).SetupRoutes(auth.Resolver)
}

func TestLoad(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)
	assert.Len(t, c.Videos("", nil), 5)
	assert.Len(t, c.Audio("", nil), 5)
	assert.Equal(t, []string{"Revelation", "Daniel", "Prophecy", "Eschatology", "End Times"}, c.Categories)
	assert.Contains(t, c.Notice, "every week")

	for _, it := range c.Videos("", nil) {
		assert.Equal(t, KindVideo, it.Kind)
		assert.NotEmpty(t, it.VideoURL, it.ID)
		assert.Contains(t, c.Categories, it.Category)
	}
	for _, it := range c.Audio("", nil) {
		assert.NotEmpty(t, it.AudioURL, it.ID)
		assert.Contains(t, c.Categories, it.Category)
	}
}

func TestNew_RejectsDuplicateIDs(t *testing.T) {
	_, err := New("", nil, []Item{{ID: "a"}}, []Item{{ID: "a"}})
	assert.Error(t, err)
}

func TestMedia_PremiumGate(t *testing.T) {
	auth := testutil.NewAuth()
	router := newRouter(t, auth)

	rec := testutil.Do(t, router, http.MethodGet, "/all", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = testutil.Do(t, router, http.MethodGet, "/all", auth.Free(t, "user_free"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMedia_CategoryFilter(t *testing.T) {
	auth := testutil.NewAuth()
	router := newRouter(t, auth)
	tok := auth.Premium(t, "user_viewer")

	rec := testutil.Do(t, router, http.MethodGet, "/videos?category=daniel", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Videos []Item `json:"videos"`
	}
	testutil.Decode(t, rec, &body)
	require.Len(t, body.Videos, 1)
	assert.Equal(t, "vid_daniel_seventy_weeks", body.Videos[0].ID)
}

func TestMedia_TrackAndStats(t *testing.T) {
	auth := testutil.NewAuth()
	router := newRouter(t, auth)
	tok := auth.Premium(t, "user_viewer")

	rec := testutil.Do(t, router, http.MethodPost, "/track/vid_olivet_discourse", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = testutil.Do(t, router, http.MethodPost, "/track/vid_olivet_discourse", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = testutil.Do(t, router, http.MethodPost, "/track/aud_blessed_hope", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = testutil.Do(t, router, http.MethodPost, "/track/nope", tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = testutil.Do(t, router, http.MethodGet, "/all", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var lib libraryResponse
	testutil.Decode(t, rec, &lib)
	assert.Equal(t, libraryStats{TotalVideos: 5, TotalAudio: 5, Watched: 2}, lib.Stats)
	for _, v := range lib.Videos {
		assert.Equal(t, v.ID == "vid_olivet_discourse", v.Watched, v.ID)
	}

	rec = testutil.Do(t, router, http.MethodDelete, "/track/aud_blessed_hope", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = testutil.Do(t, router, http.MethodGet, "/watched", tok, nil)
	assert.JSONEq(t, `{"watched":["vid_olivet_discourse"]}`, rec.Body.String())
}
