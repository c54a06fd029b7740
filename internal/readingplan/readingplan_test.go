package readingplan

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matth2611/Holy-navigator/internal/bible"
	"github.com/matth2611/Holy-navigator/internal/testutil"
)

type fakeStore struct {
	mu   sync.Mutex
	done map[string]map[int]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{done: make(map[string]map[int]bool)}
}

func (s *fakeStore) Complete(_ context.Context, userID string, day int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done[userID] == nil {
		s.done[userID] = make(map[int]bool)
	}
	s.done[userID][day] = true
	return nil
}

func (s *fakeStore) Uncomplete(_ context.Context, userID string, day int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.done[userID], day)
	return nil
}

func (s *fakeStore) CompletedDays(_ context.Context, userID string) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var days []int
	for d := range s.done[userID] {
		days = append(days, d)
	}
	sort.Ints(days)
	return days, nil
}

func spanLen(t *testing.T, span string) int {
	t.Helper()
	from, to, found := strings.Cut(span, "-")
	a, err := strconv.Atoi(from)
	require.NoError(t, err)
	if !found {
		return 1
	}
	b, err := strconv.Atoi(to)
	require.NoError(t, err)
	return b - a + 1
}

func TestPlan_CoversEveryChapterOnce(t *testing.T) {
	catalog := bible.NewCatalog()
	plan := NewPlan(catalog)
	require.Equal(t, TotalDays, plan.Len())

	total := 0
	for d := 1; d <= TotalDays; d++ {
		r, ok := plan.Day(d)
		require.True(t, ok)
		assert.Equal(t, d, r.Day)
		assert.NotEmpty(t, r.Theme)

		perDay := 0
		for _, seg := range r.Readings {
			perDay += spanLen(t, seg.Chapters)
		}
		assert.GreaterOrEqual(t, perDay, 3, "day %d", d)
		assert.LessOrEqual(t, perDay, 4, "day %d", d)
		total += perDay
	}
	assert.Equal(t, catalog.TotalChapters(), total)

	first, _ := plan.Day(1)
	assert.Equal(t, []Segment{{Book: "Genesis", Chapters: "1-3"}}, first.Readings)
	assert.Equal(t, "The Law: Genesis", first.Theme)

	last, _ := plan.Day(TotalDays)
	lastSeg := last.Readings[len(last.Readings)-1]
	assert.Equal(t, "Revelation", lastSeg.Book)
	assert.True(t, strings.HasSuffix(lastSeg.Chapters, "22"))

	_, ok := plan.Day(0)
	assert.False(t, ok)
	_, ok = plan.Day(366)
	assert.False(t, ok)
}

func TestPlan_Page(t *testing.T) {
	plan := NewPlan(bible.NewCatalog())

	readings, pages := plan.Page(1, 31)
	assert.Len(t, readings, 31)
	assert.Equal(t, 12, pages)

	readings, _ = plan.Page(12, 31)
	assert.Len(t, readings, 365-11*31)
	assert.Equal(t, 365, readings[len(readings)-1].Day)

	readings, _ = plan.Page(13, 31)
	assert.Empty(t, readings)

	readings, pages = plan.Page(297528130221121802, 31)
	assert.Empty(t, readings)
	assert.Equal(t, 12, pages)

	readings, _ = plan.Page(0, 31)
	assert.Empty(t, readings)
}

func TestComputeProgress(t *testing.T) {
	tests := []struct {
		name      string
		completed []int
		today     int
		streak    int
	}{
		{"nothing", nil, 10, 0},
		{"ends today", []int{8, 9, 10}, 10, 3},
		{"today not done yet", []int{7, 8, 9}, 10, 3},
		{"gap breaks streak", []int{5, 6, 8, 9}, 9, 2},
		{"yesterday missing", []int{7, 8}, 10, 0},
		{"first day", []int{1}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ComputeProgress(tt.completed, tt.today)
			assert.Equal(t, tt.streak, p.CurrentStreak)
			assert.Equal(t, len(tt.completed), p.CompletedDays)
			assert.Equal(t, TotalDays, p.TotalDays)
		})
	}

	p := ComputeProgress([]int{3, 1, 2, 2, 400}, 3)
	assert.Equal(t, []int{1, 2, 3}, p.CompletedList)
	assert.Equal(t, 0.8, p.ProgressPercentage)
}

func TestHandlers_Public(t *testing.T) {
	auth := testutil.NewAuth()
	fixed := func() time.Time { return time.Date(2025, 1, 3, 8, 0, 0, 0, time.UTC) }
	router := NewHandler(NewPlan(bible.NewCatalog()), newFakeStore(), fixed).SetupRoutes(auth.Resolver)

	rec := testutil.Do(t, router, http.MethodGet, "/?page=2&limit=500", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page pageResponse
	testutil.Decode(t, rec, &page)
	assert.Len(t, page.Readings, maxPageSize)
	assert.Equal(t, 101, page.Readings[0].Day)
	assert.Equal(t, 4, page.Pages)
	assert.Equal(t, 365, page.Total)

	rec = testutil.Do(t, router, http.MethodGet, "/?page=297528130221121802", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var beyond pageResponse
	testutil.Decode(t, rec, &beyond)
	assert.NotNil(t, beyond.Readings)
	assert.Empty(t, beyond.Readings)
	assert.Equal(t, 12, beyond.Pages)

	rec = testutil.Do(t, router, http.MethodGet, "/today", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var today todayResponse
	testutil.Decode(t, rec, &today)
	assert.Equal(t, 3, today.Day)
	assert.Equal(t, "2025-01-03", today.Date)

	rec = testutil.Do(t, router, http.MethodGet, "/day/0", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Day must be between 1 and 365", testutil.Detail(t, rec))
}

func TestHandlers_Completion(t *testing.T) {
	auth := testutil.NewAuth()
	tok := auth.Free(t, "user_reader")
	fixed := func() time.Time { return time.Date(2025, 1, 3, 8, 0, 0, 0, time.UTC) }
	router := NewHandler(NewPlan(bible.NewCatalog()), newFakeStore(), fixed).SetupRoutes(auth.Resolver)

	rec := testutil.Do(t, router, http.MethodPost, "/complete/1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	for _, path := range []string{"/complete/0", "/complete/366", "/complete/x"} {
		rec = testutil.Do(t, router, http.MethodPost, path, tok, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Equal(t, "Day must be between 1 and 365", testutil.Detail(t, rec))
	}

	for _, day := range []string{"1", "2", "2"} {
		rec = testutil.Do(t, router, http.MethodPost, "/complete/"+day, tok, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = testutil.Do(t, router, http.MethodGet, "/progress", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var p Progress
	testutil.Decode(t, rec, &p)
	assert.Equal(t, 2, p.CompletedDays)
	assert.Equal(t, 2, p.CurrentStreak)
	assert.Equal(t, []int{1, 2}, p.CompletedList)

	rec = testutil.Do(t, router, http.MethodDelete, "/complete/2", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = testutil.Do(t, router, http.MethodDelete, "/complete/2", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = testutil.Do(t, router, http.MethodGet, "/progress", tok, nil)
	testutil.Decode(t, rec, &p)
	assert.Equal(t, []int{1}, p.CompletedList)
	assert.Equal(t, 0, p.CurrentStreak)
}
