package seeds

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matth2611/Holy-navigator/internal/auth"
	"github.com/matth2611/Holy-navigator/internal/forum"
	"github.com/matth2611/Holy-navigator/internal/security"
	"github.com/matth2611/Holy-navigator/internal/testutil"
)

func TestLoad(t *testing.T) {
	b, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "demo@holynavigator.app", b.DemoUser.Email)
	assert.True(t, b.DemoUser.Premium)
	require.NotEmpty(t, b.Posts)
	for _, p := range b.Posts {
		assert.NotEmpty(t, p.Title, p.ID)
		assert.NotEmpty(t, p.Content, p.ID)
	}
}

func TestSeedAll_RejectsShortPassword(t *testing.T) {
	b, err := Load()
	require.NoError(t, err)

	s := NewSeeder(nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	_, err = s.SeedAll(context.Background(), b, "short")
	assert.Error(t, err)
}

func TestSeedAll_Idempotent(t *testing.T) {
	d := testutil.OpenDB(t)
	require.NoError(t, auth.Init(d))
	require.NoError(t, forum.Init(d))

	b, err := Load()
	require.NoError(t, err)
	b.DemoUser.Email = "seed-it@holynavigator.test"
	for i := range b.Posts {
		b.Posts[i].ID += "_it"
	}
	t.Cleanup(func() {
		for _, p := range b.Posts {
			d.Delete(&forum.Post{}, "post_id = ?", p.ID)
		}
		d.Delete(&auth.User{}, "email = ?", b.DemoUser.Email)
	})

	sanitizer := security.NewSanitizer()
	s := NewSeeder(d, security.NewMarkdownRenderer(sanitizer), slog.New(slog.NewTextHandler(io.Discard, nil)))

	first, err := s.SeedAll(context.Background(), b, "demo-password")
	require.NoError(t, err)
	assert.True(t, first.UserCreated)
	assert.Equal(t, len(b.Posts), first.PostsCreated)

	second, err := s.SeedAll(context.Background(), b, "demo-password")
	require.NoError(t, err)
	assert.False(t, second.UserCreated)
	assert.Zero(t, second.PostsCreated)

	var post forum.Post
	require.NoError(t, d.First(&post, "post_id = ?", b.Posts[0].ID).Error)
	assert.Contains(t, post.ContentHTML, "<strong>")
}
