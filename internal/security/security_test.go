package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainText_StripsTags(t *testing.T) {
	s := NewSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"script removed", `Pray<script>alert('x')</script> daily`, "Pray daily"},
		{"markup dropped", `<b>Grace</b> &amp; peace`, "Grace & peace"},
		{"trimmed", "  Psalm 23  ", "Psalm 23"},
		{"encoded tag not revived", "&lt;img src=x onerror=alert(1)&gt;hello", "hello"},
		{"double encoded tag not revived", "&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;Amen", "Amen"},
		{"lone angle bracket kept", "2 < 3", "2 < 3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.PlainText(tt.input))
		})
	}
}

func TestMarkdownRenderer(t *testing.T) {
	m := NewMarkdownRenderer(NewSanitizer())

	out, err := m.Render("**Faith** comes by hearing\n\n<script>alert(1)</script>\n\n[link](javascript:alert(1))")
	require.NoError(t, err)

	assert.Contains(t, out, "<strong>Faith</strong>")
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "javascript:")

	empty, err := m.Render("")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr string
	}{
		{"https://feeds.example.org/rss.xml", ""},
		{"", "empty URL"},
		{"ftp://example.org/feed", "disallowed scheme"},
		{"http://127.0.0.1/feed", "blocked IP"},
		{"http://10.1.2.3/feed", "blocked IP"},
		{"http://[::1]/feed", "blocked IP"},
		{"http://localhost:8080/feed", "blocked host"},
		{"https:///nohost", "empty host"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := ValidateURL(tt.url)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
		})
	}
}
