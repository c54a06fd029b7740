package security

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// MarkdownRenderer turns forum markdown into sanitized HTML.
// The goldmark instance is built once; Convert is safe for concurrent use.
type MarkdownRenderer struct {
	md        goldmark.Markdown
	sanitizer *Sanitizer
}

func NewMarkdownRenderer(sanitizer *Sanitizer) *MarkdownRenderer {
	return &MarkdownRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
			),
		),
		sanitizer: sanitizer,
	}
}

func (m *MarkdownRenderer) Render(source string) (string, error) {
	if source == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return m.sanitizer.HTML(buf.String()), nil
}
