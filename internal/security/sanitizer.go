package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer cleans user-supplied text before it is stored or rendered.
type Sanitizer struct {
	strict *bluemonday.Policy
	ugc    *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	ugc := bluemonday.UGCPolicy()
	ugc.AddTargetBlankToFullyQualifiedLinks(true)
	ugc.RequireNoReferrerOnLinks(true)

	return &Sanitizer{
		strict: bluemonday.StrictPolicy(),
		ugc:    ugc,
	}
}

// maxPlainTextPasses bounds how many entity layers PlainText peels off.
const maxPlainTextPasses = 8

// PlainText strips every tag and trims surrounding space.
// Entities are decoded so the stored text stays plain ("&" not "&amp;"),
// and the strict policy runs again over the decoded text until nothing
// changes, so encoded markup ("&lt;img&gt;") cannot come back as a tag.
// JSON encoding escapes on the way out.
func (s *Sanitizer) PlainText(in string) string {
	out := in
	for range maxPlainTextPasses {
		next := html.UnescapeString(s.strict.Sanitize(out))
		if next == out {
			return strings.TrimSpace(out)
		}
		out = next
	}
	// Still changing: keep the escaped form rather than decoded text.
	return strings.TrimSpace(s.strict.Sanitize(out))
}

// HTML keeps the user-generated-content subset (links, lists, emphasis, code).
func (s *Sanitizer) HTML(in string) string {
	return s.ugc.Sanitize(in)
}
