// AngelaMos | 2026
// sanitize.go

package post

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips markup from titles and content. Posts are plain text:
// what remains is stored as the user typed it, entities decoded, and
// clients escape it when rendering.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

func (s *Sanitizer) Title(in string) string {
	return s.text(in)
}

func (s *Sanitizer) Content(in string) string {
	return s.text(in)
}

// text drops tags, then undoes the escaping bluemonday applies to the
// surviving text so length limits count the characters the user sent.
func (s *Sanitizer) text(in string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(in)))
}
