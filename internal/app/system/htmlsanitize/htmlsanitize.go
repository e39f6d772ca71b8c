// Package htmlsanitize cleans user-supplied text before it is stored.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every element and attribute. Policies are safe for
// concurrent use once built.
var strict = bluemonday.StrictPolicy()

// PlainText strips all markup from s, decodes the entities bluemonday
// leaves behind and trims surrounding whitespace. The content of script
// and style elements is dropped entirely.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
