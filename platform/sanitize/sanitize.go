// Package sanitize cleans free-text fields before they are echoed back in responses.
package sanitize

import (
	"regexp"
	"strings"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", "\"",
	"&#39;", "'",
)

// StripHTML removes HTML tags, including ones hidden behind common entities.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = entityReplacer.Replace(result)
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Label strips HTML and collapses runs of whitespace into single spaces.
// Use for short identifiers such as customer names and equipment types.
func Label(s string) string {
	return strings.Join(strings.Fields(StripHTML(s)), " ")
}
