// Package htmlsanitize cleans HTML coming from users and from the CMS.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richPolicy   = newRichPolicy()
	strictPolicy = bluemonday.StrictPolicy()
)

func newRichPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").OnElements("p", "blockquote", "span")
	p.RequireNoFollowOnLinks(true)
	return p
}

// Sanitize keeps safe formatting markup (paragraphs, emphasis, lists,
// links, quotes) and drops scripts, handlers, and unsafe URLs. Used for
// CMS devotional bodies.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return richPolicy.Sanitize(s)
}

// PlainText strips every tag and returns unescaped text, trimmed. Used for
// text pulled out of CMS rich-text blocks.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(s)))
}

// HasMarkup reports whether stripping tags would change s. User text is
// stored as typed, so handlers reject it instead of silently rewriting it.
// Entities count as text: "a &amp; b" is not markup.
func HasMarkup(s string) bool {
	if s == "" {
		return false
	}
	return html.UnescapeString(strictPolicy.Sanitize(s)) != html.UnescapeString(s)
}
