// Package sanitize restricts changelog rich text to a small allowlist of tags.
package sanitize

import (
	"html"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// AllowedElements are the tags kept in changelog descriptions. Anything else
// is unwrapped and its children hoisted into the parent.
var AllowedElements = []string{
	"p", "br", "strong", "b", "em", "i", "u",
	"ul", "ol", "li", "code", "pre",
	"h1", "h2", "h3", "blockquote", "div", "span", "a",
}

// SafeHref matches the href values an anchor may keep.
var SafeHref = regexp.MustCompile(`(?i)^(https?:|mailto:|#)`)

// Sanitizer is safe for concurrent use.
type Sanitizer struct {
	policy *bluemonday.Policy
	text   *bluemonday.Policy
}

func New() *Sanitizer {
	p := bluemonday.NewPolicy()
	p.AllowElements(AllowedElements...)
	p.AllowAttrs("href").Matching(SafeHref).OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.AllowRelativeURLs(true)
	// an anchor whose href was dropped stays in place
	p.AllowNoAttrs().OnElements("a")

	return &Sanitizer{policy: p, text: bluemonday.StrictPolicy()}
}

// Sanitize returns html limited to AllowedElements with every attribute but a
// safe anchor href removed. Script and style bodies are dropped with their tags.
func (s *Sanitizer) Sanitize(fragment string) string {
	if fragment == "" {
		return ""
	}
	return s.policy.Sanitize(fragment)
}

// PlainText strips all markup and returns the visible text.
func (s *Sanitizer) PlainText(fragment string) string {
	if fragment == "" {
		return ""
	}
	return html.UnescapeString(s.text.Sanitize(fragment))
}
