// Package sanitize cleans seller-supplied HTML before it is rendered.
package sanitize

import (
	"html/template"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer turns untrusted HTML into markup safe to embed in a page.
// It is safe for concurrent use.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// New builds the product description policy: basic text formatting, lists,
// headings, https images and absolute links that open in a new tab.
func New() *Sanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"h3", "h4", "blockquote",
		"strong", "em", "b", "i", "u",
	)

	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowURLSchemeWithCustomPolicy("https", func(u *url.URL) bool {
		return u.Host != ""
	})

	return &Sanitizer{policy: p}
}

// Sanitize returns the cleaned HTML.
func (s *Sanitizer) Sanitize(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	return s.policy.Sanitize(raw)
}

// HTML sanitizes raw and marks the result as trusted for html/template.
func (s *Sanitizer) HTML(raw string) template.HTML {
	return template.HTML(s.Sanitize(raw))
}
