// Package richtext turns product descriptions into HTML that is safe to
// place into a page.
package richtext

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// A Renderer converts Markdown with inline HTML into sanitized HTML.
// It is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func New() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("loading").OnElements("img")
	policy.RequireNoFollowOnLinks(true)

	return &Renderer{
		md:     goldmark.New(goldmark.WithRendererOptions(html.WithUnsafe())),
		policy: policy,
	}
}

// Render returns the description as HTML. When the Markdown conversion
// fails the source is escaped and returned as plain text.
func (r *Renderer) Render(src string) template.HTML {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(strings.TrimSpace(r.policy.Sanitize(buf.String())))
}
