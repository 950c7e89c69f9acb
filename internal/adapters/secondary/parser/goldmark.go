package parser

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer converts slide and speaker-note markdown into sanitized HTML
type Renderer struct {
	md        goldmark.Markdown
	sanitizer *Sanitizer
	cache     *RenderCache
}

// NewRenderer creates a goldmark renderer whose output always passes through
// the given sanitizer. A nil sanitizer uses NewSanitizer().
func NewRenderer(sanitizer *Sanitizer) *Renderer {
	if sanitizer == nil {
		sanitizer = NewSanitizer()
	}

	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,           // GitHub Flavored Markdown
			extension.Typographer,   // Smart punctuation
			extension.Table,         // Tables
			extension.Strikethrough, // ~~strikethrough~~
			extension.TaskList,      // - [ ] task lists
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(), // raw HTML is left to the sanitizer
		),
	)

	return &Renderer{md: md, sanitizer: sanitizer}
}

// WithCache makes the renderer reuse HTML for markdown it has seen before
func (r *Renderer) WithCache(cache *RenderCache) *Renderer {
	r.cache = cache
	return r
}

// Render returns sanitized HTML for markdown. It never fails: if goldmark
// cannot convert the input, the escaped text is returned as one paragraph.
func (r *Renderer) Render(markdown string) string {
	if markdown == "" {
		return ""
	}

	if r.cache != nil {
		if cached, ok := r.cache.Get(markdown); ok {
			return cached
		}
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(markdown), &buf); err != nil {
		return "<p>" + html.EscapeString(markdown) + "</p>"
	}

	rendered := r.sanitizer.Sanitize(buf.String())
	if r.cache != nil {
		r.cache.Set(markdown, rendered)
	}
	return rendered
}
