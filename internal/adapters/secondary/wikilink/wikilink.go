// Package wikilink rewrites embedded wikilinks into standard markdown images
package wikilink

import (
	"regexp"
	"strings"

	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

var embedRegex = regexp.MustCompile(`!\[\[([^\]|]+?)(?:\|([^\]]*))?\]\]`)

// Resolve rewrites every ![[name]] and ![[name|alt]] into ![alt](uri).
// Names the resolver cannot find become ![alt]() so the slide still lists
// the image. Plain [[links]] and standard images are left alone.
func Resolve(markdown string, resolver ports.LinkResolver) string {
	matches := embedRegex.FindAllStringSubmatchIndex(markdown, -1)
	if len(matches) == 0 {
		return markdown
	}

	var b strings.Builder
	b.Grow(len(markdown))

	last := 0
	for _, m := range matches {
		b.WriteString(markdown[last:m[0]])

		name := strings.TrimSpace(markdown[m[2]:m[3]])
		alt := name
		if m[4] >= 0 {
			alt = markdown[m[4]:m[5]]
		}

		src := ""
		if resolver != nil {
			if uri, ok := resolver.ResolveLink(name); ok {
				src = uri
			}
		}

		b.WriteString("![")
		b.WriteString(alt)
		b.WriteString("](")
		b.WriteString(src)
		b.WriteString(")")

		last = m[1]
	}
	b.WriteString(markdown[last:])

	return b.String()
}

// Rewriter implements ports.LinkRewriter over a fixed resolver
type Rewriter struct {
	resolver ports.LinkResolver
}

var _ ports.LinkRewriter = (*Rewriter)(nil)

// NewRewriter creates a rewriter. A nil resolver leaves every embed unresolved.
func NewRewriter(resolver ports.LinkResolver) *Rewriter {
	return &Rewriter{resolver: resolver}
}

// Rewrite resolves every embed in markdown
func (r *Rewriter) Rewrite(markdown string) string {
	return Resolve(markdown, r.resolver)
}
