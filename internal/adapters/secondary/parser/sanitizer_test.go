package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizer_Sanitize(t *testing.T) {
	s := NewSanitizer()

	tests := []struct {
		name        string
		input       string
		contains    []string
		notContains []string
	}{
		{
			name:        "strips script elements",
			input:       `<p>hi</p><script>alert('x')</script>`,
			contains:    []string{"<p>hi</p>"},
			notContains: []string{"<script", "alert"},
		},
		{
			name:        "strips event handlers",
			input:       `<img src="a.png" alt="a" onerror="alert(1)">`,
			contains:    []string{`src="a.png"`, `alt="a"`},
			notContains: []string{"onerror"},
		},
		{
			name:        "drops javascript urls",
			input:       `<a href="javascript:alert(1)">x</a>`,
			notContains: []string{"javascript:"},
		},
		{
			name:     "forces rel on links",
			input:    `<a href="https://example.com">site</a>`,
			contains: []string{`href="https://example.com"`, `rel="noopener noreferrer"`, ">site</a>"},
		},
		{
			name:        "replaces an existing rel",
			input:       `<p><a href="/vault/x.png" rel="opener">x</a></p>`,
			contains:    []string{`rel="noopener noreferrer"`},
			notContains: []string{`rel="opener"`},
		},
		{
			name:     "keeps code language classes",
			input:    `<pre><code class="language-go">fmt.Println()</code></pre>`,
			contains: []string{`class="language-go"`},
		},
		{
			name:        "drops arbitrary classes on code",
			input:       `<code class="evil">x</code>`,
			notContains: []string{"evil"},
		},
		{
			name:     "keeps task list checkboxes",
			input:    `<ul><li><input checked="" disabled="" type="checkbox"> done</li></ul>`,
			contains: []string{`type="checkbox"`, "checked"},
		},
		{
			name:        "drops iframes and styles",
			input:       `<iframe src="https://evil"></iframe><p style="color:red">x</p>`,
			contains:    []string{"<p>x</p>"},
			notContains: []string{"iframe", "style"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := s.Sanitize(tt.input)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}

func TestSanitizer_EveryLinkGetsRel(t *testing.T) {
	s := NewSanitizer()

	out := s.Sanitize(`<ul><li><a href="/a">a</a></li><li><a href="https://b.example">b</a></li></ul><p><a href="mailto:x@example.com">c</a></p>`)

	assert.Equal(t, 3, strings.Count(out, "<a "))
	assert.Equal(t, 3, strings.Count(out, `rel="noopener noreferrer"`))
}

func TestRenderer_Render(t *testing.T) {
	r := NewRenderer(nil)

	t.Run("empty input", func(t *testing.T) {
		assert.Equal(t, "", r.Render(""))
	})

	t.Run("gfm features", func(t *testing.T) {
		out := r.Render("# Title\n\n| a | b |\n|---|---|\n| 1 | 2 |\n\n~~gone~~\n\n- [x] done")
		assert.Contains(t, out, `<h1 id="title">Title</h1>`)
		assert.Contains(t, out, "<table>")
		assert.Contains(t, out, "<del>gone</del>")
		assert.Contains(t, out, `type="checkbox"`)
	})

	t.Run("autolinks carry rel", func(t *testing.T) {
		out := r.Render("see https://example.com")
		assert.Contains(t, out, `href="https://example.com"`)
		assert.Contains(t, out, `rel="noopener noreferrer"`)
	})

	t.Run("raw html is sanitized", func(t *testing.T) {
		out := r.Render("<div onclick=\"x()\">hi</div>")
		assert.NotContains(t, out, "onclick")
		assert.Contains(t, out, "hi")
	})
}
