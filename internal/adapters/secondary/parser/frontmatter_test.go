package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFrontmatter(t *testing.T) {
	t.Run("yaml block", func(t *testing.T) {
		doc := []byte("---\ntitle: Lecture 3\ntags:\n  - physics\n  - optics\n---\n:::slide [A]\nbody\n:::\n")

		meta, body := SplitFrontmatter(doc)

		assert.Equal(t, "Lecture 3", meta.Title)
		assert.Equal(t, []string{"physics", "optics"}, meta.Tags)
		assert.Contains(t, string(body), ":::slide [A]")
		assert.NotContains(t, string(body), "title:")
	})

	t.Run("single tag", func(t *testing.T) {
		meta, _ := SplitFrontmatter([]byte("---\ntags: draft\n---\nbody\n"))
		assert.Equal(t, []string{"draft"}, meta.Tags)
	})

	t.Run("no frontmatter", func(t *testing.T) {
		doc := []byte("# Just a note\n")
		meta, body := SplitFrontmatter(doc)
		assert.Empty(t, meta.Title)
		assert.Equal(t, doc, body)
	})

	t.Run("invalid yaml leaves the note untouched", func(t *testing.T) {
		doc := []byte("---\ntitle: [unclosed\n---\nbody\n")
		meta, body := SplitFrontmatter(doc)
		assert.Empty(t, meta.Title)
		assert.Equal(t, doc, body)
	})

	t.Run("splitter adapter", func(t *testing.T) {
		meta, body := FrontmatterSplitter{}.Split([]byte("---\ntitle: T\n---\nrest"))
		require.Equal(t, "T", meta.Title)
		assert.Contains(t, string(body), "rest")
	})
}
