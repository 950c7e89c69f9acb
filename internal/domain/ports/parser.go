package ports

import (
	"github.com/fredcamaral/lecturelight/internal/domain/entities"
)

// DeckParser turns annotated markdown into a deck. It never fails: malformed
// input degrades to fewer slides.
type DeckParser interface {
	Parse(markdown string) *entities.Deck

	// Estimate counts the teleprompter prose and converts it to speaking time
	Estimate(markdown string, wordsPerMinute int) entities.SpeechEstimate
}

// LinkRewriter turns vault embeds into standard markdown before parsing
type LinkRewriter interface {
	Rewrite(markdown string) string
}

// LinkResolver maps an embedded file name to a URI the stage can load
type LinkResolver interface {
	// ResolveLink returns the URI for linkpath and whether the file exists
	ResolveLink(linkpath string) (uri string, ok bool)
}

// Frontmatter holds the note metadata the deck cares about
type Frontmatter struct {
	Title string   `yaml:"title"`
	Tags  []string `yaml:"tags"`
}

// FrontmatterSplitter separates a leading metadata block from a note body
type FrontmatterSplitter interface {
	Split(doc []byte) (Frontmatter, []byte)
}
