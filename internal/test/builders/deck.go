package builders

import (
	"fmt"
	"strconv"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
)

// DeckBuilder helps build Deck entities for testing
type DeckBuilder struct {
	deck *entities.Deck
}

// NewDeckBuilder creates a new deck builder with sensible defaults
func NewDeckBuilder() *DeckBuilder {
	return &DeckBuilder{
		deck: &entities.Deck{
			Title:      "Test Lecture",
			SourcePath: "Lectures/Test Lecture.md",
			Slides:     []entities.Slide{},
		},
	}
}

// WithTitle sets the deck title
func (b *DeckBuilder) WithTitle(title string) *DeckBuilder {
	b.deck.Title = title
	return b
}

// WithSourcePath sets the note path the deck was parsed from
func (b *DeckBuilder) WithSourcePath(path string) *DeckBuilder {
	b.deck.SourcePath = path
	return b
}

// WithSlide adds a single slide to the deck
func (b *DeckBuilder) WithSlide(slide entities.Slide) *DeckBuilder {
	b.deck.Slides = append(b.deck.Slides, slide)
	return b
}

// WithSlides adds a default slide per label
func (b *DeckBuilder) WithSlides(labels ...string) *DeckBuilder {
	for _, label := range labels {
		index := len(b.deck.Slides)
		b.deck.Slides = append(b.deck.Slides, NewSlideBuilder().
			WithID("slide-"+strconv.Itoa(index+1)).
			WithLabel(label).
			Build())
	}
	return b
}

// WithSlideCount adds count default slides labelled "Slide N"
func (b *DeckBuilder) WithSlideCount(count int) *DeckBuilder {
	for i := 0; i < count; i++ {
		b.WithSlides(fmt.Sprintf("Slide %d", len(b.deck.Slides)+1))
	}
	return b
}

// WithTimerSettings gives the deck its own timer block
func (b *DeckBuilder) WithTimerSettings(target, warning, wrapUp float64) *DeckBuilder {
	b.deck.TimerSettings = &entities.TimerSettings{
		TargetMinutes:  target,
		WarningMinutes: warning,
		WrapUpMinutes:  wrapUp,
	}
	return b
}

// Build creates the final Deck entity
func (b *DeckBuilder) Build() *entities.Deck {
	deck := &entities.Deck{
		Title:      b.deck.Title,
		SourcePath: b.deck.SourcePath,
		Slides:     make([]entities.Slide, 0, len(b.deck.Slides)),
	}
	for _, slide := range b.deck.Slides {
		slide.Media = append([]entities.MediaAsset{}, slide.Media...)
		deck.Slides = append(deck.Slides, slide)
	}
	if b.deck.TimerSettings != nil {
		settings := *b.deck.TimerSettings
		deck.TimerSettings = &settings
	}
	return deck
}

// SlideBuilder helps build Slide entities for testing
type SlideBuilder struct {
	slide *entities.Slide
}

// NewSlideBuilder creates a new slide builder with sensible defaults
func NewSlideBuilder() *SlideBuilder {
	return (&SlideBuilder{
		slide: &entities.Slide{
			ID:     "slide-1",
			Media:  []entities.MediaAsset{},
			Layout: entities.LayoutStandard,
		},
	}).WithLabel("Test Slide")
}

// WithID sets the slide ID
func (b *SlideBuilder) WithID(id string) *SlideBuilder {
	b.slide.ID = id
	return b
}

// WithLabel sets the label, body, HTML and teleprompter notes from label
func (b *SlideBuilder) WithLabel(label string) *SlideBuilder {
	b.slide.Label = label
	b.slide.RawMarkdown = "# " + label
	b.slide.HTML = "<h1>" + label + "</h1>"
	b.slide.Notes = "Talk about " + label
	return b
}

// WithHTML sets the rendered slide body
func (b *SlideBuilder) WithHTML(html string) *SlideBuilder {
	b.slide.HTML = html
	return b
}

// WithNotes sets the teleprompter notes
func (b *SlideBuilder) WithNotes(notes string) *SlideBuilder {
	b.slide.Notes = notes
	return b
}

// WithSpeakerNotes sets the presenter-only notes HTML
func (b *SlideBuilder) WithSpeakerNotes(html string) *SlideBuilder {
	b.slide.SpeakerNotesHTML = html
	return b
}

// WithImage adds an image reference
func (b *SlideBuilder) WithImage(src string) *SlideBuilder {
	b.slide.Media = append(b.slide.Media, entities.MediaAsset{
		ID:          b.slide.ID + "-media-" + strconv.Itoa(len(b.slide.Media)+1),
		OriginalSrc: src,
		Type:        entities.MediaTypeImage,
	})
	return b
}

// Bleed renders the slide edge to edge
func (b *SlideBuilder) Bleed() *SlideBuilder {
	b.slide.Layout = entities.LayoutBleed
	return b
}

// Build creates the final Slide entity
func (b *SlideBuilder) Build() entities.Slide {
	slide := *b.slide
	slide.Media = append([]entities.MediaAsset{}, b.slide.Media...)
	return slide
}

// Common decks for testing

// MinimalDeck creates a one-slide deck without timer settings
func MinimalDeck() *entities.Deck {
	return NewDeckBuilder().
		WithTitle("Minimal").
		WithSlideCount(1).
		Build()
}

// LargeDeck creates a deck with many slides for navigation tests
func LargeDeck() *entities.Deck {
	return NewDeckBuilder().
		WithTitle("Large Lecture").
		WithSlideCount(50).
		WithTimerSettings(50, 10, 5).
		Build()
}
