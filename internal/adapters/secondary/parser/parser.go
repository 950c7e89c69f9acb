// Package parser turns annotated markdown notes into slide decks.
//
// A note is read line by line. Plain lines are teleprompter prose; fenced
// blocks open slides (:::slide [Label] bleed), presenter-only notes
// (:::notes [Label]) or the timer configuration (:::lecturelight). Every
// block is closed by a line holding only ":::". Blocks that are still open
// at the end of the note are dropped.
package parser

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

// Option configures a BlockParser
type Option func(*BlockParser)

// WithRenderer replaces the default goldmark renderer
func WithRenderer(r *Renderer) Option {
	return func(p *BlockParser) {
		p.renderer = r
	}
}

// WithIDGenerator replaces uuid generation for slide and media ids
func WithIDGenerator(next func() string) Option {
	return func(p *BlockParser) {
		p.newID = next
	}
}

// BlockParser implements ports.DeckParser
type BlockParser struct {
	renderer *Renderer
	newID    func() string
}

var _ ports.DeckParser = (*BlockParser)(nil)

// New creates a block parser
func New(opts ...Option) *BlockParser {
	p := &BlockParser{
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.renderer == nil {
		p.renderer = NewRenderer(nil)
	}
	return p
}

// parseState owns everything accumulated during one Parse call
type parseState struct {
	mode mode

	// teleprompter prose waiting for the next slide
	notes []string

	slideLines []string
	slideLabel string
	slideBleed bool

	speakerLines []string
	speakerLabel string

	// labelled speaker notes, attached after the scan
	labelledNotes map[string]string

	slides []entities.Slide
}

// Parse converts markdown into a deck. It never fails and never returns nil.
func (p *BlockParser) Parse(markdown string) *entities.Deck {
	deck := &entities.Deck{Slides: []entities.Slide{}}
	if markdown == "" {
		return deck
	}

	deck.TimerSettings = extractTimerSettings(markdown)

	state := &parseState{labelledNotes: make(map[string]string)}
	for _, line := range splitLines(markdown) {
		p.step(state, line)
	}

	// Open blocks at EOF are discarded; only finalized slides are kept
	p.attachLabelledNotes(state)
	deck.Slides = append(deck.Slides, state.slides...)
	return deck
}

// step dispatches one line to the transition function of the current mode
func (p *BlockParser) step(s *parseState, line string) {
	trimmed := strings.TrimSpace(line)

	switch s.mode {
	case modeNotes:
		p.stepNotes(s, line, trimmed)
	case modeSlide:
		p.stepSlide(s, line, trimmed)
	case modeConfig:
		p.stepConfig(s, trimmed)
	case modeSpeakerNotes:
		p.stepSpeakerNotes(s, line, trimmed)
	}
}

func (p *BlockParser) stepNotes(s *parseState, line, trimmed string) {
	f, ok := matchFence(trimmed)
	if !ok {
		s.notes = append(s.notes, line)
		return
	}

	switch f.opens {
	case modeSlide:
		s.slideLabel = f.label
		s.slideBleed = f.bleed
	case modeSpeakerNotes:
		s.speakerLabel = f.label
		s.speakerLines = nil
	}
	s.mode = f.opens
}

// stepConfig consumes the configuration block; its values are read from
// the whole document by extractTimerSettings
func (p *BlockParser) stepConfig(s *parseState, trimmed string) {
	if isCloser(trimmed) {
		s.mode = modeNotes
	}
}

func (p *BlockParser) stepSlide(s *parseState, line, trimmed string) {
	if isCloser(trimmed) {
		p.finalizeSlide(s)
		s.mode = modeNotes
		return
	}
	s.slideLines = append(s.slideLines, line)
}

func (p *BlockParser) stepSpeakerNotes(s *parseState, line, trimmed string) {
	if isCloser(trimmed) {
		p.finalizeSpeakerNotes(s)
		s.mode = modeNotes
		return
	}
	s.speakerLines = append(s.speakerLines, line)
}

func (p *BlockParser) finalizeSlide(s *parseState) {
	raw := strings.TrimSpace(strings.Join(s.slideLines, "\n"))

	layout := entities.LayoutStandard
	if s.slideBleed || startsWithImage(raw) {
		layout = entities.LayoutBleed
	}

	label := s.slideLabel
	if label == "" {
		label = fmt.Sprintf("Slide %d", len(s.slides)+1)
	}

	s.slides = append(s.slides, entities.Slide{
		ID:          p.newID(),
		Label:       label,
		RawMarkdown: raw,
		HTML:        p.renderer.Render(raw),
		Notes:       strings.TrimSpace(strings.Join(s.notes, "\n")),
		Media:       extractMedia(raw, p.newID),
		Layout:      layout,
	})

	s.notes = nil
	s.slideLines = nil
	s.slideLabel = ""
	s.slideBleed = false
}

// finalizeSpeakerNotes stages labelled notes, or attaches unlabelled notes
// to the last finalized slide. Unlabelled notes before any slide are dropped.
func (p *BlockParser) finalizeSpeakerNotes(s *parseState) {
	raw := strings.TrimSpace(strings.Join(s.speakerLines, "\n"))
	if raw != "" {
		rendered := p.renderer.Render(raw)
		switch {
		case s.speakerLabel != "":
			s.labelledNotes[s.speakerLabel] = rendered
		case len(s.slides) > 0:
			s.slides[len(s.slides)-1].SpeakerNotesHTML = rendered
		}
	}

	s.speakerLines = nil
	s.speakerLabel = ""
}

// attachLabelledNotes gives each staged note to the first slide whose label
// matches exactly. Unmatched labels are dropped.
func (p *BlockParser) attachLabelledNotes(s *parseState) {
	for label, rendered := range s.labelledNotes {
		for i := range s.slides {
			if s.slides[i].Label == label {
				s.slides[i].SpeakerNotesHTML = rendered
				break
			}
		}
	}
}
