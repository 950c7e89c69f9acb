package entities

import (
	"strings"
)

// Layout controls how the stage display frames a slide
type Layout string

const (
	// LayoutStandard renders the slide with normal padding
	LayoutStandard Layout = "standard"
	// LayoutBleed renders the slide edge to edge
	LayoutBleed Layout = "bleed"
)

// MediaType identifies the kind of media referenced by a slide
type MediaType string

const (
	// MediaTypeImage is an inline markdown image
	MediaTypeImage MediaType = "image"
)

// MediaAsset records one image reference found in a slide body
type MediaAsset struct {
	ID          string    `json:"id" yaml:"id"`
	OriginalSrc string    `json:"originalSrc" yaml:"originalSrc"`
	Type        MediaType `json:"type" yaml:"type"`
}

// Slide represents a single projected unit of a deck
type Slide struct {
	// ID is a unique identifier for the slide
	ID string `json:"id" yaml:"id"`

	// Label is the fence label or the generated "Slide N" name
	Label string `json:"label" yaml:"label"`

	// RawMarkdown is the trimmed markdown body between the fences
	RawMarkdown string `json:"rawMarkdown" yaml:"rawMarkdown"`

	// HTML is the rendered and sanitized body
	HTML string `json:"htmlContent" yaml:"htmlContent"`

	// Notes is the teleprompter text (plain lines between slides)
	Notes string `json:"notes" yaml:"notes"`

	// SpeakerNotesHTML is the rendered presenter-only notes block
	SpeakerNotesHTML string `json:"speakerNotesHtml,omitempty" yaml:"speakerNotesHtml,omitempty"`

	Media  []MediaAsset `json:"media" yaml:"media"`
	Layout Layout       `json:"layout" yaml:"layout"`
}

// HasNotes returns true if the slide carries teleprompter notes
func (s *Slide) HasNotes() bool {
	return strings.TrimSpace(s.Notes) != ""
}

// HasSpeakerNotes returns true if presenter-only notes attached to the slide
func (s *Slide) HasSpeakerNotes() bool {
	return s.SpeakerNotesHTML != ""
}

// IsBleed returns true if the slide renders edge to edge
func (s *Slide) IsBleed() bool {
	return s.Layout == LayoutBleed
}
