package entities

import (
	"errors"
	"fmt"
)

// Default timer thresholds, in minutes
const (
	DefaultTargetMinutes  = 30
	DefaultWarningMinutes = 5
	DefaultWrapUpMinutes  = 2
)

// TimerSettings holds the talk length and the two alert thresholds.
// Warning and wrap-up are measured as minutes remaining.
type TimerSettings struct {
	TargetMinutes  float64 `json:"targetMinutes" yaml:"targetMinutes" toml:"target_minutes"`
	WarningMinutes float64 `json:"warningMinutes" yaml:"warningMinutes" toml:"warning_minutes"`
	WrapUpMinutes  float64 `json:"wrapUpMinutes" yaml:"wrapUpMinutes" toml:"wrap_up_minutes"`
}

// DefaultTimerSettings returns 30/5/2
func DefaultTimerSettings() TimerSettings {
	return TimerSettings{
		TargetMinutes:  DefaultTargetMinutes,
		WarningMinutes: DefaultWarningMinutes,
		WrapUpMinutes:  DefaultWrapUpMinutes,
	}
}

// Validate rejects settings a user could not have meant
func (t TimerSettings) Validate() error {
	if t.TargetMinutes <= 0 {
		return errors.New("target minutes must be positive")
	}
	if t.WarningMinutes < 0 {
		return errors.New("warning minutes must be non-negative")
	}
	if t.WrapUpMinutes < 0 {
		return errors.New("wrap-up minutes must be non-negative")
	}
	return nil
}

// Deck is the result of parsing one note
type Deck struct {
	Title      string `json:"title" yaml:"title"`
	SourcePath string `json:"sourcePath,omitempty" yaml:"sourcePath,omitempty"`

	// Tags come from the note's frontmatter
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	Slides []Slide `json:"slides" yaml:"slides"`

	// TimerSettings is nil when the note has no configuration block
	TimerSettings *TimerSettings `json:"timerSettings" yaml:"timerSettings"`
}

// ResolveTimerSettings returns the deck's own settings or the given fallback
func (d *Deck) ResolveTimerSettings(fallback TimerSettings) TimerSettings {
	if d == nil || d.TimerSettings == nil {
		return fallback
	}
	return *d.TimerSettings
}

// SlideCount returns the number of slides
func (d *Deck) SlideCount() int {
	if d == nil {
		return 0
	}
	return len(d.Slides)
}

// SlideAt returns the slide at index or an error when out of range
func (d *Deck) SlideAt(index int) (*Slide, error) {
	if index < 0 || index >= d.SlideCount() {
		return nil, fmt.Errorf("slide index %d out of range [0,%d)", index, d.SlideCount())
	}
	return &d.Slides[index], nil
}

// FindByLabel returns the index of the first slide with the given label, or -1
func (d *Deck) FindByLabel(label string) int {
	if d == nil {
		return -1
	}
	for i := range d.Slides {
		if d.Slides[i].Label == label {
			return i
		}
	}
	return -1
}

// SpeechEstimate is the expected speaking time of a note's teleprompter prose
type SpeechEstimate struct {
	Words          int     `json:"words" yaml:"words"`
	WordsPerMinute int     `json:"wordsPerMinute" yaml:"wordsPerMinute"`
	Minutes        float64 `json:"minutes" yaml:"minutes"`
	Display        string  `json:"display" yaml:"display"`
}
