package entities

import (
	"time"
)

// StageTheme is the colour scheme of the audience display
type StageTheme string

const (
	StageThemeDark  StageTheme = "dark"
	StageThemeLight StageTheme = "light"
)

// PresenterState represents the current state of the presenter console
type PresenterState struct {
	CurrentSlide   int          `json:"currentSlide"`
	TotalSlides    int          `json:"totalSlides"`
	Label          string       `json:"label"`
	NextSlideLabel string       `json:"nextSlideLabel"`
	SessionActive  bool         `json:"sessionActive"`
	Paused         bool         `json:"paused"`
	SessionID      string       `json:"sessionId,omitempty"`
	Timer          TimerReading `json:"timer"`
	StageTheme     StageTheme   `json:"stageTheme"`
	Notes          string       `json:"notes,omitempty"`
	SpeakerNotes   string       `json:"speakerNotesHtml,omitempty"`
}

// Sync event types exchanged with stage and presenter clients
const (
	SyncSlideChange = "slide-change"
	SyncThemeChange = "theme-change"
	SyncTimer       = "timer"
	SyncNavigation  = "navigation"
	SyncMarker      = "marker"
	SyncTheme       = "theme"
)

// SyncEvent represents a synchronization event between presenter and stage views
type SyncEvent struct {
	Type      string                 `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`

	// PresenterOnly events are never delivered to stage clients
	PresenterOnly bool `json:"-"`
}

// NewSyncEvent creates a new sync event
func NewSyncEvent(eventType string, data map[string]interface{}) SyncEvent {
	return SyncEvent{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// NewSlideChangeEvent builds the stage message for the slide at index
func NewSlideChangeEvent(slide *Slide, index, total int) SyncEvent {
	return NewSyncEvent(SyncSlideChange, map[string]interface{}{
		"htmlContent": slide.HTML,
		"index":       index,
		"total":       total,
		"label":       slide.Label,
		"layout":      string(slide.Layout),
	})
}

// NewThemeChangeEvent builds the stage message for a theme toggle
func NewThemeChangeEvent(theme StageTheme) SyncEvent {
	return NewSyncEvent(SyncThemeChange, map[string]interface{}{
		"light": theme == StageThemeLight,
	})
}
