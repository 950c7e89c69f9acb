package entities

// EventType identifies a performance event in a session log
type EventType string

const (
	EventSlideChange  EventType = "SLIDE_CHANGE"
	EventManualMarker EventType = "MANUAL_MARKER"
	EventAudioStart   EventType = "AUDIO_START"
	EventAudioStop    EventType = "AUDIO_STOP"
	EventSessionStart EventType = "SESSION_START"
	EventSessionStop  EventType = "SESSION_STOP"
)

// TriggerType records what produced a marker
type TriggerType string

const (
	TriggerManual TriggerType = "manual"
	TriggerScript TriggerType = "script"
)

// SessionStatus classifies a finished session against its target
type SessionStatus string

const (
	SessionUnderTime SessionStatus = "under-time"
	SessionOnTrack   SessionStatus = "on-track"
	SessionOvertime  SessionStatus = "overtime"
)

// EventMetadata carries optional event details
type EventMetadata struct {
	TriggerType TriggerType `json:"triggerType,omitempty"`
	Label       string      `json:"label,omitempty"`
}

// PerformanceEvent is one entry of a session log
type PerformanceEvent struct {
	ID   string    `json:"id"`
	Type EventType `json:"type"`

	// Timestamp is wall-clock time in Unix milliseconds
	Timestamp int64 `json:"timestamp"`

	// ElapsedTime is seconds since session start
	ElapsedTime float64 `json:"elapsedTime"`

	SlideIndex *int           `json:"slideIndex,omitempty"`
	Metadata   *EventMetadata `json:"metadata,omitempty"`
}

// SessionSummary is computed once when a session stops
type SessionSummary struct {
	TotalDurationSeconds float64       `json:"totalDurationSeconds"`
	SlideCount           int           `json:"slideCount"`
	MarkerCount          int           `json:"markerCount"`
	Status               SessionStatus `json:"status"`
}

// SessionLog is the exported record of one rehearsal or delivery
type SessionLog struct {
	SessionID string             `json:"sessionId"`
	StartTime string             `json:"startTime"`
	Config    *TimerSettings     `json:"config,omitempty"`
	Summary   *SessionSummary    `json:"summary,omitempty"`
	Events    []PerformanceEvent `json:"events"`
}

// IsFinalized returns true once the summary has been computed
func (l *SessionLog) IsFinalized() bool {
	return l != nil && l.Summary != nil
}

// CountEvents returns how many events of the given type the log holds
func (l *SessionLog) CountEvents(t EventType) int {
	if l == nil {
		return 0
	}
	n := 0
	for i := range l.Events {
		if l.Events[i].Type == t {
			n++
		}
	}
	return n
}

// SessionRecord is the persisted summary of a saved session
type SessionRecord struct {
	ID              string        `json:"id"`
	DeckSlug        string        `json:"deckSlug"`
	DeckTitle       string        `json:"deckTitle"`
	StartedAt       string        `json:"startedAt"`
	DurationSeconds float64       `json:"durationSeconds"`
	SlideCount      int           `json:"slideCount"`
	MarkerCount     int           `json:"markerCount"`
	Status          SessionStatus `json:"status"`
	AudioPath       string        `json:"audioPath"`
	LogPath         string        `json:"logPath"`
}
