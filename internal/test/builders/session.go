package builders

import (
	"strconv"
	"time"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
)

// SessionLogBuilder helps build SessionLog entities for testing. Events are
// stamped relative to the start time.
type SessionLogBuilder struct {
	log   *entities.SessionLog
	start time.Time
}

// NewSessionLogBuilder creates a builder for an open session with the
// default timer settings
func NewSessionLogBuilder() *SessionLogBuilder {
	start := time.Date(2026, 3, 4, 9, 5, 7, 0, time.UTC)
	settings := entities.DefaultTimerSettings()
	return &SessionLogBuilder{
		start: start,
		log: &entities.SessionLog{
			SessionID: "session-1",
			StartTime: start.Format("2006-01-02T15:04:05.000Z07:00"),
			Config:    &settings,
			Events:    []entities.PerformanceEvent{},
		},
	}
}

// WithID sets the session id
func (b *SessionLogBuilder) WithID(id string) *SessionLogBuilder {
	b.log.SessionID = id
	return b
}

// WithStart sets the wall-clock start time
func (b *SessionLogBuilder) WithStart(start time.Time) *SessionLogBuilder {
	b.start = start.UTC()
	b.log.StartTime = b.start.Format("2006-01-02T15:04:05.000Z07:00")
	return b
}

// WithSettings replaces the timer settings recorded with the session
func (b *SessionLogBuilder) WithSettings(settings entities.TimerSettings) *SessionLogBuilder {
	b.log.Config = &settings
	return b
}

// WithSlideChange records a slide change at elapsed seconds
func (b *SessionLogBuilder) WithSlideChange(elapsed float64, index int, label string) *SessionLogBuilder {
	return b.event(entities.EventSlideChange, elapsed, &index, &entities.EventMetadata{Label: label})
}

// WithMarker records a manual marker at elapsed seconds
func (b *SessionLogBuilder) WithMarker(elapsed float64, label string) *SessionLogBuilder {
	return b.event(entities.EventManualMarker, elapsed, nil, &entities.EventMetadata{
		TriggerType: entities.TriggerManual,
		Label:       label,
	})
}

// Finished adds the summary a stopped session carries
func (b *SessionLogBuilder) Finished(durationSeconds float64, status entities.SessionStatus) *SessionLogBuilder {
	b.log.Summary = &entities.SessionSummary{
		TotalDurationSeconds: durationSeconds,
		SlideCount:           b.log.CountEvents(entities.EventSlideChange),
		MarkerCount:          b.log.CountEvents(entities.EventManualMarker),
		Status:               status,
	}
	return b
}

func (b *SessionLogBuilder) event(t entities.EventType, elapsed float64, index *int, meta *entities.EventMetadata) *SessionLogBuilder {
	at := b.start.Add(time.Duration(elapsed * float64(time.Second)))
	b.log.Events = append(b.log.Events, entities.PerformanceEvent{
		ID:          b.log.SessionID + "-event-" + strconv.Itoa(len(b.log.Events)+1),
		Type:        t,
		Timestamp:   at.UnixMilli(),
		ElapsedTime: elapsed,
		SlideIndex:  index,
		Metadata:    meta,
	})
	return b
}

// Build creates the final SessionLog entity
func (b *SessionLogBuilder) Build() *entities.SessionLog {
	log := *b.log
	log.Events = append([]entities.PerformanceEvent{}, b.log.Events...)
	if b.log.Config != nil {
		settings := *b.log.Config
		log.Config = &settings
	}
	if b.log.Summary != nil {
		summary := *b.log.Summary
		log.Summary = &summary
	}
	return &log
}

// FinishedSession creates an on-track session with two slides and a marker
func FinishedSession() *entities.SessionLog {
	return NewSessionLogBuilder().
		WithSlideChange(0, 0, "Intro").
		WithSlideChange(95.5, 1, "Lenses").
		WithMarker(120, "Demo").
		Finished(1512.5, entities.SessionOnTrack).
		Build()
}
