package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

// isoMillis matches the browser's Date.toISOString output
const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// underTimeRatio is the share of the target below which a session ran short
const underTimeRatio = 0.8

// SessionRecorder accumulates the performance events of one session. A log
// is created by Start, appended to by the Track methods and finalized once
// by Stop, after which it is read-only.
type SessionRecorder struct {
	mu      sync.Mutex
	clock   ports.TimeProvider
	newID   func() string
	logger  *slog.Logger
	log     *entities.SessionLog
	started time.Time
}

// NewSessionRecorder creates a recorder. A nil clock uses wall time and a
// nil id generator uses random UUIDs.
func NewSessionRecorder(clock ports.TimeProvider, newID func() string, logger *slog.Logger) *SessionRecorder {
	if clock == nil {
		clock = ports.NewRealTimeProvider()
	}
	if newID == nil {
		newID = uuid.NewString
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionRecorder{
		clock:  clock,
		newID:  newID,
		logger: logger.With("service", "session"),
	}
}

// Start opens a new session log, replacing any previous one. An empty id is
// replaced by a generated one. The id in use is returned.
func (r *SessionRecorder) Start(sessionID string, config *entities.TimerSettings) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if sessionID == "" {
		sessionID = r.newID()
	}

	var cfg *entities.TimerSettings
	if config != nil {
		c := *config
		cfg = &c
	}

	r.started = r.clock.Now()
	r.log = &entities.SessionLog{
		SessionID: sessionID,
		StartTime: r.started.UTC().Format(isoMillis),
		Config:    cfg,
		Events:    []entities.PerformanceEvent{},
	}
	r.appendLocked(entities.EventSessionStart, nil, nil)

	r.logger.Info("session started", slog.String("session_id", sessionID))
	return sessionID
}

// Active returns true between Start and Stop
func (r *SessionRecorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeLocked()
}

func (r *SessionRecorder) activeLocked() bool {
	return r.log != nil && !r.log.IsFinalized()
}

// AddEvent appends an event. It is a no-op unless a session is active.
func (r *SessionRecorder) AddEvent(eventType entities.EventType, slideIndex *int, metadata *entities.EventMetadata) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.activeLocked() {
		return
	}
	r.appendLocked(eventType, slideIndex, metadata)
}

// TrackSlideChange records a move to the slide at index
func (r *SessionRecorder) TrackSlideChange(index int, label string) {
	var meta *entities.EventMetadata
	if label != "" {
		meta = &entities.EventMetadata{Label: label}
	}
	r.AddEvent(entities.EventSlideChange, &index, meta)
}

// TrackMarker records a marker. An empty trigger means manual.
func (r *SessionRecorder) TrackMarker(label string, trigger entities.TriggerType) {
	if trigger == "" {
		trigger = entities.TriggerManual
	}
	r.AddEvent(entities.EventManualMarker, nil, &entities.EventMetadata{TriggerType: trigger, Label: label})
}

// TrackAudio records the start or end of audio capture
func (r *SessionRecorder) TrackAudio(started bool) {
	if started {
		r.AddEvent(entities.EventAudioStart, nil, nil)
		return
	}
	r.AddEvent(entities.EventAudioStop, nil, nil)
}

// Stop finalizes the session and returns a copy of its log. Stopping again
// returns the finalized log unchanged. The bool is false when no session
// was ever started.
func (r *SessionRecorder) Stop() (*entities.SessionLog, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.log == nil {
		return nil, false
	}
	if r.log.IsFinalized() {
		return copyLog(r.log), true
	}

	now := r.clock.Now()
	r.appendAtLocked(now, entities.EventSessionStop, nil, nil)
	duration := r.elapsedAt(now)

	r.log.Summary = &entities.SessionSummary{
		TotalDurationSeconds: duration,
		SlideCount:           r.log.CountEvents(entities.EventSlideChange),
		MarkerCount:          r.log.CountEvents(entities.EventManualMarker),
		Status:               classifySession(duration, r.log.Config),
	}

	r.logger.Info("session stopped",
		slog.String("session_id", r.log.SessionID),
		slog.Float64("duration_seconds", duration),
		slog.String("status", string(r.log.Summary.Status)))

	return copyLog(r.log), true
}

// Log returns a copy of the current log, or nil before the first Start
func (r *SessionRecorder) Log() *entities.SessionLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyLog(r.log)
}

// Export renders the current log as indented JSON
func (r *SessionRecorder) Export() ([]byte, error) {
	log := r.Log()
	if log == nil {
		return nil, ports.ErrSessionNotStarted
	}
	return ExportSessionLog(log)
}

// ExportSessionLog renders a log as indented JSON
func ExportSessionLog(log *entities.SessionLog) ([]byte, error) {
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding session log: %w", err)
	}
	return data, nil
}

func (r *SessionRecorder) appendLocked(eventType entities.EventType, slideIndex *int, metadata *entities.EventMetadata) {
	r.appendAtLocked(r.clock.Now(), eventType, slideIndex, metadata)
}

func (r *SessionRecorder) appendAtLocked(now time.Time, eventType entities.EventType, slideIndex *int, metadata *entities.EventMetadata) {
	event := entities.PerformanceEvent{
		ID:          r.newID(),
		Type:        eventType,
		Timestamp:   now.UnixMilli(),
		ElapsedTime: r.elapsedAt(now),
		SlideIndex:  slideIndex,
		Metadata:    metadata,
	}
	r.log.Events = append(r.log.Events, event)
}

// elapsedAt returns seconds since start at millisecond precision
func (r *SessionRecorder) elapsedAt(now time.Time) float64 {
	return float64(now.Sub(r.started).Milliseconds()) / 1000
}

// classifySession compares a duration against the configured target. A
// session without timer settings is on track; a zero target makes any
// positive duration overtime.
func classifySession(durationSeconds float64, config *entities.TimerSettings) entities.SessionStatus {
	if config == nil {
		return entities.SessionOnTrack
	}
	target := config.TargetMinutes * 60
	switch {
	case durationSeconds > target:
		return entities.SessionOvertime
	case durationSeconds < target*underTimeRatio:
		return entities.SessionUnderTime
	default:
		return entities.SessionOnTrack
	}
}

func copyLog(log *entities.SessionLog) *entities.SessionLog {
	if log == nil {
		return nil
	}
	c := *log
	c.Events = append([]entities.PerformanceEvent{}, log.Events...)
	if log.Config != nil {
		cfg := *log.Config
		c.Config = &cfg
	}
	if log.Summary != nil {
		sum := *log.Summary
		c.Summary = &sum
	}
	return &c
}
