package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
	"github.com/fredcamaral/lecturelight/internal/domain/ports"
)

func newTestRecorder() (*SessionRecorder, *fakeClock) {
	clock := newFakeClock()
	return NewSessionRecorder(clock, sequentialIDs(), nil), clock
}

func TestSessionRecorder_Start(t *testing.T) {
	t.Run("generates an id when empty", func(t *testing.T) {
		r, _ := newTestRecorder()
		id := r.Start("", nil)

		assert.Equal(t, "id-1", id)
		assert.True(t, r.Active())

		log := r.Log()
		require.NotNil(t, log)
		assert.Equal(t, "id-1", log.SessionID)
		assert.Equal(t, "2026-03-04T09:00:00.000Z", log.StartTime)
		require.Len(t, log.Events, 1)
		assert.Equal(t, entities.EventSessionStart, log.Events[0].Type)
		assert.Equal(t, 0.0, log.Events[0].ElapsedTime)
	})

	t.Run("keeps the given id and copies the config", func(t *testing.T) {
		r, _ := newTestRecorder()
		cfg := entities.TimerSettings{TargetMinutes: 20, WarningMinutes: 4, WrapUpMinutes: 1}
		r.Start("lecture-3", &cfg)
		cfg.TargetMinutes = 99

		log := r.Log()
		assert.Equal(t, "lecture-3", log.SessionID)
		require.NotNil(t, log.Config)
		assert.Equal(t, 20.0, log.Config.TargetMinutes)
	})
}

func TestSessionRecorder_TrackingBeforeStartIsIgnored(t *testing.T) {
	r, _ := newTestRecorder()

	r.TrackSlideChange(1, "Intro")
	r.TrackMarker("oops", "")
	r.TrackAudio(true)

	assert.Nil(t, r.Log())
	assert.False(t, r.Active())

	log, ok := r.Stop()
	assert.False(t, ok)
	assert.Nil(t, log)

	_, err := r.Export()
	assert.ErrorIs(t, err, ports.ErrSessionNotStarted)
}

func TestSessionRecorder_Events(t *testing.T) {
	r, clock := newTestRecorder()
	r.Start("s1", nil)

	clock.Advance(1500 * time.Millisecond)
	r.TrackSlideChange(1, "Optics")
	clock.Advance(time.Second)
	r.TrackMarker("question from row 3", "")
	r.TrackMarker("scripted", entities.TriggerScript)
	r.TrackAudio(true)
	r.TrackAudio(false)

	log := r.Log()
	require.Len(t, log.Events, 6)

	slide := log.Events[1]
	assert.Equal(t, entities.EventSlideChange, slide.Type)
	assert.Equal(t, 1.5, slide.ElapsedTime)
	require.NotNil(t, slide.SlideIndex)
	assert.Equal(t, 1, *slide.SlideIndex)
	assert.Equal(t, "Optics", slide.Metadata.Label)
	assert.Equal(t, clock.Now().Add(-time.Second).UnixMilli(), slide.Timestamp)

	assert.Equal(t, entities.TriggerManual, log.Events[2].Metadata.TriggerType)
	assert.Equal(t, "question from row 3", log.Events[2].Metadata.Label)
	assert.Equal(t, entities.TriggerScript, log.Events[3].Metadata.TriggerType)
	assert.Equal(t, entities.EventAudioStart, log.Events[4].Type)
	assert.Equal(t, entities.EventAudioStop, log.Events[5].Type)

	ids := map[string]bool{}
	for _, e := range log.Events {
		ids[e.ID] = true
	}
	assert.Len(t, ids, 6)
}

func TestSessionRecorder_Stop(t *testing.T) {
	target := &entities.TimerSettings{TargetMinutes: 10, WarningMinutes: 2, WrapUpMinutes: 1}

	tests := []struct {
		name     string
		config   *entities.TimerSettings
		duration time.Duration
		expected entities.SessionStatus
	}{
		{"overtime", target, 10*time.Minute + time.Second, entities.SessionOvertime},
		{"exactly on target", target, 10 * time.Minute, entities.SessionOnTrack},
		{"at 80 percent", target, 8 * time.Minute, entities.SessionOnTrack},
		{"under time", target, 7*time.Minute + 59*time.Second, entities.SessionUnderTime},
		{"no config", nil, time.Minute, entities.SessionOnTrack},
		{"zero target", &entities.TimerSettings{}, time.Second, entities.SessionOvertime},
		{"zero target and zero duration", &entities.TimerSettings{}, 0, entities.SessionOnTrack},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, clock := newTestRecorder()
			r.Start("s1", tt.config)
			clock.Advance(tt.duration)

			log, ok := r.Stop()
			require.True(t, ok)
			require.NotNil(t, log.Summary)
			assert.Equal(t, tt.expected, log.Summary.Status)
			assert.Equal(t, tt.duration.Seconds(), log.Summary.TotalDurationSeconds)
		})
	}

	t.Run("counts slides and markers", func(t *testing.T) {
		r, clock := newTestRecorder()
		r.Start("s1", target)
		r.TrackSlideChange(1, "")
		r.TrackSlideChange(2, "")
		r.TrackSlideChange(1, "")
		r.TrackMarker("m", "")
		r.TrackAudio(true)
		clock.Advance(9 * time.Minute)

		log, _ := r.Stop()
		assert.Equal(t, 3, log.Summary.SlideCount)
		assert.Equal(t, 1, log.Summary.MarkerCount)
		assert.Equal(t, entities.EventSessionStop, log.Events[len(log.Events)-1].Type)
	})

	t.Run("finalizes exactly once", func(t *testing.T) {
		r, clock := newTestRecorder()
		r.Start("s1", target)
		clock.Advance(5 * time.Minute)
		first, _ := r.Stop()

		clock.Advance(10 * time.Minute)
		r.TrackMarker("late", "")
		second, ok := r.Stop()

		require.True(t, ok)
		assert.False(t, r.Active())
		assert.Equal(t, first, second)
		assert.Equal(t, 300.0, second.Summary.TotalDurationSeconds)
		assert.Equal(t, 0, second.Summary.MarkerCount)
	})

	t.Run("returned log is a copy", func(t *testing.T) {
		r, _ := newTestRecorder()
		r.Start("s1", nil)
		log, _ := r.Stop()
		log.Events = nil
		log.Summary.SlideCount = 42

		again := r.Log()
		assert.Len(t, again.Events, 2)
		assert.Equal(t, 0, again.Summary.SlideCount)
	})
}

func TestSessionRecorder_Export(t *testing.T) {
	r, clock := newTestRecorder()
	r.Start("s1", &entities.TimerSettings{TargetMinutes: 1})
	clock.Advance(30 * time.Second)
	r.Stop()

	data, err := r.Export()
	require.NoError(t, err)

	assert.Contains(t, string(data), "\n  \"sessionId\": \"s1\"")

	var decoded entities.SessionLog
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "s1", decoded.SessionID)
	assert.Equal(t, entities.SessionUnderTime, decoded.Summary.Status)
	assert.Len(t, decoded.Events, 2)
}

// steppingClock advances by step on every read
type steppingClock struct {
	*fakeClock
	step time.Duration
}

func (c *steppingClock) Now() time.Time {
	c.Advance(c.step)
	return c.fakeClock.Now()
}

func TestSessionRecorder_StopUsesOneInstant(t *testing.T) {
	clock := &steppingClock{fakeClock: newFakeClock(), step: 7 * time.Millisecond}
	r := NewSessionRecorder(clock, sequentialIDs(), nil)
	r.Start("s1", nil)
	r.TrackMarker("m", "")

	log, ok := r.Stop()
	require.True(t, ok)

	stop := log.Events[len(log.Events)-1]
	require.Equal(t, entities.EventSessionStop, stop.Type)
	assert.Equal(t, stop.ElapsedTime, log.Summary.TotalDurationSeconds)
}
