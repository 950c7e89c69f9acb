package builders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
)

func TestDeckBuilder(t *testing.T) {
	t.Run("builds deck with defaults", func(t *testing.T) {
		deck := NewDeckBuilder().Build()

		assert.Equal(t, "Test Lecture", deck.Title)
		assert.Equal(t, "Lectures/Test Lecture.md", deck.SourcePath)
		assert.Empty(t, deck.Slides)
		assert.NotNil(t, deck.Slides)
		assert.Nil(t, deck.TimerSettings)
	})

	t.Run("builds deck with custom values", func(t *testing.T) {
		deck := NewDeckBuilder().
			WithTitle("Optics").
			WithSourcePath("Optics.md").
			WithSlides("Intro", "Lenses").
			WithSlideCount(2).
			WithTimerSettings(45, 10, 3).
			Build()

		assert.Equal(t, "Optics", deck.Title)
		assert.Equal(t, "Optics.md", deck.SourcePath)
		require.Len(t, deck.Slides, 4)
		assert.Equal(t, "Intro", deck.Slides[0].Label)
		assert.Equal(t, "slide-2", deck.Slides[1].ID)
		assert.Equal(t, "Slide 3", deck.Slides[2].Label)
		assert.Equal(t, "Slide 4", deck.Slides[3].Label)
		require.NotNil(t, deck.TimerSettings)
		assert.Equal(t, entities.TimerSettings{TargetMinutes: 45, WarningMinutes: 10, WrapUpMinutes: 3}, *deck.TimerSettings)
	})

	t.Run("built decks are independent", func(t *testing.T) {
		b := NewDeckBuilder().WithSlides("A").WithTimerSettings(30, 5, 2)
		first := b.Build()
		first.Slides[0].Label = "changed"
		first.TimerSettings.TargetMinutes = 99

		second := b.Build()
		assert.Equal(t, "A", second.Slides[0].Label)
		assert.Equal(t, 30.0, second.TimerSettings.TargetMinutes)
	})

	t.Run("helpers", func(t *testing.T) {
		assert.Equal(t, 1, MinimalDeck().SlideCount())
		large := LargeDeck()
		assert.Equal(t, 50, large.SlideCount())
		assert.Equal(t, 49, large.FindByLabel("Slide 50"))
		assert.Equal(t, 50.0, large.ResolveTimerSettings(entities.DefaultTimerSettings()).TargetMinutes)
	})
}

func TestSlideBuilder(t *testing.T) {
	t.Run("builds slide with defaults", func(t *testing.T) {
		slide := NewSlideBuilder().Build()

		assert.Equal(t, "slide-1", slide.ID)
		assert.Equal(t, "Test Slide", slide.Label)
		assert.Equal(t, "# Test Slide", slide.RawMarkdown)
		assert.Equal(t, "<h1>Test Slide</h1>", slide.HTML)
		assert.True(t, slide.HasNotes())
		assert.False(t, slide.HasSpeakerNotes())
		assert.False(t, slide.IsBleed())
		assert.Empty(t, slide.Media)
	})

	t.Run("builds slide with custom values", func(t *testing.T) {
		slide := NewSlideBuilder().
			WithID("s9").
			WithLabel("Lenses").
			WithHTML("<h2>Lenses</h2>").
			WithNotes("Converging first").
			WithSpeakerNotes("<p>bring the lens</p>").
			WithImage("/vault/lens.png").
			Bleed().
			Build()

		assert.Equal(t, "s9", slide.ID)
		assert.Equal(t, "Lenses", slide.Label)
		assert.Equal(t, "<h2>Lenses</h2>", slide.HTML)
		assert.Equal(t, "Converging first", slide.Notes)
		assert.True(t, slide.HasSpeakerNotes())
		assert.True(t, slide.IsBleed())
		require.Len(t, slide.Media, 1)
		assert.Equal(t, entities.MediaAsset{ID: "s9-media-1", OriginalSrc: "/vault/lens.png", Type: entities.MediaTypeImage}, slide.Media[0])
	})
}

func TestSessionLogBuilder(t *testing.T) {
	t.Run("open session", func(t *testing.T) {
		log := NewSessionLogBuilder().Build()

		assert.Equal(t, "session-1", log.SessionID)
		assert.Equal(t, "2026-03-04T09:05:07.000Z", log.StartTime)
		assert.False(t, log.IsFinalized())
		require.NotNil(t, log.Config)
		assert.Equal(t, entities.DefaultTimerSettings(), *log.Config)
		assert.Empty(t, log.Events)
	})

	t.Run("events and summary", func(t *testing.T) {
		start := time.Date(2026, 5, 1, 14, 0, 0, 0, time.UTC)
		log := NewSessionLogBuilder().
			WithID("s7").
			WithStart(start).
			WithSettings(entities.TimerSettings{TargetMinutes: 10, WarningMinutes: 2, WrapUpMinutes: 1}).
			WithSlideChange(0, 0, "Intro").
			WithMarker(30.5, "Question").
			Finished(700, entities.SessionOvertime).
			Build()

		assert.Equal(t, "2026-05-01T14:00:00.000Z", log.StartTime)
		require.Len(t, log.Events, 2)
		assert.Equal(t, "s7-event-1", log.Events[0].ID)
		assert.Equal(t, entities.EventSlideChange, log.Events[0].Type)
		require.NotNil(t, log.Events[0].SlideIndex)
		assert.Equal(t, 0, *log.Events[0].SlideIndex)

		marker := log.Events[1]
		assert.Equal(t, entities.EventManualMarker, marker.Type)
		assert.Equal(t, start.Add(30500*time.Millisecond).UnixMilli(), marker.Timestamp)
		assert.Equal(t, entities.TriggerManual, marker.Metadata.TriggerType)

		require.True(t, log.IsFinalized())
		assert.Equal(t, entities.SessionSummary{
			TotalDurationSeconds: 700,
			SlideCount:           1,
			MarkerCount:          1,
			Status:               entities.SessionOvertime,
		}, *log.Summary)
	})

	t.Run("finished helper", func(t *testing.T) {
		log := FinishedSession()
		require.True(t, log.IsFinalized())
		assert.Equal(t, 2, log.Summary.SlideCount)
		assert.Equal(t, 1, log.Summary.MarkerCount)
		assert.Equal(t, 1512.5, log.Summary.TotalDurationSeconds)
	})
}
