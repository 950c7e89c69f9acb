package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerSettings_Validate(t *testing.T) {
	tests := []struct {
		name     string
		settings TimerSettings
		errMsg   string
	}{
		{name: "defaults", settings: DefaultTimerSettings()},
		{name: "zero thresholds", settings: TimerSettings{TargetMinutes: 10}},
		{name: "zero target", settings: TimerSettings{}, errMsg: "target minutes must be positive"},
		{name: "negative warning", settings: TimerSettings{TargetMinutes: 10, WarningMinutes: -1}, errMsg: "warning"},
		{name: "negative wrap-up", settings: TimerSettings{TargetMinutes: 10, WrapUpMinutes: -1}, errMsg: "wrap-up"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDeck_ResolveTimerSettings(t *testing.T) {
	fallback := TimerSettings{TargetMinutes: 20, WarningMinutes: 4, WrapUpMinutes: 1}

	t.Run("nil deck", func(t *testing.T) {
		var deck *Deck
		assert.Equal(t, fallback, deck.ResolveTimerSettings(fallback))
	})

	t.Run("deck without config block", func(t *testing.T) {
		deck := &Deck{}
		assert.Equal(t, fallback, deck.ResolveTimerSettings(fallback))
	})

	t.Run("deck with config block", func(t *testing.T) {
		own := TimerSettings{TargetMinutes: 45, WarningMinutes: 10, WrapUpMinutes: 3}
		deck := &Deck{TimerSettings: &own}
		assert.Equal(t, own, deck.ResolveTimerSettings(fallback))
	})
}

func TestDeck_SlideLookup(t *testing.T) {
	deck := &Deck{Slides: []Slide{
		{ID: "a", Label: "Intro"},
		{ID: "b", Label: "Body"},
		{ID: "c", Label: "Intro"},
	}}

	assert.Equal(t, 3, deck.SlideCount())
	assert.Equal(t, 0, deck.FindByLabel("Intro"))
	assert.Equal(t, 1, deck.FindByLabel("Body"))
	assert.Equal(t, -1, deck.FindByLabel("Missing"))

	slide, err := deck.SlideAt(1)
	require.NoError(t, err)
	assert.Equal(t, "b", slide.ID)

	_, err = deck.SlideAt(3)
	assert.Error(t, err)
	_, err = deck.SlideAt(-1)
	assert.Error(t, err)
}

func TestDeck_JSONShape(t *testing.T) {
	deck := &Deck{
		Title: "Lecture",
		Slides: []Slide{{
			ID:          "s1",
			Label:       "Slide 1",
			RawMarkdown: "# Hi",
			HTML:        "<h1>Hi</h1>",
			Media:       []MediaAsset{},
			Layout:      LayoutStandard,
		}},
	}

	data, err := json.Marshal(deck)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Nil(t, decoded["timerSettings"])

	slide := decoded["slides"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "<h1>Hi</h1>", slide["htmlContent"])
	assert.Equal(t, "standard", slide["layout"])
	assert.NotContains(t, slide, "speakerNotesHtml")
}

func TestSlide_Helpers(t *testing.T) {
	slide := Slide{Notes: "  ", Layout: LayoutBleed}
	assert.False(t, slide.HasNotes())
	assert.False(t, slide.HasSpeakerNotes())
	assert.True(t, slide.IsBleed())

	slide.Notes = "Say hello"
	slide.SpeakerNotesHTML = "<p>psst</p>"
	assert.True(t, slide.HasNotes())
	assert.True(t, slide.HasSpeakerNotes())
}

func TestTimerStatus_Label(t *testing.T) {
	assert.Equal(t, "On track", TimerStatusGreen.Label())
	assert.Equal(t, "Warning", TimerStatusYellow.Label())
	assert.Equal(t, "Wrap up", TimerStatusRed.Label())
	assert.Equal(t, "Overtime", TimerStatusOvertime.Label())
}

func TestSessionLog_CountEvents(t *testing.T) {
	log := &SessionLog{Events: []PerformanceEvent{
		{Type: EventSessionStart},
		{Type: EventSlideChange},
		{Type: EventSlideChange},
		{Type: EventManualMarker},
	}}

	assert.Equal(t, 2, log.CountEvents(EventSlideChange))
	assert.Equal(t, 1, log.CountEvents(EventManualMarker))
	assert.Equal(t, 0, log.CountEvents(EventAudioStart))
	assert.False(t, log.IsFinalized())

	var empty *SessionLog
	assert.Equal(t, 0, empty.CountEvents(EventSlideChange))
}

func TestSlideChangeEvent(t *testing.T) {
	slide := &Slide{Label: "Intro", HTML: "<p>x</p>", Layout: LayoutBleed}
	event := NewSlideChangeEvent(slide, 2, 5)

	assert.Equal(t, SyncSlideChange, event.Type)
	assert.Equal(t, "<p>x</p>", event.Data["htmlContent"])
	assert.Equal(t, 2, event.Data["index"])
	assert.Equal(t, 5, event.Data["total"])
	assert.Equal(t, "Intro", event.Data["label"])
	assert.Equal(t, "bleed", event.Data["layout"])

	theme := NewThemeChangeEvent(StageThemeLight)
	assert.Equal(t, SyncThemeChange, theme.Type)
	assert.Equal(t, true, theme.Data["light"])
}
