package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
)

func settings(target, warning, wrapUp float64) entities.TimerSettings {
	return entities.TimerSettings{TargetMinutes: target, WarningMinutes: warning, WrapUpMinutes: wrapUp}
}

func TestNormalizeThresholds(t *testing.T) {
	tests := []struct {
		name     string
		input    entities.TimerSettings
		expected entities.TimerSettings
	}{
		{"already ordered", settings(30, 5, 2), settings(30, 5, 2)},
		{"warning equals target", settings(10, 10, 2), settings(10, 2, 1)},
		{"warning past target", settings(30, 45, 2), settings(30, 6, 2)},
		{"wrap-up equals warning", settings(30, 5, 5), settings(30, 5, 3)},
		{"both clamp", settings(5, 8, 9), settings(5, 1, 1)},
		{"half rounds up", settings(30, 3, 3), settings(30, 3, 2)},
		{"tiny target", settings(1, 1, 1), settings(1, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeThresholds(tt.input))
		})
	}
}

func TestTimerStatusFor(t *testing.T) {
	s := settings(30, 5, 2)

	tests := []struct {
		name     string
		elapsed  int
		running  bool
		expected entities.TimerStatus
	}{
		{"not started", 0, false, entities.TimerStatusGreen},
		{"just started", 0, true, entities.TimerStatusGreen},
		{"plenty left", 10 * 60, true, entities.TimerStatusGreen},
		{"one second before warning", 25*60 - 1, true, entities.TimerStatusGreen},
		{"exactly at warning", 25 * 60, true, entities.TimerStatusYellow},
		{"inside warning", 27 * 60, true, entities.TimerStatusYellow},
		{"exactly at wrap-up", 28 * 60, true, entities.TimerStatusRed},
		{"last second", 30 * 60, true, entities.TimerStatusRed},
		{"overtime", 30*60 + 1, true, entities.TimerStatusOvertime},
		{"paused in overtime", 31 * 60, false, entities.TimerStatusOvertime},
		{"paused mid talk", 27 * 60, false, entities.TimerStatusYellow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TimerStatusFor(tt.elapsed, tt.running, s))
		})
	}

	t.Run("misconfigured thresholds are clamped first", func(t *testing.T) {
		// warning 12 ≥ target 10 → 2, wrap-up 5 ≥ 2 → 1
		bad := settings(10, 12, 5)
		assert.Equal(t, entities.TimerStatusGreen, TimerStatusFor(7*60, true, bad))
		assert.Equal(t, entities.TimerStatusYellow, TimerStatusFor(8*60, true, bad))
		assert.Equal(t, entities.TimerStatusRed, TimerStatusFor(9*60, true, bad))
	})
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		seconds  int
		expected string
	}{
		{0, "00:00"},
		{59, "00:59"},
		{60, "01:00"},
		{1800, "30:00"},
		{-1, "+00:01"},
		{-75, "+01:15"},
		{6000, "100:00"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatClock(tt.seconds))
		})
	}
}

func TestReadTimer(t *testing.T) {
	t.Run("running", func(t *testing.T) {
		reading := ReadTimer(26*60+30, true, settings(30, 5, 2))

		assert.Equal(t, entities.TimerStatusYellow, reading.Status)
		assert.Equal(t, "Warning", reading.Label)
		assert.Equal(t, 210, reading.RemainingSeconds)
		assert.Equal(t, "03:30", reading.Display)
		assert.True(t, reading.Running)
	})

	t.Run("overtime", func(t *testing.T) {
		reading := ReadTimer(31*60, true, settings(30, 5, 2))

		assert.Equal(t, entities.TimerStatusOvertime, reading.Status)
		assert.Equal(t, "+01:00", reading.Display)
		assert.Equal(t, -60, reading.RemainingSeconds)
	})

	t.Run("reports normalized settings", func(t *testing.T) {
		reading := ReadTimer(0, false, settings(10, 10, 10))
		assert.Equal(t, settings(10, 2, 1), reading.Settings)
		assert.Equal(t, "10:00", reading.Display)
		assert.Equal(t, "On track", reading.Label)
	})

	t.Run("fractional target", func(t *testing.T) {
		reading := ReadTimer(0, false, settings(0.5, 0.2, 0.1))
		assert.Equal(t, 30, reading.RemainingSeconds)
	})
}
