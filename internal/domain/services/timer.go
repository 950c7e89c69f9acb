package services

import (
	"fmt"
	"math"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
)

// NormalizeThresholds repairs thresholds that would make the countdown skip
// a colour. A warning at or past the target becomes 20% of the target, then
// a wrap-up at or past the warning becomes half the warning.
func NormalizeThresholds(s entities.TimerSettings) entities.TimerSettings {
	if s.WarningMinutes >= s.TargetMinutes {
		s.WarningMinutes = roundHalfUp(s.TargetMinutes * 0.2)
	}
	if s.WrapUpMinutes >= s.WarningMinutes {
		s.WrapUpMinutes = roundHalfUp(s.WarningMinutes * 0.5)
	}
	return s
}

// RemainingSeconds returns the target minus elapsed, negative in overtime
func RemainingSeconds(elapsedSeconds int, s entities.TimerSettings) int {
	return int(roundHalfUp(s.TargetMinutes*60)) - elapsedSeconds
}

// TimerStatusFor classifies the countdown. A timer that has not started
// reads green.
func TimerStatusFor(elapsedSeconds int, running bool, s entities.TimerSettings) entities.TimerStatus {
	if !running && elapsedSeconds == 0 {
		return entities.TimerStatusGreen
	}

	s = NormalizeThresholds(s)
	remaining := RemainingSeconds(elapsedSeconds, s)
	remainingMinutes := float64(remaining) / 60

	switch {
	case remaining < 0:
		return entities.TimerStatusOvertime
	case remainingMinutes <= s.WrapUpMinutes:
		return entities.TimerStatusRed
	case remainingMinutes <= s.WarningMinutes:
		return entities.TimerStatusYellow
	default:
		return entities.TimerStatusGreen
	}
}

// FormatClock renders seconds as MM:SS, with a leading '+' in overtime
func FormatClock(remainingSeconds int) string {
	sign := ""
	if remainingSeconds < 0 {
		sign = "+"
		remainingSeconds = -remainingSeconds
	}
	return fmt.Sprintf("%s%02d:%02d", sign, remainingSeconds/60, remainingSeconds%60)
}

// ReadTimer takes a full snapshot of the countdown for display
func ReadTimer(elapsedSeconds int, running bool, s entities.TimerSettings) entities.TimerReading {
	normalized := NormalizeThresholds(s)
	remaining := RemainingSeconds(elapsedSeconds, normalized)
	status := TimerStatusFor(elapsedSeconds, running, normalized)

	return entities.TimerReading{
		Status:           status,
		Label:            status.Label(),
		ElapsedSeconds:   elapsedSeconds,
		RemainingSeconds: remaining,
		Display:          FormatClock(remaining),
		Running:          running,
		Settings:         normalized,
	}
}

func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
