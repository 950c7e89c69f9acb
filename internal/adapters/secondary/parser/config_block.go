package parser

import (
	"regexp"
	"strconv"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
)

var (
	configBlockRegex = regexp.MustCompile(`(?s):::lecturelight\s*(.*?)\s*:::`)
	targetRegex      = regexp.MustCompile(`(?i)target(?:Minutes)?:\s*(\d+(\.\d+)?)`)
	warningRegex     = regexp.MustCompile(`(?i)warning(?:Minutes)?:\s*(\d+(\.\d+)?)`)
	wrapUpRegex      = regexp.MustCompile(`(?i)wrapUp(?:Minutes)?:\s*(\d+(\.\d+)?)`)
)

// extractTimerSettings reads the first :::lecturelight block of the whole
// document. It returns nil when the note has no such block; keys missing
// from the block default independently.
func extractTimerSettings(markdown string) *entities.TimerSettings {
	m := configBlockRegex.FindStringSubmatch(markdown)
	if m == nil {
		return nil
	}
	body := m[1]

	settings := entities.DefaultTimerSettings()
	if v, ok := configValue(targetRegex, body); ok {
		settings.TargetMinutes = v
	}
	if v, ok := configValue(warningRegex, body); ok {
		settings.WarningMinutes = v
	}
	if v, ok := configValue(wrapUpRegex, body); ok {
		settings.WrapUpMinutes = v
	}
	return &settings
}

func configValue(re *regexp.Regexp, body string) (float64, bool) {
	m := re.FindStringSubmatch(body)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
