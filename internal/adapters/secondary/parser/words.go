package parser

import (
	"fmt"
	"math"
	"strings"

	"github.com/fredcamaral/lecturelight/internal/domain/entities"
)

// DefaultWordsPerMinute is the speaking rate used when none is configured
const DefaultWordsPerMinute = 130

// CountSpeakableWords counts whitespace-separated words of the teleprompter
// prose only. Slide, configuration and speaker-note blocks are skipped.
func CountSpeakableWords(markdown string) int {
	if markdown == "" {
		return 0
	}

	current := modeNotes
	var prose []string
	for _, line := range splitLines(markdown) {
		trimmed := strings.TrimSpace(line)

		if current != modeNotes {
			if isCloser(trimmed) {
				current = modeNotes
			}
			continue
		}
		if f, ok := matchFence(trimmed); ok {
			current = f.opens
			continue
		}
		prose = append(prose, line)
	}

	return len(strings.Fields(strings.Join(prose, "\n")))
}

// EstimateMinutes converts a word count into speaking minutes. A
// non-positive rate falls back to DefaultWordsPerMinute.
func EstimateMinutes(words, wordsPerMinute int) float64 {
	if wordsPerMinute <= 0 {
		wordsPerMinute = DefaultWordsPerMinute
	}
	if words <= 0 {
		return 0
	}
	return float64(words) / float64(wordsPerMinute)
}

// FormatDuration renders minutes as "~N min" below an hour and "~Hh Mmin"
// from an hour on. Hours are floored and minutes rounded separately.
func FormatDuration(minutes float64) string {
	if minutes < 60 {
		return fmt.Sprintf("~%d min", roundHalfUp(minutes))
	}
	hours := int(math.Floor(minutes / 60))
	mins := roundHalfUp(math.Mod(minutes, 60))
	return fmt.Sprintf("~%dh %dmin", hours, mins)
}

// Estimate implements ports.DeckParser
func (p *BlockParser) Estimate(markdown string, wordsPerMinute int) entities.SpeechEstimate {
	if wordsPerMinute <= 0 {
		wordsPerMinute = DefaultWordsPerMinute
	}
	words := CountSpeakableWords(markdown)
	minutes := EstimateMinutes(words, wordsPerMinute)
	return entities.SpeechEstimate{
		Words:          words,
		WordsPerMinute: wordsPerMinute,
		Minutes:        minutes,
		Display:        FormatDuration(minutes),
	}
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
