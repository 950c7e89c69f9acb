package parser

import (
	"regexp"
	"strings"
)

// mode is the block the line scanner is currently inside
type mode int

const (
	modeNotes mode = iota
	modeSlide
	modeConfig
	modeSpeakerNotes
)

var (
	slideFenceRegex  = regexp.MustCompile(`^:::\s*slide(?:\s*\[([^\]]*)\])?(?:\s+(bleed))?`)
	configFenceRegex = regexp.MustCompile(`^:::\s*lecturelight`)
	notesFenceRegex  = regexp.MustCompile(`^:::\s*notes(?:\s*\[([^\]]*)\])?`)
)

// fence is an opening fence recognized on a notes-mode line
type fence struct {
	opens mode
	label string
	bleed bool
}

// matchFence checks a trimmed line for an opening fence. Slide fences win
// over config fences, which win over notes fences.
func matchFence(trimmed string) (fence, bool) {
	if !strings.HasPrefix(trimmed, ":::") {
		return fence{}, false
	}
	if m := slideFenceRegex.FindStringSubmatch(trimmed); m != nil {
		return fence{opens: modeSlide, label: m[1], bleed: m[2] == "bleed"}, true
	}
	if configFenceRegex.MatchString(trimmed) {
		return fence{opens: modeConfig}, true
	}
	if m := notesFenceRegex.FindStringSubmatch(trimmed); m != nil {
		return fence{opens: modeSpeakerNotes, label: m[1]}, true
	}
	return fence{}, false
}

// isCloser reports whether a trimmed line closes the current block
func isCloser(trimmed string) bool {
	return trimmed == ":::"
}

// splitLines splits on "\n" only; a trailing "\r" is removed by trimming
// wherever fences are recognized
func splitLines(markdown string) []string {
	return strings.Split(markdown, "\n")
}
