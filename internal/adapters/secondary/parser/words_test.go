package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountSpeakableWords(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{"empty string", "", 0},
		{"plain prose", "Hello world this is a test", 6},
		{"skips slide blocks", "Before the slide.\n:::slide\n# Inside the slide\n:::\nAfter the slide.", 6},
		{"skips config blocks", ":::lecturelight\ntarget: 30\nwarning: 5\n:::\nSpoken intro.", 2},
		{"skips speaker notes", "Before.\n:::notes\nThis should not count.\n:::\nAfter.", 2},
		{"unclosed block swallows the rest", "One two.\n:::slide\nthree four five", 2},
		{"whitespace only", "  \n\t\n", 0},
		{"mixed whitespace between words", "one\ttwo   three\n\nfour", 4},
		{"lone closer in prose counts", "a\n:::\nb", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CountSpeakableWords(tt.input))
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes  float64
		expected string
	}{
		{30, "~30 min"},
		{5, "~5 min"},
		{0, "~0 min"},
		{30.4, "~30 min"},
		{30.6, "~31 min"},
		{59.4, "~59 min"},
		{90, "~1h 30min"},
		{120, "~2h 0min"},
		{125.5, "~2h 6min"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDuration(tt.minutes))
		})
	}
}

func TestEstimateMinutes(t *testing.T) {
	assert.Equal(t, 2.0, EstimateMinutes(260, 130))
	assert.Equal(t, 1.0, EstimateMinutes(130, 0))
	assert.Equal(t, 0.0, EstimateMinutes(0, 130))
	assert.Equal(t, 0.5, EstimateMinutes(75, 150))
}

func TestBlockParser_Estimate(t *testing.T) {
	p := New()

	t.Run("counts prose only", func(t *testing.T) {
		note := "one two three four\n:::slide\nnot spoken at all\n:::\nfive six"
		est := p.Estimate(note, 3)

		assert.Equal(t, 6, est.Words)
		assert.Equal(t, 3, est.WordsPerMinute)
		assert.Equal(t, 2.0, est.Minutes)
		assert.Equal(t, "~2 min", est.Display)
	})

	t.Run("default rate", func(t *testing.T) {
		est := p.Estimate("word", 0)
		assert.Equal(t, DefaultWordsPerMinute, est.WordsPerMinute)
		assert.Equal(t, "~0 min", est.Display)
	})
}
