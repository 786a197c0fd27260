package textutils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeDescription(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Starbucks", "starbucks"},
		{"  STARBUCKS #1234, Seattle  ", "starbucks 1234 seattle"},
		{"Gas-Bill / PG&E", "gas bill pg e"},
		{"Amazon.com*Mktp", "amazon com mktp"},
		{"Café Crème", "café crème"},
		{"", ""},
		{"!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeDescription(tt.input))
		})
	}
}

func TestNormalizeDescription_Idempotent(t *testing.T) {
	for _, s := range []string{"NETFLIX.COM 866-579", "Uber *Trip", "rent"} {
		once := NormalizeDescription(s)
		assert.Equal(t, once, NormalizeDescription(once))
	}
}

func TestStripListMarker(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"- Housing dominates spending.", "Housing dominates spending."},
		{"1. Dining rose 12%.", "Dining rose 12%."},
		{"2) Cut subscriptions.", "Cut subscriptions."},
		{"• **Bold** claim", "Bold claim"},
		{"Plain sentence", "Plain sentence"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, StripListMarker(tt.input))
		})
	}
}

func TestSplitLinesAndPreview(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SplitLines("a\r\nb\n\n  \nc"))
	assert.Equal(t, "hello...", Preview("hello world", 5))
	assert.Equal(t, "short", Preview("short", 200))
	assert.Equal(t, "Food & Dining", CleanLabel(" \"Food & Dining.\"\nbecause coffee"))
}
