// Package textutils holds small text helpers shared by the categorizer, the
// budget insight parser and the chat advisor.
package textutils

import (
	"regexp"
	"strings"
	"unicode"
)

// NormalizeDescription case-folds s, turns punctuation and symbols into spaces
// and collapses runs of whitespace. Rule keywords and merchant keys go through
// the same function so that matching is symmetric.
func NormalizeDescription(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

var listMarker = regexp.MustCompile(`^\s*(?:[-*•·]+|\d+[.)]|\(\d+\))\s*`)

// StripListMarker removes a leading bullet or enumeration marker and any
// markdown emphasis from a line of model output.
func StripListMarker(line string) string {
	line = listMarker.ReplaceAllString(line, "")
	line = strings.ReplaceAll(line, "**", "")
	return strings.TrimSpace(line)
}

// SplitLines splits text on any newline convention and drops blank lines.
func SplitLines(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' })
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// Preview truncates text to at most n runes, appending "..." when cut.
func Preview(text string, n int) string {
	runes := []rune(strings.TrimSpace(text))
	if n <= 0 || len(runes) <= n {
		return string(runes)
	}
	return strings.TrimSpace(string(runes[:n])) + "..."
}

// CleanLabel trims quotes, trailing punctuation and whitespace from a short
// model answer such as a category name.
func CleanLabel(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "\r\n"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(strings.Trim(s, "\"'`.*: "))
}
