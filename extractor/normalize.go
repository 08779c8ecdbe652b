package extractor

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxInputChars bounds the text sent to the extraction service
const DefaultMaxInputChars = 1000000

// Normalize trims html, collapses every whitespace run to a single space and
// cuts the result to at most maxChars characters. maxChars <= 0 disables the cut.
func Normalize(html string, maxChars int) string {
	s := strings.Join(strings.Fields(html), " ")
	return truncateRunes(s, maxChars)
}

func truncateRunes(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	if utf8.RuneCountInString(s) <= maxChars {
		return s
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i]
		}
		n++
	}
	return s
}
