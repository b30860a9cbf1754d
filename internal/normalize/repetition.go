package normalize

import (
	"strings"
	"unicode"
)

const (
	maxRepeatedRunes = 7
	maxRepeatedWords = 4
)

// IsRepetitive flags degenerate output: one non-space character seven or more
// times in a row, or the same word four or more times in a row.
func IsRepetitive(text string) bool {
	run := 0
	var prev rune
	for _, r := range text {
		if unicode.IsSpace(r) {
			run = 0
			prev = 0
			continue
		}
		if r == prev {
			run++
		} else {
			prev = r
			run = 1
		}
		if run >= maxRepeatedRunes {
			return true
		}
	}

	words := 0
	last := ""
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.TrimFunc(w, func(r rune) bool { return unicode.IsPunct(r) })
		if w == "" {
			continue
		}
		if w == last {
			words++
		} else {
			last = w
			words = 1
		}
		if words >= maxRepeatedWords {
			return true
		}
	}
	return false
}
