package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/huimingz/commitcraft/pkg/lang"
)

const (
	// a separator cut must keep at least this many characters
	minSeparatorPrefix = 10
	maxExpansionTokens = 4
)

// cut points, checked right to left
var safeSeparators = map[rune]bool{'—': true, '，': true, '；': true, ';': true, ',': true, '：': true, ':': true}

// LengthPolicy bounds the subject length in characters. Zero disables a bound.
type LengthPolicy struct {
	Min int
	Max int
	// Threshold is the changed-line count at which bounds start to apply; 0 always applies.
	Threshold int
}

// Applies reports whether bounds are enforced for a change of changedLines lines
func (p LengthPolicy) Applies(changedLines int) bool {
	if p.Min <= 0 && p.Max <= 0 {
		return false
	}
	return p.Threshold <= 0 || changedLines >= p.Threshold
}

// ControlLength truncates subject to the policy maximum and, when it is short,
// expands it with the extra fragments and then the tokens, truncating again
// after every step.
func ControlLength(subject string, p LengthPolicy, extras, tokens []string, vocab lang.Vocabulary) string {
	subject = Truncate(subject, p.Max)
	if p.Min <= 0 {
		return subject
	}

	for i, extra := range extras {
		if utf8.RuneCountInString(subject) >= p.Min {
			return subject
		}
		lead := vocab.ListSeparator
		if i == 0 {
			lead = vocab.ExpandLead
		}
		subject = Truncate(subject+lead+extra, p.Max)
	}

	if utf8.RuneCountInString(subject) < p.Min && len(tokens) > 0 {
		if len(tokens) > maxExpansionTokens {
			tokens = tokens[:maxExpansionTokens]
		}
		subject = Truncate(subject+vocab.TokensLead+strings.Join(tokens, vocab.ListSeparator), p.Max)
	}
	return subject
}

// Truncate shortens s to at most limit characters. It prefers the last safe
// separator within the limit, then a word boundary, then a hard cut.
func Truncate(s string, limit int) string {
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}

	cut := -1
	for i := limit; i >= minSeparatorPrefix; i-- {
		if safeSeparators[runes[i]] && utf8.RuneCountInString(trimTail(string(runes[:i]))) >= minSeparatorPrefix {
			cut = i
			break
		}
	}
	if cut < 0 {
		cut = limit
		// back off to a word boundary unless that loses more than half
		for i := limit; i > limit/2; i-- {
			if unicode.IsSpace(runes[i]) {
				cut = i
				break
			}
		}
	}
	return balanceParens(trimTail(string(runes[:cut])))
}

func trimTail(s string) string {
	return strings.TrimRightFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || (unicode.IsPunct(r) && r != ')' && r != '）')
	})
}

// balanceParens drops a trailing "(..." left open by a cut
func balanceParens(s string) string {
	open := strings.LastIndex(s, "(")
	if open < 0 || strings.LastIndex(s, ")") > open {
		return s
	}
	if trimmed := trimTail(s[:open]); utf8.RuneCountInString(trimmed) >= minSeparatorPrefix {
		return trimmed
	}
	return s
}
