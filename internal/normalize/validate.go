package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/huimingz/commitcraft/internal/prompt"
	"github.com/huimingz/commitcraft/pkg/lang"
)

// Reason explains why a subject failed validation
type Reason string

const (
	ReasonEmpty         Reason = "empty subject"
	ReasonMissingTokens Reason = "missing required tokens"
	ReasonGeneric       Reason = "generic subject"
	ReasonTooShort      Reason = "too short to be specific"
	ReasonDiffStats     Reason = "contains diff statistics"
	// ReasonBelowMinimum is soft: length control expands the subject instead of rejecting it
	ReasonBelowMinimum Reason = "below minimum length"
)

var diffStatRes = []*regexp.Regexp{
	regexp.MustCompile(`\+\d+\s*/\s*-\d+`),
	regexp.MustCompile(`(?i)\bfiles?\s+changed\b`),
	regexp.MustCompile(`(?i)\blines?\s*:`),
	regexp.MustCompile(`(?i)\b(?:insertions?\(\+\)|deletions?\(-\))`),
}

// minSpecificLength is the shortest subject that can still name a change
func minSpecificLength(l lang.Language) int {
	if l == lang.ChineseSimplified {
		return 6
	}
	return 12
}

// Constraints are the rules a subject is held to
type Constraints struct {
	RequiredTokens     []string
	RequiredTokenCount int
	MinLength          int
	Vocabulary         lang.Vocabulary
}

// Validation lists the reasons a subject failed, in check order
type Validation struct {
	Reasons []Reason
}

// OK reports whether only soft reasons were found
func (v Validation) OK() bool {
	for _, r := range v.Reasons {
		if r != ReasonBelowMinimum {
			return false
		}
	}
	return true
}

// Has reports whether r was found
func (v Validation) Has(r Reason) bool {
	for _, got := range v.Reasons {
		if got == r {
			return true
		}
	}
	return false
}

// Validate checks a subject against the constraints.
func Validate(subject string, c Constraints) Validation {
	var v Validation
	subject = strings.TrimSpace(subject)
	if subject == "" {
		v.Reasons = append(v.Reasons, ReasonEmpty)
		return v
	}
	if !MatchRequiredTokens(subject, c.RequiredTokens, c.RequiredTokenCount) {
		v.Reasons = append(v.Reasons, ReasonMissingTokens)
	}
	if IsGeneric(subject, c.Vocabulary) {
		v.Reasons = append(v.Reasons, ReasonGeneric)
	}
	if utf8.RuneCountInString(subject) < minSpecificLength(c.Vocabulary.Language) {
		v.Reasons = append(v.Reasons, ReasonTooShort)
	}
	if ContainsDiffStats(subject) {
		v.Reasons = append(v.Reasons, ReasonDiffStats)
	}
	if c.MinLength > 0 && utf8.RuneCountInString(subject) < c.MinLength {
		v.Reasons = append(v.Reasons, ReasonBelowMinimum)
	}
	return v
}

// MatchRequiredTokens reports whether subject references at least required of tokens.
func MatchRequiredTokens(subject string, tokens []string, required int) bool {
	if required <= 0 {
		return true
	}
	return len(MatchedTokens(subject, tokens)) >= required
}

// MatchedTokens returns the tokens with a variant contained in the normalized subject
func MatchedTokens(subject string, tokens []string) []string {
	normalized := prompt.NormalizeForMatch(subject)
	var matched []string
	for _, token := range tokens {
		for _, variant := range prompt.TokenVariants(token) {
			if strings.Contains(normalized, variant) {
				matched = append(matched, token)
				break
			}
		}
	}
	return matched
}

// IsGeneric reports whether text is one of the vocabulary's content-free phrases
func IsGeneric(text string, vocab lang.Vocabulary) bool {
	normalized := prompt.NormalizeForMatch(text)
	if normalized == "" {
		return true
	}
	for _, phrase := range vocab.GenericPhrases {
		if normalized == prompt.NormalizeForMatch(phrase) {
			return true
		}
	}
	return false
}

// ContainsDiffStats reports whether text embeds diff statistics such as "+3/-1"
func ContainsDiffStats(text string) bool {
	for _, re := range diffStatRes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
