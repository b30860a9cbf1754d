package normalize

import (
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/huimingz/commitcraft/internal/diff"
	"github.com/huimingz/commitcraft/internal/prompt"
	"github.com/huimingz/commitcraft/pkg/lang"
)

const maxBodyDetails = 3

var (
	bodyLabelRe = regexp.MustCompile(`^([^:：]{1,40}[:：])\s*`)

	verbHints = []struct {
		re   *regexp.Regexp
		verb func(lang.Vocabulary) string
	}{
		{regexp.MustCompile(`(?i)fix|bug|crash|error|修复|错误|异常`), func(v lang.Vocabulary) string { return v.Fix }},
		{regexp.MustCompile(`(?i)perf|optimi|faster|speed|性能|优化`), func(v lang.Vocabulary) string { return v.Optimize }},
		{regexp.MustCompile(`(?i)\bdocs?\b|readme|documentation|comment|文档|注释`), func(v lang.Vocabulary) string { return v.Document }},
		{regexp.MustCompile(`(?i)\btests?\b|testing|测试`), func(v lang.Vocabulary) string { return v.Test }},
	}
)

// BodyPolicy bounds the number of body lines. Zero disables a bound.
type BodyPolicy struct {
	Min int
	Max int
}

// NormalizeBody cleans the model's body candidates and pads them with lines
// synthesized from the ranked files until the policy minimum is met.
func NormalizeBody(candidates []string, c *prompt.Context, p BodyPolicy, vocab lang.Vocabulary) []string {
	body := newLineSet()
	for _, line := range candidates {
		line = cleanLine(line)
		if line == "" || ContainsDiffStats(line) || IsGeneric(line, vocab) {
			continue
		}
		body.add(ensureVerb(line, c.Ranked, vocab))
	}

	if p.Min > 0 {
		for _, fc := range c.Ranked {
			if body.len() >= p.Min {
				break
			}
			details := FragmentDetails(fc, maxBodyDetails)
			if len(details) == 0 {
				continue
			}
			body.add(lang.Fill(vocab.DetailTemplate, map[string]string{
				"file":    path.Base(fc.Path),
				"verb":    changeVerb(fc.ChangeType, vocab),
				"details": strings.Join(details, vocab.ListSeparator),
			}))
		}
		for _, fc := range c.Ranked {
			if body.len() >= p.Min {
				break
			}
			body.add(action(vocab, changeVerb(fc.ChangeType, vocab), Fragment(fc, vocab)))
		}
		if body.len() < p.Min && c.Summary != nil && len(c.Summary.LockfileSummaries) > 0 {
			body.add(depsPhrase(c.Summary.LockfileSummaries, vocab))
		}
	}

	lines := body.items
	if p.Max > 0 && len(lines) > p.Max {
		lines = lines[:p.Max]
	}
	return lines
}

// ensureVerb prefixes line with an inferred action verb when it does not
// already start with one. A leading "label:" is kept in front.
func ensureVerb(line string, ranked []diff.FileChange, vocab lang.Vocabulary) string {
	label, rest := "", line
	if m := bodyLabelRe.FindStringSubmatch(line); m != nil {
		label = m[1]
		rest = strings.TrimSpace(line[len(m[0]):])
	}
	if rest == "" || startsWithVerb(rest, vocab) {
		return line
	}

	verbed := inferVerb(line, ranked, vocab) + " " + rest
	if label != "" {
		return label + " " + verbed
	}
	return verbed
}

func startsWithVerb(s string, vocab lang.Vocabulary) bool {
	lower := strings.ToLower(s)
	word := strings.TrimRightFunc(strings.Fields(lower)[0], unicode.IsPunct)
	for _, verb := range vocab.ActionVerbs {
		if !isASCII(verb) {
			if strings.HasPrefix(lower, verb) {
				return true
			}
			continue
		}
		for _, form := range verbForms(verb) {
			if word == form {
				return true
			}
		}
	}
	return false
}

// verbForms lists the inflections of an English verb a body line may use
func verbForms(verb string) []string {
	last := verb[len(verb)-1:]
	forms := []string{verb, verb + "s", verb + "es", verb + "d", verb + "ed", verb + "ing", verb + last + "ed", verb + last + "ing"}
	switch {
	case strings.HasSuffix(verb, "e"):
		forms = append(forms, strings.TrimSuffix(verb, "e")+"ing")
	case strings.HasSuffix(verb, "y"):
		stem := strings.TrimSuffix(verb, "y")
		forms = append(forms, stem+"ies", stem+"ied")
	}
	return forms
}

func inferVerb(line string, ranked []diff.FileChange, vocab lang.Vocabulary) string {
	for _, hint := range verbHints {
		if hint.re.MatchString(line) {
			return hint.verb(vocab)
		}
	}
	lower := strings.ToLower(line)
	for _, fc := range ranked {
		if strings.Contains(lower, strings.ToLower(path.Base(fc.Path))) {
			return changeVerb(fc.ChangeType, vocab)
		}
	}
	if len(ranked) > 0 {
		return changeVerb(ranked[0].ChangeType, vocab)
	}
	return vocab.Update
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// lineSet keeps insertion order and drops case-insensitive duplicates
type lineSet struct {
	items []string
	seen  map[string]bool
}

func newLineSet() *lineSet {
	return &lineSet{seen: make(map[string]bool)}
}

func (s *lineSet) add(line string) {
	key := strings.ToLower(strings.TrimSpace(line))
	if key == "" || s.seen[key] {
		return
	}
	s.seen[key] = true
	s.items = append(s.items, line)
}

func (s *lineSet) len() int {
	return len(s.items)
}
