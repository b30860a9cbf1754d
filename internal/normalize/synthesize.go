package normalize

import (
	"path"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/huimingz/commitcraft/internal/diff"
	"github.com/huimingz/commitcraft/internal/prompt"
	"github.com/huimingz/commitcraft/pkg/lang"
)

const maxFragmentDetails = 2

// words that carry no information once the file name is known
var noiseWords = map[string]bool{
	"changes": true, "change": true, "changed": true,
	"update": true, "updates": true, "updated": true,
	"file": true, "files": true,
	"new": true, "removed": true, "renamed": true,
}

// BuildSpecificSubject synthesizes a subject from the ranked files, lockfile
// summaries and required tokens of c. The result always references at least
// RequiredTokenCount of the required tokens.
func BuildSpecificSubject(c *prompt.Context, vocab lang.Vocabulary) string {
	var subject string
	switch {
	case len(c.Ranked) > 0:
		top := c.Ranked[0]
		target := Fragment(top, vocab)
		if c.RequiredTokenCount >= 2 && len(c.Ranked) > 1 {
			target += vocab.And + Fragment(c.Ranked[1], vocab)
		}
		subject = action(vocab, changeVerb(top.ChangeType, vocab), target)
	case c.Summary != nil && len(c.Summary.LockfileSummaries) > 0:
		subject = depsPhrase(c.Summary.LockfileSummaries, vocab)
	case len(c.RequiredTokens) > 0:
		subject = lang.Fill(vocab.GeneralTemplate, map[string]string{"target": c.RequiredTokens[0]})
	default:
		subject = lang.Fill(vocab.GeneralTemplate, map[string]string{"target": c.Scope})
	}
	return ensureTokens(subject, c.RequiredTokens, c.RequiredTokenCount, vocab)
}

// compactSubject names the required tokens without fragment details, for a
// synthesized subject that lost tokens to the length bound. When no form fits
// maxLen the shortest form naming the tokens is returned untruncated.
func compactSubject(c *prompt.Context, vocab lang.Vocabulary, maxLen int) string {
	verb := vocab.Update
	if len(c.Ranked) > 0 {
		verb = changeVerb(c.Ranked[0].ChangeType, vocab)
	}

	var candidates []string
	var bases []string
	for i, fc := range c.Ranked {
		if i >= max(c.RequiredTokenCount, 1) {
			break
		}
		bases = append(bases, path.Base(fc.Path))
	}
	if len(bases) > 0 {
		subject := action(vocab, verb, strings.Join(bases, vocab.And))
		candidates = append(candidates, ensureTokens(subject, c.RequiredTokens, c.RequiredTokenCount, vocab))
	}
	if short := shortestTokenForms(c.RequiredTokens, c.RequiredTokenCount); len(short) > 0 {
		candidates = append(candidates, action(vocab, verb, strings.Join(short, vocab.And)))
	}
	if len(candidates) == 0 {
		return Truncate(BuildSpecificSubject(c, vocab), maxLen)
	}

	for _, subject := range candidates {
		fits := maxLen <= 0 || utf8.RuneCountInString(subject) <= maxLen
		if fits && MatchRequiredTokens(subject, c.RequiredTokens, c.RequiredTokenCount) {
			return subject
		}
	}
	return candidates[len(candidates)-1]
}

// shortestTokenForms returns the n tokens with the shortest match form, each
// written as that form ("login" for "src/login.ts").
func shortestTokenForms(tokens []string, n int) []string {
	forms := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if len(prompt.TokenVariants(token)) > 0 {
			forms = append(forms, shortForm(token))
		}
	}
	sort.SliceStable(forms, func(i, j int) bool {
		return utf8.RuneCountInString(forms[i]) < utf8.RuneCountInString(forms[j])
	})
	if len(forms) > n {
		forms = forms[:n]
	}
	return forms
}

func shortForm(token string) string {
	base := path.Base(strings.ReplaceAll(strings.TrimLeft(token, "./#"), "\\", "/"))
	noExt := strings.TrimSuffix(base, path.Ext(base))
	if utf8.RuneCountInString(prompt.NormalizeForMatch(noExt)) >= 3 {
		return noExt
	}
	return token
}

// ensureTokens appends unmatched required tokens until enough are referenced
func ensureTokens(subject string, tokens []string, required int, vocab lang.Vocabulary) string {
	matched := MatchedTokens(subject, tokens)
	missing := required - len(matched)
	if missing <= 0 {
		return subject
	}

	seen := make(map[string]bool, len(matched))
	for _, m := range matched {
		seen[m] = true
	}
	var extra []string
	for _, token := range tokens {
		if len(extra) == missing {
			break
		}
		if !seen[token] && len(prompt.TokenVariants(token)) > 0 {
			extra = append(extra, token)
		}
	}
	if len(extra) == 0 {
		return subject
	}
	return subject + vocab.TokensLead + strings.Join(extra, vocab.ListSeparator)
}

// Fragment describes one file as "base (detail, detail)".
func Fragment(fc diff.FileChange, vocab lang.Vocabulary) string {
	details := FragmentDetails(fc, maxFragmentDetails)
	base := path.Base(fc.Path)
	if len(details) == 0 {
		return base
	}
	return base + " (" + strings.Join(details, vocab.ListSeparator) + ")"
}

// FragmentDetails collects up to limit details for fc: leading keyword,
// leading context label, then highlights stripped of noise words.
func FragmentDetails(fc diff.FileChange, limit int) []string {
	base := strings.ToLower(path.Base(fc.Path))
	var details []string
	seen := map[string]bool{base: true}
	add := func(s string) {
		key := strings.ToLower(s)
		if s == "" || seen[key] || len(details) >= limit {
			return
		}
		seen[key] = true
		details = append(details, s)
	}

	for _, kw := range fc.Keywords {
		add(kw)
		break
	}
	for _, label := range fc.ContextLabels {
		add(label)
		break
	}
	for _, h := range fc.Highlights {
		add(cleanHighlight(h))
	}
	return details
}

func cleanHighlight(h string) string {
	var kept []string
	for _, w := range strings.Fields(h) {
		if !noiseWords[strings.ToLower(w)] {
			kept = append(kept, w)
		}
	}
	return strings.Join(kept, " ")
}

func changeVerb(ct diff.ChangeType, vocab lang.Vocabulary) string {
	switch ct {
	case diff.ChangeAdded:
		return vocab.Add
	case diff.ChangeDeleted:
		return vocab.Remove
	case diff.ChangeRenamed:
		return vocab.Rename
	default:
		return vocab.Update
	}
}

func action(vocab lang.Vocabulary, verb, target string) string {
	return lang.Fill(vocab.ActionTemplate, map[string]string{
		"verb":   verb,
		"target": target,
	})
}

func depsPhrase(lockfiles []string, vocab lang.Vocabulary) string {
	return lang.Fill(vocab.DepsTemplate, map[string]string{
		"files": strings.Join(lockfileNames(lockfiles), vocab.ListSeparator),
	})
}

// lockfileNames extracts "package-lock.json" from "package-lock.json: lockfile updated"
func lockfileNames(summaries []string) []string {
	names := make([]string, 0, len(summaries))
	for _, s := range summaries {
		name, _, _ := strings.Cut(s, ":")
		names = append(names, strings.TrimSpace(name))
	}
	return names
}
