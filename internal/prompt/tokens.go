package prompt

import (
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/huimingz/commitcraft/internal/diff"
)

const (
	maxTokenFiles     = 3
	maxTokenKeywords  = 2
	maxTokenLabels    = 2
	minVariantLength  = 3
	manyFilesCutoff   = 10
	manyFilesRequired = 2
)

// NormalizeForMatch lower-cases s and collapses every run of characters that
// are not letters or digits into a single space.
func NormalizeForMatch(s string) string {
	var b strings.Builder
	pendingSpace := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		pendingSpace = true
	}
	return b.String()
}

// TokenVariants returns the normalized match forms of a required token: the raw
// token, the token without leading "./#" characters, its path basename and the
// basename without extension. Forms shorter than three characters are dropped.
func TokenVariants(token string) []string {
	stripped := strings.TrimLeft(token, "./#")
	base := path.Base(strings.ReplaceAll(stripped, "\\", "/"))
	noExt := strings.TrimSuffix(base, path.Ext(base))

	var variants []string
	seen := make(map[string]bool)
	for _, v := range []string{token, stripped, base, noExt} {
		n := NormalizeForMatch(v)
		if utf8.RuneCountInString(n) < minVariantLength || seen[n] {
			continue
		}
		seen[n] = true
		variants = append(variants, n)
	}
	return variants
}

// RequiredTokens lists identifiers the subject must reference, drawn from the top
// three ranked files: basename, two keywords, two context labels and the scope directory.
func RequiredTokens(ranked []diff.FileChange) []string {
	var tokens []string
	seen := make(map[string]bool)
	add := func(token string) {
		token = strings.TrimSpace(token)
		key := strings.ToLower(token)
		if utf8.RuneCountInString(token) <= 1 || seen[key] || len(TokenVariants(token)) == 0 {
			return
		}
		seen[key] = true
		tokens = append(tokens, token)
	}

	for i, fc := range ranked {
		if i >= maxTokenFiles {
			break
		}
		add(path.Base(fc.Path))
		for j, kw := range fc.Keywords {
			if j >= maxTokenKeywords {
				break
			}
			add(kw)
		}
		for j, label := range fc.ContextLabels {
			if j >= maxTokenLabels {
				break
			}
			add(label)
		}
		add(scopeDir(fc.Path))
	}
	return tokens
}

// RequiredTokenCount is two for diffs touching more than ten files, otherwise one,
// never more than the tokens available.
func RequiredTokenCount(fileCount int, tokens []string) int {
	n := 1
	if fileCount > manyFilesCutoff {
		n = manyFilesRequired
	}
	return min(n, len(tokens))
}
