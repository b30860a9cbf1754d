package prompt

import (
	"path"
	"sort"
	"strings"

	"github.com/huimingz/commitcraft/internal/diff"
)

const (
	scopeNoDirectory = "core"
	scopeNoFiles     = "repo"
	dominantShare    = 0.5
)

// ValidTypes are the accepted conventional commit types
var ValidTypes = map[string]bool{
	"feat":     true,
	"fix":      true,
	"docs":     true,
	"style":    true,
	"refactor": true,
	"perf":     true,
	"test":     true,
	"chore":    true,
	"build":    true,
	"ci":       true,
	"revert":   true,
}

// directories that hold code without naming a module
var containerDirs = map[string]bool{
	"src": true, "lib": true, "app": true, "pkg": true, "internal": true, "packages": true,
	"source": true, "sources": true, "cmd": true,
}

// Score is a file's ranking score: changed lines, or weight when nothing was counted.
func Score(fc diff.FileChange) int {
	if n := fc.Changed(); n > 0 {
		return n
	}
	return fc.Weight
}

// Rank orders files by descending Score. Equal scores keep their diff order.
func Rank(files []diff.FileChange) []diff.FileChange {
	ranked := make([]diff.FileChange, len(files))
	copy(ranked, files)
	sort.SliceStable(ranked, func(i, j int) bool {
		return Score(ranked[i]) > Score(ranked[j])
	})
	return ranked
}

// DeriveType picks test, docs or chore when that bucket holds more than half of
// the weighted change, otherwise refactor for net deletions and feat for the rest.
func DeriveType(files []diff.FileChange) string {
	if len(files) == 0 {
		return "chore"
	}

	buckets := make(map[diff.Category]int)
	total, adds, dels := 0, 0, 0
	for _, fc := range files {
		score := Score(fc)
		buckets[diff.Categorize(fc.Path)] += score
		total += score
		adds += fc.Additions
		dels += fc.Deletions
	}

	for _, c := range []struct {
		category diff.Category
		typ      string
	}{
		{diff.CategoryTest, "test"},
		{diff.CategoryDocs, "docs"},
		{diff.CategoryConfig, "chore"},
	} {
		if total > 0 && float64(buckets[c.category])/float64(total) > dominantShare {
			return c.typ
		}
	}
	if dels > adds {
		return "refactor"
	}
	return "feat"
}

// DeriveScope names the module of the highest-ranked file.
func DeriveScope(ranked []diff.FileChange) string {
	if len(ranked) == 0 {
		return scopeNoFiles
	}
	if dir := scopeDir(ranked[0].Path); dir != "" {
		return dir
	}
	return scopeNoDirectory
}

// scopeDir returns the first directory that is not a generic container such as
// src or internal. When every directory is generic the last one is used.
func scopeDir(p string) string {
	dir := path.Dir(strings.ReplaceAll(p, "\\", "/"))
	if dir == "." || dir == "/" || dir == "" {
		return ""
	}
	segments := strings.Split(strings.Trim(dir, "/"), "/")
	for _, seg := range segments {
		if !containerDirs[strings.ToLower(seg)] {
			return cleanScope(seg)
		}
	}
	return cleanScope(segments[len(segments)-1])
}

// cleanScope drops the leading dot of hidden directories such as .github
func cleanScope(seg string) string {
	if trimmed := strings.TrimLeft(seg, "."); trimmed != "" {
		return trimmed
	}
	return seg
}
