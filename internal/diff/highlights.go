package diff

import (
	"path/filepath"
	"regexp"
	"strings"
)

const binaryHighlight = "binary file changed"

var (
	buildOutputDirs = map[string]bool{"dist": true, "build": true, "out": true, "target": true, "bin": true, "obj": true}
	testDirs        = map[string]bool{"test": true, "tests": true, "__tests__": true, "spec": true, "testdata": true}
	docExtensions   = map[string]bool{".md": true, ".mdx": true, ".rst": true, ".adoc": true, ".txt": true}

	configExtensions = map[string]bool{
		".json": true, ".yaml": true, ".yml": true, ".toml": true, ".ini": true, ".cfg": true,
		".conf": true, ".env": true, ".xml": true, ".properties": true,
	}
	configBasenames = map[string]bool{
		"makefile": true, "dockerfile": true, ".gitignore": true, ".editorconfig": true,
		".dockerignore": true, "go.mod": true, ".gitattributes": true,
	}

	// hint per top-level directory
	moduleHints = map[string]string{
		".github":     "ci workflow",
		".circleci":   "ci workflow",
		".gitlab":     "ci workflow",
		"scripts":     "tooling scripts",
		"tools":       "tooling scripts",
		"include":     "public headers",
		"cmake":       "build scripts",
		"deploy":      "deployment",
		"deployments": "deployment",
		"migrations":  "database migrations",
		"api":         "api surface",
		"proto":       "api surface",
		"web":         "frontend",
		"ui":          "frontend",
		"frontend":    "frontend",
		"assets":      "assets",
		"static":      "assets",
		"public":      "assets",
		"locales":     "translations",
		"i18n":        "translations",
	}

	testFileRe = regexp.MustCompile(`(?i)(?:_test\.go|\.(?:test|spec)\.[a-z]+|^test_.*\.py|_test\.py|Test\.java)$`)

	contentHints = []struct {
		pattern   *regexp.Regexp
		hint      string
		addedOnly bool
	}{
		{regexp.MustCompile(`(?i)\b(?:add_library|add_executable|add_custom_target|target_link_libraries|target_sources)\s*\(`), "build target changes", false},
		{regexp.MustCompile(`^\s*#\s*include\s*[<"]`), "include directives", false},
		{regexp.MustCompile(`\bnamespace\s+[A-Za-z_]\w*`), "namespace changes", false},
		{regexp.MustCompile(`\b(?:class|struct|interface|enum|trait|union)\s+[A-Za-z_]\w*|^\s*(?:export\s+)?type\s+[A-Za-z_]\w*`), "type definitions", false},
		{regexp.MustCompile(`^\s*export\b|\bmodule\.exports\b|^\s*pub\s+(?:fn|struct|enum|trait|mod|use)\b`), "export changes", false},
		{regexp.MustCompile(`(?i)\b(?:fix(?:es|ed)?|bug|hotfix|crash|regression|workaround)\b`), "bug fix", true},
		{regexp.MustCompile(`(?i)\b(?:perf|performance|optimi[sz](?:e|ed|es|ation)|memoi[sz]e|faster|latency|throughput)\b`), "performance", true},
	}
)

// pathHints returns static hints derived from the path string alone.
func pathHints(path string) []string {
	var hints []string
	base := filepath.Base(path)
	lowerBase := strings.ToLower(base)
	ext := strings.ToLower(filepath.Ext(base))
	segments := strings.Split(strings.ToLower(filepath.ToSlash(path)), "/")
	dirs := segments[:len(segments)-1]

	if IsLockfile(path) {
		hints = append(hints, "lockfile")
	}
	if containsAny(dirs, buildOutputDirs) || strings.HasSuffix(lowerBase, ".min.js") || ext == ".map" {
		hints = append(hints, "build output")
	}
	if containsAny(dirs, testDirs) || testFileRe.MatchString(base) {
		hints = append(hints, "test changes")
	}
	if (docExtensions[ext] && !buildBasenames[lowerBase]) || containsAny(dirs, map[string]bool{"docs": true, "doc": true}) {
		hints = append(hints, "documentation")
	}
	if configExtensions[ext] || configBasenames[lowerBase] {
		hints = append(hints, "configuration")
	}
	if len(dirs) > 0 {
		if hint, ok := moduleHints[dirs[0]]; ok {
			hints = append(hints, hint)
		}
	}
	return hints
}

func contentHintsFor(added, removed []string) []string {
	var hints []string
	for _, h := range contentHints {
		if anyMatch(h.pattern, added) || (!h.addedOnly && anyMatch(h.pattern, removed)) {
			hints = append(hints, h.hint)
		}
	}
	return hints
}

func changeTypeHint(ct ChangeType) string {
	switch ct {
	case ChangeAdded:
		return "new file"
	case ChangeDeleted:
		return "file removed"
	case ChangeRenamed:
		return "file renamed"
	default:
		return ""
	}
}

// computeHighlights merges path, content and change-type hints, capped at three.
func computeHighlights(path string, ct ChangeType, added, removed []string, changed bool) []string {
	var acc uniqueList
	candidates := append(pathHints(path), contentHintsFor(added, removed)...)
	if hint := changeTypeHint(ct); hint != "" {
		candidates = append(candidates, hint)
	}
	for _, c := range candidates {
		if acc.add(c) >= maxHighlights {
			break
		}
	}
	if len(acc.items) == 0 && changed {
		return []string{"update " + filepath.Base(path)}
	}
	return acc.items
}

func containsAny(items []string, set map[string]bool) bool {
	for _, item := range items {
		if set[item] {
			return true
		}
	}
	return false
}

func anyMatch(re *regexp.Regexp, lines []string) bool {
	for _, line := range lines {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// Category buckets a path for commit type derivation
type Category string

const (
	CategoryCode   Category = "code"
	CategoryTest   Category = "test"
	CategoryDocs   Category = "docs"
	CategoryConfig Category = "config"
)

var buildBasenames = map[string]bool{
	"cmakelists.txt": true, "makefile": true, "dockerfile": true, "build.gradle": true,
	"pom.xml": true, "meson.build": true, "justfile": true, "taskfile.yml": true,
}

// Categorize classifies a path as test, docs, config (including build files) or code.
// Test paths win over build files, build files over docs, docs over other config.
func Categorize(path string) Category {
	base := filepath.Base(path)
	lowerBase := strings.ToLower(base)
	ext := strings.ToLower(filepath.Ext(base))
	segments := strings.Split(strings.ToLower(filepath.ToSlash(path)), "/")
	dirs := segments[:len(segments)-1]

	switch {
	case containsAny(dirs, testDirs) || testFileRe.MatchString(base):
		return CategoryTest
	case buildBasenames[lowerBase] || configBasenames[lowerBase]:
		return CategoryConfig
	case docExtensions[ext] || containsAny(dirs, map[string]bool{"docs": true, "doc": true}):
		return CategoryDocs
	case configExtensions[ext] || ext == ".cmake" ||
		IsLockfile(path) || (len(dirs) > 0 && (dirs[0] == ".github" || dirs[0] == ".circleci" || dirs[0] == "cmake")):
		return CategoryConfig
	default:
		return CategoryCode
	}
}
