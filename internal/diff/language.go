package diff

import (
	"path/filepath"
	"regexp"
	"strings"
)

type rule struct {
	pattern *regexp.Regexp
	weight  int
}

// ruleSet is the declarative rule table entry for one language family.
type ruleSet struct {
	// scoring patterns, each match counted and multiplied by its weight
	scoring []rule
	// declarations are tried in order on each line; the first capture group is the label
	declarations []*regexp.Regexp
}

var extensionLanguages = map[string]Language{
	".ts":    LangTS,
	".tsx":   LangTS,
	".mts":   LangTS,
	".cts":   LangTS,
	".js":    LangJS,
	".jsx":   LangJS,
	".mjs":   LangJS,
	".cjs":   LangJS,
	".py":    LangPy,
	".rs":    LangRust,
	".c":     LangC,
	".h":     LangC,
	".cpp":   LangCPP,
	".cc":    LangCPP,
	".cxx":   LangCPP,
	".hpp":   LangCPP,
	".hxx":   LangCPP,
	".cmake": LangCMake,
	".go":    LangGo,
}

var (
	jsDeclarations = []*regexp.Regexp{
		regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)`),
		regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+([A-Za-z_$][\w$]*)`),
		regexp.MustCompile(`^\s*(?:export\s+)?(?:declare\s+)?interface\s+([A-Za-z_$][\w$]*)`),
		regexp.MustCompile(`^\s*(?:export\s+)?(?:declare\s+)?type\s+([A-Za-z_$][\w$]*)\s*(?:<[^>]*>)?\s*=`),
		regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*(?::[^=]+)?=\s*(?:async\s*)?(?:\([^)]*\)|[A-Za-z_$][\w$]*)\s*(?::[^=]+)?=>`),
		regexp.MustCompile(`^\s*(?:(?:public|private|protected|static|readonly|async|override)\s+)*([A-Za-z_$][\w$]*)\s*\([^)]*\)\s*(?::\s*[^{]+)?\{\s*$`),
	}
	jsScoring = []rule{
		{regexp.MustCompile(`\bclass\s+[A-Za-z_$]`), 3},
		{regexp.MustCompile(`\bfunction\b`), 2},
		{regexp.MustCompile(`=>`), 2},
		{regexp.MustCompile(`^\s*export\b`), 1},
		{regexp.MustCompile(`^\s*import\b|\brequire\(`), 1},
	}
	tsScoring = append([]rule{
		{regexp.MustCompile(`\binterface\s+[A-Za-z_$]`), 3},
		{regexp.MustCompile(`\btype\s+[A-Za-z_$][\w$]*\s*(?:<[^>]*>)?\s*=`), 2},
		{regexp.MustCompile(`\benum\s+[A-Za-z_$]`), 2},
	}, jsScoring...)

	cDeclarations = []*regexp.Regexp{
		regexp.MustCompile(`^\s*(?:typedef\s+)?(?:struct|union|enum)\s+([A-Za-z_]\w*)`),
		regexp.MustCompile(`^\s*(?:(?:static|inline|extern|const|unsigned|signed)\s+)*[A-Za-z_][\w\s\*]*?[\s\*]([A-Za-z_]\w*)\s*\([^;]*\)\s*\{?\s*$`),
		regexp.MustCompile(`^\s*#\s*define\s+([A-Za-z_]\w*)`),
	}
	cppDeclarations = append([]*regexp.Regexp{
		regexp.MustCompile(`^\s*namespace\s+([A-Za-z_]\w*)`),
		regexp.MustCompile(`^\s*(?:template\s*<[^>]*>\s*)?(?:class|struct)\s+([A-Za-z_]\w*)`),
		regexp.MustCompile(`^\s*(?:[\w:<>,\*&]+\s+)*\**&?((?:[A-Za-z_]\w*::)+~?[A-Za-z_]\w*)\s*\(`),
	}, cDeclarations...)
	cScoring = []rule{
		{regexp.MustCompile(`\b(?:struct|union|enum)\s+[A-Za-z_]\w*\s*\{`), 3},
		{regexp.MustCompile(`\btypedef\b`), 2},
		{regexp.MustCompile(`^\s*[A-Za-z_][\w\s\*]*[\s\*][A-Za-z_]\w*\s*\([^;]*\)\s*\{?\s*$`), 2},
		{regexp.MustCompile(`^\s*#\s*include\b`), 1},
		{regexp.MustCompile(`^\s*#\s*define\b`), 1},
	}
	cppScoring = append([]rule{
		{regexp.MustCompile(`\bclass\s+[A-Za-z_]\w*`), 3},
		{regexp.MustCompile(`\bnamespace\s+[A-Za-z_]\w*`), 2},
		{regexp.MustCompile(`\btemplate\s*<`), 2},
		{regexp.MustCompile(`\b(?:virtual|override)\b`), 1},
	}, cScoring...)

	languageRules = map[Language]ruleSet{
		LangTS: {scoring: tsScoring, declarations: jsDeclarations},
		LangJS: {scoring: jsScoring, declarations: jsDeclarations},
		LangPy: {
			scoring: []rule{
				{regexp.MustCompile(`^\s*class\s+[A-Za-z_]`), 3},
				{regexp.MustCompile(`^\s*(?:async\s+)?def\s+[A-Za-z_]`), 2},
				{regexp.MustCompile(`^\s*@[A-Za-z_]`), 1},
				{regexp.MustCompile(`^\s*(?:from\s+\S+\s+)?import\b`), 1},
			},
			declarations: []*regexp.Regexp{
				regexp.MustCompile(`^\s*(?:async\s+)?def\s+([A-Za-z_]\w*)`),
				regexp.MustCompile(`^\s*class\s+([A-Za-z_]\w*)`),
			},
		},
		LangRust: {
			scoring: []rule{
				{regexp.MustCompile(`\b(?:struct|enum|trait)\s+[A-Za-z_]`), 3},
				{regexp.MustCompile(`^\s*impl\b`), 3},
				{regexp.MustCompile(`\bfn\s+[A-Za-z_]`), 2},
				{regexp.MustCompile(`\bmacro_rules!`), 2},
				{regexp.MustCompile(`^\s*(?:pub\s+)?use\b`), 1},
			},
			declarations: []*regexp.Regexp{
				regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?(?:const\s+)?(?:async\s+)?(?:unsafe\s+)?fn\s+([A-Za-z_]\w*)`),
				regexp.MustCompile(`^\s*impl(?:<[^>]*>)?\s+(?:[\w:<>]+\s+for\s+)?([A-Za-z_]\w*)`),
				regexp.MustCompile(`^\s*(?:pub(?:\([^)]*\))?\s+)?(?:struct|enum|trait|mod)\s+([A-Za-z_]\w*)`),
			},
		},
		LangC:   {scoring: cScoring, declarations: cDeclarations},
		LangCPP: {scoring: cppScoring, declarations: cppDeclarations},
		LangCMake: {
			scoring: []rule{
				{regexp.MustCompile(`(?i)\badd_(?:library|executable|custom_target)\s*\(`), 3},
				{regexp.MustCompile(`(?i)\btarget_\w+\s*\(`), 2},
				{regexp.MustCompile(`(?i)\bfind_package\s*\(`), 2},
				{regexp.MustCompile(`(?i)^\s*(?:set|option)\s*\(`), 1},
			},
			declarations: []*regexp.Regexp{
				regexp.MustCompile(`(?i)^\s*add_(?:library|executable|custom_target)\s*\(\s*([A-Za-z_][\w.-]*)`),
				regexp.MustCompile(`(?i)^\s*(?:function|macro)\s*\(\s*([A-Za-z_]\w*)`),
			},
		},
		LangGo: {
			scoring: []rule{
				{regexp.MustCompile(`\btype\s+[A-Za-z_]\w*\s+(?:struct|interface)\b`), 3},
				{regexp.MustCompile(`^func\b`), 2},
				{regexp.MustCompile(`^\s*import\b`), 1},
			},
			declarations: []*regexp.Regexp{
				regexp.MustCompile(`^func\s+(?:\([^)]*\)\s*)?([A-Za-z_]\w*)`),
				regexp.MustCompile(`^type\s+([A-Za-z_]\w*)`),
			},
		},
	}
)

// control-flow words that loose function patterns can capture
var notDeclarations = map[string]bool{
	"if": true, "for": true, "while": true, "switch": true, "catch": true, "return": true,
	"else": true, "do": true, "sizeof": true, "function": true, "new": true, "delete": true,
}

// DetectLanguage maps a path to its language family by suffix.
// Unknown paths return LangNone.
func DetectLanguage(path string) Language {
	base := strings.ToLower(filepath.Base(path))
	if base == "cmakelists.txt" {
		return LangCMake
	}
	return extensionLanguages[filepath.Ext(base)]
}

// ComputeWeight scores how much structural code the lines contain. It never returns less than 1.
func ComputeWeight(lang Language, lines []string) int {
	rules, ok := languageRules[lang]
	if !ok {
		return 1
	}
	total := 0
	for _, r := range rules.scoring {
		for _, line := range lines {
			total += len(r.pattern.FindAllStringIndex(line, -1)) * r.weight
		}
	}
	if total < 1 {
		return 1
	}
	return total
}

// ExtractContextLabels scans backward from every hunk start through the file's
// current content and collects the nearest enclosing declaration names.
func ExtractContextLabels(lang Language, content []string, hunkStarts []int) []string {
	rules, ok := languageRules[lang]
	if !ok || len(content) == 0 {
		return nil
	}

	var labels []string
	seen := make(map[string]bool)
	for _, start := range hunkStarts {
		if len(labels) >= maxContextLabels {
			break
		}
		label := nearestDeclaration(rules.declarations, content, start)
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	return labels
}

func nearestDeclaration(patterns []*regexp.Regexp, content []string, start int) string {
	i := start - 1
	if i >= len(content) {
		i = len(content) - 1
	}
	for ; i >= 0; i-- {
		for _, re := range patterns {
			m := re.FindStringSubmatch(content[i])
			if m == nil || m[1] == "" || notDeclarations[m[1]] {
				continue
			}
			return m[1]
		}
	}
	return ""
}
