package diff

import (
	"path/filepath"
	"regexp"
	"strings"
)

const keywordScanLines = 200

// keywordRules lists the identifier patterns per language. The secondary tier is
// consulted only when the primary tier finds nothing.
type keywordRules struct {
	primary   []*regexp.Regexp
	secondary []*regexp.Regexp
	skip      *regexp.Regexp
}

var (
	jsKeywordRules = keywordRules{
		primary: []*regexp.Regexp{
			regexp.MustCompile(`^\s*export\s+(?:default\s+)?(?:declare\s+)?(?:abstract\s+)?(?:async\s+)?(?:function\s*\*?|class|interface|type|enum|const|let|var)\s+([A-Za-z_$][\w$]*)`),
		},
		secondary: []*regexp.Regexp{
			regexp.MustCompile(`^\s*(?:async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)`),
			regexp.MustCompile(`^\s*class\s+([A-Za-z_$][\w$]*)`),
			regexp.MustCompile(`^\s*(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*(?:async\s*)?\([^)]*\)\s*=>`),
		},
	}

	cKeywordRules = keywordRules{
		primary: []*regexp.Regexp{
			regexp.MustCompile(`\bnamespace\s+([A-Za-z_]\w*)`),
			regexp.MustCompile(`\b(?:class|struct|union|enum(?:\s+class)?)\s+([A-Za-z_]\w*)`),
			regexp.MustCompile(`^\s*(?:[\w:<>,\*&]+\s+)+\**&?([A-Za-z_~][\w:~]*)\s*\([^;]*\)\s*(?:const\s*)?(?:noexcept\s*)?(?:override\s*)?[{;]?\s*$`),
		},
		skip: regexp.MustCompile(`^\s*(?:return|else|if|while|for|switch|case|delete|new|throw|goto|co_return)\b`),
	}

	keywordTable = map[Language]keywordRules{
		LangTS:  jsKeywordRules,
		LangJS:  jsKeywordRules,
		LangC:   cKeywordRules,
		LangCPP: cKeywordRules,
		LangCMake: {
			primary: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(?:add_library|add_executable|add_custom_target|target_\w+)\s*\(\s*([A-Za-z_][\w.-]*)`),
			},
		},
		LangPy: {
			primary: []*regexp.Regexp{
				regexp.MustCompile(`^\s*(?:async\s+)?def\s+([A-Za-z_]\w*)`),
				regexp.MustCompile(`^\s*class\s+([A-Za-z_]\w*)`),
			},
		},
		LangRust: {
			primary: []*regexp.Regexp{
				regexp.MustCompile(`\b(?:fn|struct|enum|trait|mod|type)\s+([A-Za-z_]\w*)`),
				regexp.MustCompile(`\bmacro_rules!\s*([A-Za-z_]\w*)`),
			},
		},
		LangGo: {
			primary: []*regexp.Regexp{
				regexp.MustCompile(`^func\s+(?:\([^)]*\)\s*)?([A-Z]\w*)`),
				regexp.MustCompile(`^type\s+([A-Z]\w*)`),
			},
			secondary: []*regexp.Regexp{
				regexp.MustCompile(`^func\s+(?:\([^)]*\)\s*)?([A-Za-z_]\w*)`),
				regexp.MustCompile(`^type\s+([A-Za-z_]\w*)`),
			},
		},
	}

	styleExtensions = map[string]bool{".css": true, ".scss": true, ".sass": true, ".less": true}
	selectorRe      = regexp.MustCompile(`^\s*([.#]?[A-Za-z_-][^{};@]*?)\s*\{`)

	// ordered; the hint of the first matching pattern wins per line
	styleHints = []struct {
		pattern *regexp.Regexp
		hint    string
	}{
		{regexp.MustCompile(`(?i)@media\b`), "responsive"},
		{regexp.MustCompile(`(?i)@keyframes\b|\b(?:animation|transition|transform)\s*:`), "animation"},
		{regexp.MustCompile(`(?i)\b(?:border|outline)(?:-[a-z-]+)?\s*:`), "border"},
		{regexp.MustCompile(`(?i)\b(?:font|line-height|letter-spacing|text-[a-z-]+)(?:-[a-z-]+)?\s*:`), "typography"},
		{regexp.MustCompile(`(?i)\b(?:color|background|fill|stroke)(?:-[a-z-]+)?\s*:`), "color"},
		{regexp.MustCompile(`(?i)\b(?:margin|padding|gap)(?:-[a-z-]+)?\s*:`), "spacing"},
		{regexp.MustCompile(`(?i)\b(?:display|flex|grid|position|width|height|top|left|right|bottom|z-index|align-[a-z]+|justify-[a-z]+)(?:-[a-z-]+)?\s*:`), "layout"},
	}
)

// ExtractKeywords returns up to three identifiers or selectors from the changed lines.
func ExtractKeywords(path string, added, removed []string) []string {
	lines := scanLines(added, removed)
	if styleExtensions[strings.ToLower(filepath.Ext(path))] {
		return styleKeywords(lines)
	}

	rules, ok := keywordTable[DetectLanguage(path)]
	if !ok {
		return nil
	}
	if rules.skip != nil {
		kept := lines[:0:0]
		for _, line := range lines {
			if !rules.skip.MatchString(line) {
				kept = append(kept, line)
			}
		}
		lines = kept
	}
	keywords := collectMatches(rules.primary, lines)
	if len(keywords) == 0 {
		keywords = collectMatches(rules.secondary, lines)
	}
	return keywords
}

func scanLines(added, removed []string) []string {
	lines := make([]string, 0, keywordScanLines)
	for _, set := range [][]string{added, removed} {
		for _, line := range set {
			if len(lines) >= keywordScanLines {
				return lines
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			lines = append(lines, line)
		}
	}
	return lines
}

func collectMatches(patterns []*regexp.Regexp, lines []string) []string {
	var acc uniqueList
	for _, line := range lines {
		for _, re := range patterns {
			for _, m := range re.FindAllStringSubmatch(line, -1) {
				if notDeclarations[m[1]] {
					continue
				}
				if acc.add(m[1]) >= maxKeywords {
					return acc.items
				}
			}
		}
	}
	return acc.items
}

func styleKeywords(lines []string) []string {
	var selectors uniqueList
	for _, line := range lines {
		m := selectorRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		sel := strings.TrimSpace(m[1])
		if sel == "" || len(sel) > 40 {
			continue
		}
		if selectors.add(sel) >= maxKeywords {
			break
		}
	}
	if len(selectors.items) > 0 {
		return selectors.items
	}

	var hints uniqueList
	for _, line := range lines {
		for _, h := range styleHints {
			if h.pattern.MatchString(line) {
				hints.add(h.hint)
				break
			}
		}
		if len(hints.items) >= maxKeywords {
			break
		}
	}
	return hints.items
}

// uniqueList keeps first-seen order and deduplicates case-insensitively.
type uniqueList struct {
	items []string
	seen  map[string]bool
}

func (u *uniqueList) add(s string) int {
	if u.seen == nil {
		u.seen = make(map[string]bool)
	}
	key := strings.ToLower(s)
	if s == "" || u.seen[key] {
		return len(u.items)
	}
	u.seen[key] = true
	u.items = append(u.items, s)
	return len(u.items)
}
