// Package normalize repairs raw model completions into commit messages that are
// specific, correctly shaped and length-bounded.
package normalize

import (
	"regexp"
	"strings"

	"github.com/huimingz/commitcraft/internal/prompt"
)

var (
	bulletRe = regexp.MustCompile(`^\s*(?:[-*•+]\s+|\d+[.)]\s+)`)
	headerRe = regexp.MustCompile(`^([a-zA-Z]+)(?:\(([^)]*)\))?(!)?:\s*(.*)$`)
)

const quoteChars = "\"'`“”‘’「」"

// Parsed is a model completion split into its header parts and body candidates.
type Parsed struct {
	Type     string // lower-cased, empty when the subject had no conventional header
	Scope    string
	Breaking bool
	Subject  string
	Body     []string
}

// Parse strips code fences, bullets and quotes from raw and splits it into
// subject and body candidate lines.
func Parse(raw string) Parsed {
	var p Parsed
	subjectSeen := false

	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "```") {
			continue
		}
		if !subjectSeen {
			subjectSeen = true
			parseSubject(&p, cleanLine(trimmed))
			continue
		}
		if body := cleanLine(trimmed); body != "" {
			p.Body = append(p.Body, body)
		}
	}
	return p
}

func parseSubject(p *Parsed, line string) {
	m := headerRe.FindStringSubmatch(line)
	if m == nil || !prompt.ValidTypes[strings.ToLower(m[1])] {
		p.Subject = line
		return
	}
	p.Type = strings.ToLower(m[1])
	p.Scope = strings.TrimSpace(m[2])
	p.Breaking = m[3] != ""
	p.Subject = strings.Trim(strings.TrimSpace(m[4]), quoteChars)
}

// cleanLine removes a leading bullet marker and surrounding quotes
func cleanLine(line string) string {
	line = bulletRe.ReplaceAllString(line, "")
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(line), quoteChars))
}
