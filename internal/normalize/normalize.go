package normalize

import (
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/huimingz/commitcraft/internal/diff"
	"github.com/huimingz/commitcraft/internal/prompt"
	"github.com/huimingz/commitcraft/pkg/lang"
)

// State is a step of the normalization pipeline
type State string

const (
	StateRaw         State = "raw"
	StateParsed      State = "parsed"
	StateValidated   State = "validated"
	StateAccepted    State = "accepted"
	StateSynthesized State = "synthesized"
	StateFinalized   State = "finalized"
)

// Options controls normalization. Zero values disable the matching bound.
type Options struct {
	Language         lang.Language
	Style            string
	Prefix           string
	Suffix           string
	MinSubjectLength int
	MaxSubjectLength int
	LengthThreshold  int
	IncludeBody      bool
	MinBodyLines     int
	MaxBodyLines     int
}

// Draft is the commit message as it moves through the pipeline.
type Draft struct {
	Type     string
	Scope    string
	Breaking bool
	Subject  string
	Body     []string
	// Reasons the model's subject was rejected; empty when it was accepted
	Reasons []Reason
	Trail   []State
}

func (d *Draft) enter(s State) {
	d.Trail = append(d.Trail, s)
}

// State returns the latest state reached
func (d *Draft) State() State {
	if len(d.Trail) == 0 {
		return StateRaw
	}
	return d.Trail[len(d.Trail)-1]
}

// Header returns "type(scope): subject"
func (d *Draft) Header() string {
	var b strings.Builder
	b.WriteString(d.Type)
	if d.Scope != "" {
		b.WriteString("(" + d.Scope + ")")
	}
	if d.Breaking {
		b.WriteString("!")
	}
	b.WriteString(": ")
	b.WriteString(d.Subject)
	return b.String()
}

// Result is a finalized commit message
type Result struct {
	Message     string
	Draft       Draft
	Synthesized bool
	// Repetitive is set when the message looks degenerate and is worth regenerating
	Repetitive bool
}

// Normalize turns a raw completion into a commit message that satisfies the
// constraints derived in c. An empty raw string yields a fully synthesized message.
func Normalize(raw string, c *prompt.Context, opts Options) Result {
	if c == nil {
		c = prompt.Build(nil, prompt.RepoContext{}, prompt.Options{Language: opts.Language})
	}
	vocab := lang.VocabularyFor(opts.Language)

	d := Draft{Trail: []State{StateRaw}}
	parsed := Parse(raw)
	d.enter(StateParsed)

	validation := Validate(parsed.Subject, Constraints{
		RequiredTokens:     c.RequiredTokens,
		RequiredTokenCount: c.RequiredTokenCount,
		MinLength:          opts.MinSubjectLength,
		Vocabulary:         vocab,
	})
	d.enter(StateValidated)

	var result Result
	if validation.OK() {
		d.Type = resolveType(parsed.Type, c.Type)
		d.Scope = firstNonEmpty(parsed.Scope, c.Scope)
		d.Breaking = parsed.Breaking
		d.Subject = cleanSubject(parsed.Subject)
		d.enter(StateAccepted)
	} else {
		d.Type = c.Type
		d.Scope = c.Scope
		d.Subject = BuildSpecificSubject(c, vocab)
		d.Reasons = validation.Reasons
		d.enter(StateSynthesized)
		result.Synthesized = true
	}

	policy := LengthPolicy{Min: opts.MinSubjectLength, Max: opts.MaxSubjectLength, Threshold: opts.LengthThreshold}
	if policy.Applies(c.ChangedLines()) {
		d.Subject = ControlLength(d.Subject, policy, expansionFragments(d.Subject, c.Ranked, vocab), c.RequiredTokens, vocab)
		if result.Synthesized && !MatchRequiredTokens(d.Subject, c.RequiredTokens, c.RequiredTokenCount) {
			d.Subject = compactSubject(c, vocab, policy.Max)
		}
	}
	if opts.Style == prompt.StyleSentence && vocab.Language == lang.English {
		d.Subject = capitalize(d.Subject)
	}

	if opts.IncludeBody {
		d.Body = NormalizeBody(parsed.Body, c, BodyPolicy{Min: opts.MinBodyLines, Max: opts.MaxBodyLines}, vocab)
	}
	d.enter(StateFinalized)

	result.Draft = d
	result.Message = assemble(d, opts.Prefix, opts.Suffix)
	result.Repetitive = IsRepetitive(result.Message)
	return result
}

func assemble(d Draft, prefix, suffix string) string {
	var b strings.Builder
	header := d.Header()
	if p := strings.TrimSpace(prefix); p != "" {
		header = p + " " + header
	}
	if sfx := strings.TrimSpace(suffix); sfx != "" {
		header += " " + sfx
	}
	b.WriteString(header)
	if len(d.Body) > 0 {
		b.WriteString("\n\n")
		for i, line := range d.Body {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("- " + line)
		}
	}
	return b.String()
}

func resolveType(parsed, derived string) string {
	if prompt.ValidTypes[parsed] {
		return parsed
	}
	return derived
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func cleanSubject(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimRight(s, ".。 ")
}

// expansionFragments returns fragments for ranked files the subject does not mention yet
func expansionFragments(subject string, ranked []diff.FileChange, vocab lang.Vocabulary) []string {
	normalized := prompt.NormalizeForMatch(subject)
	var extras []string
	for _, fc := range ranked {
		if strings.Contains(normalized, prompt.NormalizeForMatch(path.Base(fc.Path))) {
			continue
		}
		extras = append(extras, Fragment(fc, vocab))
	}
	return extras
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
