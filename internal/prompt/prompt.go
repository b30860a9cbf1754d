// Package prompt derives commit type, scope and required tokens from a diff
// summary and composes the instructions handed to the model.
package prompt

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"text/template"

	"github.com/cloudwego/eino/schema"

	"github.com/huimingz/commitcraft/internal/diff"
	"github.com/huimingz/commitcraft/internal/tokenizer"
	"github.com/huimingz/commitcraft/pkg/lang"
)

// Subject styles
const (
	StyleImperative = "imperative"
	StyleSentence   = "sentence"
)

const (
	defaultKeyFiles = 5
	// room left in the budget for the model's reply
	replyReserveTokens = 256
)

var systemTmpl = template.Must(template.New("system_prompt").Parse(systemPromptTemplate))

// RepoContext is optional repository metadata shown to the model
type RepoContext struct {
	Status         string   // short status summary
	StagedNames    string   // name-status listing of staged files
	RecentSubjects []string // most recent first
}

// Options controls prompt composition
type Options struct {
	Language         lang.Language
	Style            string
	MinSubjectLength int
	MaxSubjectLength int
	IncludeBody      bool
	MinBodyLines     int
	MaxBodyLines     int
	UserContext      string // free-form hint from the developer
	MaxKeyFiles      int
	MaxPromptTokens  int // 0 disables token budgeting
	TokenizerModel   string
}

// Context is everything derived for one generation attempt. The normalizer holds
// the model's reply to Type, Scope and the required tokens recorded here.
type Context struct {
	Type               string
	Scope              string
	RequiredTokens     []string
	RequiredTokenCount int
	Ranked             []diff.FileChange
	Summary            *diff.Summary
	Repo               RepoContext
	Language           lang.Language

	System       string
	User         string
	PromptTokens int  // estimated, only when a token budget is set
	DiffTrimmed  bool // raw diff shortened or dropped to fit the budget
}

// Messages returns the system and user messages for the chat model
func (c *Context) Messages() []*schema.Message {
	return []*schema.Message{
		schema.SystemMessage(c.System),
		schema.UserMessage(c.User),
	}
}

// TouchedFiles counts files including lockfiles
func (c *Context) TouchedFiles() int {
	return c.Summary.FileCount()
}

// ChangedLines returns total additions plus deletions
func (c *Context) ChangedLines() int {
	if c.Summary == nil {
		return 0
	}
	return c.Summary.TotalAdditions + c.Summary.TotalDeletions
}

// Build derives the prompt context for a summary.
func Build(summary *diff.Summary, repo RepoContext, opts Options) *Context {
	if summary == nil {
		summary = &diff.Summary{}
	}
	if !opts.Language.IsValid() {
		opts.Language = lang.DefaultLanguage()
	}
	if opts.MaxKeyFiles <= 0 {
		opts.MaxKeyFiles = defaultKeyFiles
	}

	ranked := Rank(summary.Files)
	tokens := RequiredTokens(ranked)
	c := &Context{
		Type:               DeriveType(summary.Files),
		Scope:              DeriveScope(ranked),
		RequiredTokens:     tokens,
		RequiredTokenCount: RequiredTokenCount(summary.FileCount(), tokens),
		Ranked:             ranked,
		Summary:            summary,
		Repo:               repo,
		Language:           opts.Language,
	}

	c.System = buildSystemPrompt(c, opts)
	head := buildUserPrompt(c, opts)
	rawDiff := summary.RawDiff

	if opts.MaxPromptTokens > 0 {
		used := tokenizer.CountTokens(c.System, opts.TokenizerModel) + tokenizer.CountTokens(head, opts.TokenizerModel)
		budget := opts.MaxPromptTokens - used - replyReserveTokens
		if budget <= 0 {
			rawDiff = ""
		} else {
			rawDiff = tokenizer.TruncateToTokenLimit(rawDiff, budget, opts.TokenizerModel)
		}
		c.DiffTrimmed = rawDiff != summary.RawDiff
	}

	c.User = head + diffSection(rawDiff)
	if opts.MaxPromptTokens > 0 {
		c.PromptTokens = tokenizer.CountTokens(c.System, opts.TokenizerModel) + tokenizer.CountTokens(c.User, opts.TokenizerModel)
	}
	return c
}

func buildSystemPrompt(c *Context, opts Options) string {
	style := opts.Style
	if style == "" {
		style = StyleImperative
	}
	data := struct {
		Type                string
		Scope               string
		RequiredTokens      string
		RequiredTokenCount  int
		Style               string
		MinSubjectLength    int
		MaxSubjectLength    int
		IncludeBody         bool
		MinBodyLines        int
		MaxBodyLines        int
		LanguageInstruction string
		UserContext         string
	}{
		Type:                c.Type,
		Scope:               c.Scope,
		RequiredTokens:      strings.Join(c.RequiredTokens, ", "),
		RequiredTokenCount:  c.RequiredTokenCount,
		Style:               style,
		MinSubjectLength:    opts.MinSubjectLength,
		MaxSubjectLength:    opts.MaxSubjectLength,
		IncludeBody:         opts.IncludeBody,
		MinBodyLines:        opts.MinBodyLines,
		MaxBodyLines:        opts.MaxBodyLines,
		LanguageInstruction: lang.DefaultCatalog.Lookup(opts.Language, "prompt.lang"),
		UserContext:         opts.UserContext,
	}

	var buf bytes.Buffer
	if err := systemTmpl.Execute(&buf, data); err != nil {
		return systemPromptTemplate
	}
	return buf.String()
}

func buildUserPrompt(c *Context, opts Options) string {
	var b strings.Builder
	b.WriteString("Please write a commit message for the following staged changes.\n\n")

	b.WriteString("## Suggested Header\n")
	fmt.Fprintf(&b, "type: %s\nscope: %s\n", c.Type, c.Scope)
	if len(c.RequiredTokens) > 0 {
		fmt.Fprintf(&b, "required tokens (mention at least %d): %s\n", c.RequiredTokenCount, strings.Join(c.RequiredTokens, ", "))
	}
	b.WriteString("\n")

	if len(c.Ranked) > 0 {
		b.WriteString("## Key Files\n")
		for i, fc := range c.Ranked {
			if i >= opts.MaxKeyFiles {
				break
			}
			fmt.Fprintf(&b, "%d. %s\n", i+1, keyFileLine(fc))
		}
		b.WriteString("\n")
	}

	if len(c.Summary.LockfileSummaries) > 0 {
		b.WriteString("## Lockfiles\n")
		for _, line := range c.Summary.LockfileSummaries {
			fmt.Fprintf(&b, "- %s\n", line)
		}
		b.WriteString("\n")
	}

	if status := strings.TrimSpace(c.Repo.Status); status != "" {
		b.WriteString("## Git Status Overview\n```\n")
		b.WriteString(status)
		b.WriteString("\n```\n\n")
	}
	if staged := strings.TrimSpace(c.Repo.StagedNames); staged != "" {
		b.WriteString("## Staged Files\n```\n")
		b.WriteString(staged)
		b.WriteString("\n```\n\n")
	}
	if len(c.Repo.RecentSubjects) > 0 {
		b.WriteString("## Recent Commits (style reference)\n")
		for _, subject := range c.Repo.RecentSubjects {
			fmt.Fprintf(&b, "- %s\n", subject)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Change Summary\n")
	b.WriteString(c.Summary.Text)
	b.WriteString("\n\n")
	return b.String()
}

func keyFileLine(fc diff.FileChange) string {
	parts := []string{fmt.Sprintf("%s [%s] (+%d/-%d, weight %d)", fc.Path, fc.ChangeType, fc.Additions, fc.Deletions, fc.Weight)}
	if fc.Language != diff.LangNone {
		parts = append(parts, "language: "+string(fc.Language))
	}
	if len(fc.Keywords) > 0 {
		parts = append(parts, "keywords: "+strings.Join(fc.Keywords, ", "))
	}
	if len(fc.ContextLabels) > 0 {
		parts = append(parts, "context: "+strings.Join(fc.ContextLabels, ", "))
	}
	if len(fc.Highlights) > 0 {
		parts = append(parts, "notes: "+strings.Join(fc.Highlights, "; "))
	}
	if fc.OldPath != "" {
		parts = append(parts, "renamed from "+path.Base(fc.OldPath))
	}
	return strings.Join(parts, "; ")
}

func diffSection(rawDiff string) string {
	if rawDiff == "" {
		return "## Staged Changes (Diff)\n(omitted to fit the context window)\n"
	}
	return "## Staged Changes (Diff)\n```diff\n" + rawDiff + "\n```\n"
}
