// Package generate runs one commit message generation cycle: it reads the staged
// changes, builds the prompt, asks the model and normalizes whatever comes back.
package generate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/huimingz/commitcraft/internal/config"
	"github.com/huimingz/commitcraft/internal/diff"
	"github.com/huimingz/commitcraft/internal/git"
	"github.com/huimingz/commitcraft/internal/llm"
	"github.com/huimingz/commitcraft/internal/log"
	"github.com/huimingz/commitcraft/internal/normalize"
	"github.com/huimingz/commitcraft/internal/prompt"
	"github.com/huimingz/commitcraft/internal/tokenizer"
	"github.com/huimingz/commitcraft/internal/ui"
	"github.com/huimingz/commitcraft/pkg/lang"
)

var (
	// ErrNoStagedChanges is returned when the index holds nothing to commit
	ErrNoStagedChanges = errors.New("no staged changes found")

	// ErrCancelled is returned when a run is cancelled before it completes
	ErrCancelled = fmt.Errorf("generation cancelled: %w", context.Canceled)
)

const debugTextLimit = 4000

// Request describes one generation run
type Request struct {
	Model    config.ModelConfig
	Language lang.Language
	Context  string // free-form hint from the developer
	Commit   config.CommitConfig
	Diff     config.DiffConfig
}

// Response is the outcome of a completed run
type Response struct {
	ID      string
	Message string
	Raw     string // model text the message was normalized from
	Draft   normalize.Draft
	Prompt  *prompt.Context

	Synthesized bool // subject built from the diff
	Fallback    bool // the model failed and the message is fully synthetic
	Regenerated bool // the first reply looked degenerate and was replaced
	Repetitive  bool // the final message still looks degenerate
	Stats       ui.ExecutionStats
}

// Options wires the generator to its collaborators
type Options struct {
	Git      git.Executor
	Sessions *llm.SessionCache // required by Generate only
	Printer  *ui.StreamPrinter // optional
	// Reader supplies file content for context labels; defaults to the staged index through Git
	Reader diff.ContentReader
}

// Generator runs generation cycles. Only one run is active at a time; starting
// a new one cancels the previous run.
type Generator struct {
	opts Options

	mu           sync.Mutex
	activeCancel context.CancelFunc
	activeSeq    uint64
}

// New creates a generator
func New(opts Options) (*Generator, error) {
	if opts.Git == nil {
		return nil, fmt.Errorf("git executor is not configured")
	}
	return &Generator{opts: opts}, nil
}

// Cancel stops the active run, if any
func (g *Generator) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.activeCancel != nil {
		g.activeCancel()
	}
}

func (g *Generator) start(ctx context.Context) (context.Context, func()) {
	runCtx, cancel := context.WithCancel(ctx)

	g.mu.Lock()
	if g.activeCancel != nil {
		g.activeCancel()
	}
	g.activeSeq++
	seq := g.activeSeq
	g.activeCancel = cancel
	g.mu.Unlock()

	return runCtx, func() {
		g.mu.Lock()
		if g.activeSeq == seq {
			g.activeCancel = nil
		}
		g.mu.Unlock()
		cancel()
	}
}

// Prepare reads the staged changes and builds the prompt context without
// calling the model.
func (g *Generator) Prepare(ctx context.Context, req Request) (*prompt.Context, error) {
	raw, err := g.opts.Git.DiffCached(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get staged changes: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, ErrNoStagedChanges
	}

	repo := g.repoContext(ctx, req.Diff.RecentCommits)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary, err := diff.Summarize(ctx, raw, diff.Options{
		MaxRawChars:     req.Diff.MaxRawChars,
		MaxSummaryFiles: req.Diff.MaxSummaryFiles,
		Reader:          g.reader(),
	})
	if err != nil {
		return nil, err
	}
	if summary.IsEmpty() {
		return nil, ErrNoStagedChanges
	}

	return prompt.Build(summary, repo, promptOptions(req)), nil
}

// repoContext gathers the optional repository metadata. Failures only cost context.
func (g *Generator) repoContext(ctx context.Context, recent int) prompt.RepoContext {
	var repo prompt.RepoContext
	var err error

	if repo.Status, err = g.opts.Git.Status(ctx); err != nil {
		log.Debug("git status unavailable: %v", err)
	}
	if repo.StagedNames, err = g.opts.Git.StagedNameStatus(ctx); err != nil {
		log.Debug("staged name-status unavailable: %v", err)
	}
	if repo.RecentSubjects, err = g.opts.Git.RecentSubjects(ctx, recent); err != nil {
		log.Debug("recent commit subjects unavailable: %v", err)
	}
	return repo
}

// Generate runs a full cycle. Model failures fall back to a synthesized message;
// only model load failures and cancellation are returned as errors.
func (g *Generator) Generate(ctx context.Context, req Request) (*Response, error) {
	if g.opts.Sessions == nil {
		return nil, fmt.Errorf("model session cache is not configured")
	}
	runCtx, done := g.start(ctx)
	defer done()

	resp := &Response{ID: uuid.NewString()}
	resp.Stats.StartTime = time.Now()

	g.step(1, "Reading staged changes...")
	pc, err := g.Prepare(runCtx, req)
	if err != nil {
		return nil, cancelled(runCtx, err)
	}
	resp.Prompt = pc
	g.success(fmt.Sprintf("Summarized %d file(s), +%d/-%d", pc.TouchedFiles(), pc.Summary.TotalAdditions, pc.Summary.TotalDeletions))

	log.DebugAttempt(resp.ID, "model %s/%s, type %s, scope %s, required tokens %v (need %d)",
		req.Model.Provider, req.Model.Model, pc.Type, pc.Scope, pc.RequiredTokens, pc.RequiredTokenCount)
	if pc.PromptTokens > 0 {
		log.DebugAttempt(resp.ID, "prompt estimate %d tokens, diff trimmed: %v", pc.PromptTokens, pc.DiffTrimmed)
	}
	log.DebugText("system prompt", pc.System, debugTextLimit)
	log.DebugText("user prompt", pc.User, debugTextLimit)

	g.step(2, fmt.Sprintf("Loading model %s/%s...", req.Model.Provider, req.Model.Model))
	session, err := g.opts.Sessions.Acquire(runCtx, req.Model)
	if err != nil {
		return nil, cancelled(runCtx, err)
	}
	stop := context.AfterFunc(runCtx, session.Interrupt)
	defer stop()

	g.step(3, "Generating commit message...")
	nopts := normalizeOptions(req)
	stream := req.Commit.StreamEnabled()

	raw, fallback, err := g.complete(runCtx, session, pc, stream, resp)
	if err != nil {
		return nil, err
	}
	result := normalize.Normalize(raw, pc, nopts)

	if result.Repetitive && !fallback {
		log.DebugAttempt(resp.ID, "reply looks repetitive, regenerating once")
		g.warn("Reply looks repetitive, regenerating")
		raw, fallback, err = g.complete(runCtx, session, pc, stream, resp)
		if err != nil {
			return nil, err
		}
		result = normalize.Normalize(raw, pc, nopts)
		resp.Regenerated = true
	}

	if runCtx.Err() != nil {
		return nil, cancelled(runCtx, runCtx.Err())
	}

	if len(result.Draft.Reasons) > 0 {
		log.DebugAttempt(resp.ID, "model subject rejected: %v", result.Draft.Reasons)
	}
	log.DebugAttempt(resp.ID, "normalization ended in %s, trail: %v", result.Draft.State(), result.Draft.Trail)

	resp.Raw = raw
	resp.Message = result.Message
	resp.Draft = result.Draft
	resp.Synthesized = result.Synthesized
	resp.Fallback = fallback
	resp.Repetitive = result.Repetitive
	resp.Stats.Synthesized = result.Synthesized
	resp.Stats.EndTime = time.Now()

	log.DebugDuration("generation", resp.Stats.Duration())
	log.DebugTokenUsage(resp.Stats.PromptTokens, resp.Stats.CompletionTokens, resp.Stats.TotalTokens)
	return resp, nil
}

// complete asks the model for a reply: streamed first when enabled, then one
// non-streamed retry. When both fail the reply is empty and fallback is set,
// which makes the normalizer synthesize the whole message.
func (g *Generator) complete(ctx context.Context, s *llm.Session, pc *prompt.Context, stream bool, resp *Response) (string, bool, error) {
	msgs := pc.Messages()

	var (
		text string
		err  error
	)
	resp.Stats.Attempts++
	if stream {
		text, err = g.stream(ctx, s, msgs, &resp.Stats)
	} else {
		text, err = g.generate(ctx, s, msgs, &resp.Stats)
	}
	if err == nil {
		return text, false, nil
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return "", false, cancelled(ctx, err)
	}

	log.DebugAttempt(resp.ID, "model call failed (%s): %v, retrying without streaming", llm.ClassifyError(err), err)
	resp.Stats.Attempts++
	text, err = g.generate(ctx, s, msgs, &resp.Stats)
	if err == nil {
		return text, false, nil
	}
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return "", false, cancelled(ctx, err)
	}

	log.DebugAttempt(resp.ID, "retry failed: %v, synthesizing from the diff", err)
	g.warn("Model unavailable, building the message from the diff")
	return "", true, nil
}

func (g *Generator) stream(ctx context.Context, s *llm.Session, msgs []*schema.Message, stats *ui.ExecutionStats) (string, error) {
	reader, err := s.Stream(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("LLM stream failed: %w", err)
	}
	defer reader.Close()

	var content strings.Builder
	printed := false
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		chunk, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("stream read error: %w", err)
		}

		if chunk.Content != "" {
			content.WriteString(chunk.Content)
			if g.opts.Printer != nil {
				_ = g.opts.Printer.PrintLLMContent(chunk.Content)
				printed = true
			}
		}
		recordUsage(stats, chunk)
	}

	if printed {
		_ = g.opts.Printer.Newline()
	}
	return content.String(), nil
}

func (g *Generator) generate(ctx context.Context, s *llm.Session, msgs []*schema.Message, stats *ui.ExecutionStats) (string, error) {
	msg, err := s.Generate(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("LLM generate failed: %w", err)
	}
	recordUsage(stats, msg)
	return msg.Content, nil
}

// recordUsage keeps the largest usage figures seen; providers report them on the last chunk
func recordUsage(stats *ui.ExecutionStats, msg *schema.Message) {
	if msg == nil || msg.ResponseMeta == nil || msg.ResponseMeta.Usage == nil {
		return
	}
	usage := msg.ResponseMeta.Usage
	stats.PromptTokens = max(stats.PromptTokens, usage.PromptTokens)
	stats.CompletionTokens = max(stats.CompletionTokens, usage.CompletionTokens)
	stats.TotalTokens = max(stats.TotalTokens, usage.TotalTokens)
}

// cancelled maps errors of a cancelled run to ErrCancelled
func cancelled(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		return ErrCancelled
	}
	return err
}

func promptOptions(req Request) prompt.Options {
	budget := req.Diff.MaxPromptTokens
	if budget == 0 {
		budget = tokenizer.ProviderTokenLimit(req.Model.Provider, req.Model.Model)
	}
	if budget < 0 {
		budget = 0
	}
	tokenizerModel := req.Diff.TokenizerModel
	if tokenizerModel == "" {
		tokenizerModel = req.Model.Model
	}

	return prompt.Options{
		Language:         req.Language,
		Style:            req.Commit.Style,
		MinSubjectLength: req.Commit.MinSubjectLength,
		MaxSubjectLength: req.Commit.MaxSubjectLength,
		IncludeBody:      req.Commit.IncludeBody,
		MinBodyLines:     req.Commit.MinBodyLines,
		MaxBodyLines:     req.Commit.MaxBodyLines,
		UserContext:      req.Context,
		MaxPromptTokens:  budget,
		TokenizerModel:   tokenizerModel,
	}
}

func normalizeOptions(req Request) normalize.Options {
	return normalize.Options{
		Language:         req.Language,
		Style:            req.Commit.Style,
		Prefix:           req.Commit.Prefix,
		Suffix:           req.Commit.Suffix,
		MinSubjectLength: req.Commit.MinSubjectLength,
		MaxSubjectLength: req.Commit.MaxSubjectLength,
		LengthThreshold:  req.Commit.LengthThreshold,
		IncludeBody:      req.Commit.IncludeBody,
		MinBodyLines:     req.Commit.MinBodyLines,
		MaxBodyLines:     req.Commit.MaxBodyLines,
	}
}

func (g *Generator) step(n int, msg string) {
	if g.opts.Printer != nil {
		_ = g.opts.Printer.PrintStep(n, msg)
	}
	log.Debug("Step %d: %s", n, msg)
}

func (g *Generator) success(msg string) {
	if g.opts.Printer != nil {
		_ = g.opts.Printer.PrintSuccess(msg)
	}
}

func (g *Generator) warn(msg string) {
	if g.opts.Printer != nil {
		_ = g.opts.Printer.PrintWarning(msg)
		return
	}
	log.Warn("%s", msg)
}

func (g *Generator) reader() diff.ContentReader {
	if g.opts.Reader != nil {
		return g.opts.Reader
	}
	return g.opts.Git
}
