package diff

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxRawChars is the raw diff ceiling before truncation
	DefaultMaxRawChars = 28000
	// DefaultMaxSummaryFiles is how many file lines the rendered summary lists
	DefaultMaxSummaryFiles = 6
	// TruncationMarker is appended to a truncated raw diff
	TruncationMarker = "\n... [diff truncated]"
)

// Options tunes Summarize.
type Options struct {
	MaxRawChars     int
	MaxSummaryFiles int
	// Reader supplies on-disk content for context labels; nil disables them
	Reader ContentReader
}

func (o Options) withDefaults() Options {
	if o.MaxRawChars <= 0 {
		o.MaxRawChars = DefaultMaxRawChars
	}
	if o.MaxSummaryFiles <= 0 {
		o.MaxSummaryFiles = DefaultMaxSummaryFiles
	}
	return o
}

// SplitBlocks splits a unified diff into per-file blocks, each starting with its
// "diff --git" header. Text before the first header is dropped.
func SplitBlocks(raw string) []string {
	var blocks []string
	var current strings.Builder
	started := false

	for _, line := range strings.SplitAfter(raw, "\n") {
		if strings.HasPrefix(line, "diff --git ") {
			if started {
				blocks = append(blocks, current.String())
				current.Reset()
			}
			started = true
		}
		if started {
			current.WriteString(line)
		}
	}
	if started {
		blocks = append(blocks, current.String())
	}
	return blocks
}

// Summarize runs the file summarizer over every block of raw and aggregates the result.
// Lockfile blocks are compressed into one-line summaries and excluded from Files and totals.
func Summarize(ctx context.Context, raw string, opts Options) (*Summary, error) {
	opts = opts.withDefaults()
	s := &Summary{LanguageWeights: make(map[Language]int)}

	for _, block := range SplitBlocks(raw) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if path := BlockPath(block); IsLockfile(path) {
			s.LockfileSummaries = append(s.LockfileSummaries, SummarizeLockfile(path, block))
			continue
		}
		fc, err := SummarizeBlock(ctx, block, opts.Reader)
		if err != nil {
			return nil, fmt.Errorf("summarize %s: %w", BlockPath(block), err)
		}
		s.Files = append(s.Files, fc)
		s.TotalAdditions += fc.Additions
		s.TotalDeletions += fc.Deletions
		if fc.Language != LangNone {
			s.LanguageWeights[fc.Language] += fc.Weight
		}
	}

	s.Text = RenderSummary(s, opts.MaxSummaryFiles)
	s.RawDiff, s.Truncated = TruncateRaw(raw, opts.MaxRawChars)
	return s, nil
}

// TruncateRaw cuts raw to at most limit characters and appends TruncationMarker.
// Input within the limit is returned unchanged.
func TruncateRaw(raw string, limit int) (string, bool) {
	if limit <= 0 || utf8.RuneCountInString(raw) <= limit {
		return raw, false
	}
	n := 0
	for i := range raw {
		if n == limit {
			return raw[:i] + TruncationMarker, true
		}
		n++
	}
	return raw, false
}
