package diff

import (
	"context"
	"regexp"
	"strings"
)

var gitHeaderRe = regexp.MustCompile(`^diff --git "?a/(.+?)"? "?b/(.+?)"?$`)

type blockHeader struct {
	path       string
	oldPath    string
	changeType ChangeType
}

// parseHeader reads the structural markers that precede the first hunk.
func parseHeader(block string) blockHeader {
	h := blockHeader{changeType: ChangeModified}
	var minus, plus string
	binary := false

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.HasPrefix(line, "@@") {
			break
		}
		switch {
		case strings.HasPrefix(line, "diff --git "):
			if m := gitHeaderRe.FindStringSubmatch(line); m != nil {
				h.oldPath, h.path = m[1], m[2]
			}
		case strings.HasPrefix(line, "new file mode"):
			h.changeType = ChangeAdded
		case strings.HasPrefix(line, "deleted file mode"):
			h.changeType = ChangeDeleted
		case strings.HasPrefix(line, "rename from "):
			h.oldPath = strings.TrimPrefix(line, "rename from ")
			h.changeType = ChangeRenamed
		case strings.HasPrefix(line, "rename to "):
			h.path = strings.TrimPrefix(line, "rename to ")
			h.changeType = ChangeRenamed
		case strings.HasPrefix(line, "Binary files ") && strings.HasSuffix(line, " differ"),
			strings.HasPrefix(line, "GIT binary patch"):
			binary = true
		case strings.HasPrefix(line, "--- "):
			minus = strings.TrimPrefix(strings.TrimPrefix(line, "--- "), "a/")
		case strings.HasPrefix(line, "+++ "):
			plus = strings.TrimPrefix(strings.TrimPrefix(line, "+++ "), "b/")
		}
	}

	if plus != "" && plus != "/dev/null" {
		h.path = plus
	} else if plus == "/dev/null" && minus != "" && minus != "/dev/null" {
		h.path = minus
		h.changeType = ChangeDeleted
	}
	if minus == "/dev/null" && h.changeType == ChangeModified {
		h.changeType = ChangeAdded
	}
	if binary {
		h.changeType = ChangeBinary
	}
	if h.changeType != ChangeRenamed || h.oldPath == h.path {
		h.oldPath = ""
	}
	return h
}

// BlockPath returns the target path of a single file block.
func BlockPath(block string) string {
	return parseHeader(block).path
}

// SummarizeBlock builds the FileChange for one file block. The reader may be nil;
// only cancellation of ctx produces an error.
func SummarizeBlock(ctx context.Context, block string, reader ContentReader) (FileChange, error) {
	h := parseHeader(block)
	fc := FileChange{
		Path:       h.path,
		OldPath:    h.oldPath,
		ChangeType: h.changeType,
	}

	if h.changeType == ChangeBinary {
		fc.Highlights = []string{binaryHighlight}
		fc.Weight = 1
		return fc, nil
	}

	r := Reconcile(block)
	fc.Language = DetectLanguage(h.path)
	fc.Additions = r.Additions
	fc.Deletions = r.Deletions
	fc.NetLines = r.Net()
	fc.Weight = ComputeWeight(fc.Language, r.Lines())
	fc.Keywords = ExtractKeywords(h.path, r.Added, r.Removed)
	fc.Highlights = computeHighlights(h.path, h.changeType, r.Added, r.Removed, fc.Changed() > 0)

	if fc.Language != LangNone && h.changeType != ChangeDeleted && len(r.HunkStarts) > 0 {
		content, err := readLines(ctx, reader, h.path)
		if err != nil {
			return FileChange{}, err
		}
		fc.ContextLabels = ExtractContextLabels(fc.Language, content, r.HunkStarts)
	}
	return fc, nil
}
