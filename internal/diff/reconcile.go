package diff

import (
	"regexp"
	"strconv"
	"strings"
)

var hunkHeaderRe = regexp.MustCompile(`^@@ -\d+(?:,\d+)? \+(\d+)(?:,\d+)? @@`)

// Reconciliation is the result of cancelling moved lines out of one file block.
type Reconciliation struct {
	Additions  int      // raw added line count
	Deletions  int      // raw removed line count
	Added      []string // net-added lines, in order, deduplicated
	Removed    []string // net-removed lines, in order, deduplicated
	HunkStarts []int    // 1-based new-file line number of each hunk
}

// Net returns the net changed lines with removed lines marked by a leading "-".
func (r Reconciliation) Net() []string {
	out := make([]string, 0, len(r.Added)+len(r.Removed))
	out = append(out, r.Added...)
	for _, line := range r.Removed {
		out = append(out, "-"+line)
	}
	return out
}

// Lines returns net-added followed by net-removed lines without markers.
func (r Reconciliation) Lines() []string {
	out := make([]string, 0, len(r.Added)+len(r.Removed))
	out = append(out, r.Added...)
	return append(out, r.Removed...)
}

// Reconcile splits a file block into added and removed lines and cancels lines
// that were removed and re-added with identical whitespace-normalized content.
func Reconcile(block string) Reconciliation {
	var r Reconciliation
	var added, removed []string
	inHunk := false

	for _, line := range strings.Split(block, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if m := hunkHeaderRe.FindStringSubmatch(line); m != nil {
			inHunk = true
			if start, err := strconv.Atoi(m[1]); err == nil {
				r.HunkStarts = append(r.HunkStarts, start)
			}
			continue
		}
		if !inHunk {
			// File headers (diff --git, index, ---, +++, mode lines) precede the first hunk.
			continue
		}
		switch {
		case strings.HasPrefix(line, "+"):
			r.Additions++
			added = append(added, line[1:])
		case strings.HasPrefix(line, "-"):
			r.Deletions++
			removed = append(removed, line[1:])
		case strings.HasPrefix(line, "diff --git "):
			inHunk = false
		}
	}

	pending := make(map[string]int, len(removed))
	for _, line := range removed {
		pending[normalizeLine(line)]++
	}

	seenAdded := make(map[string]bool)
	for _, line := range added {
		key := normalizeLine(line)
		if pending[key] > 0 {
			pending[key]--
			continue
		}
		if key == "" || seenAdded[key] {
			continue
		}
		seenAdded[key] = true
		r.Added = append(r.Added, line)
	}

	seenRemoved := make(map[string]bool)
	for _, line := range removed {
		key := normalizeLine(line)
		if pending[key] <= 0 {
			continue
		}
		pending[key]--
		if key == "" || seenRemoved[key] {
			continue
		}
		seenRemoved[key] = true
		r.Removed = append(r.Removed, line)
	}

	return r
}

// normalizeLine collapses all whitespace runs so indentation changes cancel out.
func normalizeLine(line string) string {
	return strings.Join(strings.Fields(line), " ")
}
