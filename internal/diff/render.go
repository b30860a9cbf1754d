package diff

import (
	"fmt"
	"strings"
)

// RenderSummary renders the plain-text synopsis of s, listing at most maxFiles files.
func RenderSummary(s *Summary, maxFiles int) string {
	if s == nil {
		return ""
	}
	if maxFiles <= 0 {
		maxFiles = DefaultMaxSummaryFiles
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Files changed: %d (lockfiles: %d)\n", s.FileCount(), len(s.LockfileSummaries))
	fmt.Fprintf(&b, "Total: +%d/-%d\n", s.TotalAdditions, s.TotalDeletions)

	for i, fc := range s.Files {
		if i >= maxFiles {
			break
		}
		b.WriteString("- ")
		b.WriteString(FormatFileLine(fc))
		b.WriteByte('\n')
	}
	for _, line := range s.LockfileSummaries {
		b.WriteString("- ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if extra := len(s.Files) - maxFiles; extra > 0 {
		fmt.Fprintf(&b, "...and %d more files\n", extra)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatFileLine renders "path (changeType) [labels] (+a/-d): highlights".
// Modified files omit the change type.
func FormatFileLine(fc FileChange) string {
	parts := []string{fc.Path}
	if fc.ChangeType != ChangeModified && fc.ChangeType != "" {
		parts = append(parts, "("+string(fc.ChangeType)+")")
	}
	if len(fc.ContextLabels) > 0 {
		parts = append(parts, "["+strings.Join(fc.ContextLabels, ", ")+"]")
	}
	stats := fmt.Sprintf("(+%d/-%d)", fc.Additions, fc.Deletions)
	if len(fc.Highlights) > 0 {
		stats += ": " + strings.Join(fc.Highlights, "; ")
	}
	parts = append(parts, stats)
	return strings.Join(parts, " ")
}
