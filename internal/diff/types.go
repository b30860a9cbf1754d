// Package diff turns a staged unified diff into structured per-file summaries.
package diff

// ChangeType classifies a file's diff entry
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeDeleted  ChangeType = "deleted"
	ChangeModified ChangeType = "modified"
	ChangeRenamed  ChangeType = "renamed"
	ChangeBinary   ChangeType = "binary"
)

// Language is a source language family detected from a file path
type Language string

const (
	LangNone  Language = ""
	LangTS    Language = "ts"
	LangJS    Language = "js"
	LangPy    Language = "py"
	LangRust  Language = "rs"
	LangC     Language = "c"
	LangCPP   Language = "cpp"
	LangCMake Language = "cmake"
	LangGo    Language = "go"
)

const (
	maxContextLabels = 4
	maxHighlights    = 3
	maxKeywords      = 3
)

// FileChange is one file's diff entry after reconciliation and signal extraction.
type FileChange struct {
	Path          string     `json:"path" yaml:"path"`
	OldPath       string     `json:"old_path,omitempty" yaml:"old_path,omitempty"`
	ChangeType    ChangeType `json:"change_type" yaml:"change_type"`
	Language      Language   `json:"language,omitempty" yaml:"language,omitempty"`
	Additions     int        `json:"additions" yaml:"additions"`
	Deletions     int        `json:"deletions" yaml:"deletions"`
	NetLines      []string   `json:"net_lines,omitempty" yaml:"net_lines,omitempty"`
	ContextLabels []string   `json:"context_labels,omitempty" yaml:"context_labels,omitempty"`
	Highlights    []string   `json:"highlights,omitempty" yaml:"highlights,omitempty"`
	Keywords      []string   `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Weight        int        `json:"weight" yaml:"weight"`
}

// Changed returns additions plus deletions
func (f FileChange) Changed() int {
	return f.Additions + f.Deletions
}

// Summary aggregates every FileChange of one staged diff.
type Summary struct {
	Files             []FileChange     `json:"files" yaml:"files"`
	LockfileSummaries []string         `json:"lockfile_summaries,omitempty" yaml:"lockfile_summaries,omitempty"`
	LanguageWeights   map[Language]int `json:"language_weights,omitempty" yaml:"language_weights,omitempty"`
	Text              string           `json:"summary_text" yaml:"summary_text"`
	RawDiff           string           `json:"-" yaml:"-"`
	Truncated         bool             `json:"truncated" yaml:"truncated"`
	TotalAdditions    int              `json:"total_additions" yaml:"total_additions"`
	TotalDeletions    int              `json:"total_deletions" yaml:"total_deletions"`
}

// IsEmpty reports whether the diff touched nothing at all
func (s *Summary) IsEmpty() bool {
	return s == nil || (len(s.Files) == 0 && len(s.LockfileSummaries) == 0)
}

// FileCount returns the number of touched files including lockfiles
func (s *Summary) FileCount() int {
	if s == nil {
		return 0
	}
	return len(s.Files) + len(s.LockfileSummaries)
}
