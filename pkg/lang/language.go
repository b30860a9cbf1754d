package lang

import "strings"

// Language represents supported output languages
type Language string

const (
	English           Language = "en"
	ChineseSimplified Language = "zh"
)

// String returns the string representation of the language
func (l Language) String() string {
	return string(l)
}

// IsValid checks if the language is valid
func (l Language) IsValid() bool {
	switch l {
	case English, ChineseSimplified:
		return true
	default:
		return false
	}
}

// DisplayName returns the display name of the language
func (l Language) DisplayName() string {
	switch l {
	case English:
		return "English"
	case ChineseSimplified:
		return "中文（简体）"
	default:
		return string(l)
	}
}

// SupportedLanguages lists every language with a catalog
func SupportedLanguages() []Language {
	return []Language{English, ChineseSimplified}
}

// DefaultLanguage returns the default language
func DefaultLanguage() Language {
	return English
}

// ParseLanguage parses a string to a Language.
// Regional variants such as "zh-CN" or "en_US" collapse to their base language.
func ParseLanguage(s string) Language {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexAny(s, "-_"); i > 0 {
		s = s[:i]
	}
	l := Language(s)
	if l.IsValid() {
		return l
	}
	return DefaultLanguage()
}
