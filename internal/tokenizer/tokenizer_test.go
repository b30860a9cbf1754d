package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountTokens(t *testing.T) {
	assert.Zero(t, CountTokens("", "gpt-4o"))
	assert.Positive(t, CountTokens("hello world", "gpt-4o"))
	assert.Positive(t, CountTokens("hello world", "qwen2.5-coder:7b"))

	short := CountTokens("one line", "gpt-4o")
	long := CountTokens(strings.Repeat("one line\n", 50), "gpt-4o")
	assert.Greater(t, long, short)
}

func TestTruncateToTokenLimit(t *testing.T) {
	t.Run("fits unchanged", func(t *testing.T) {
		text := "diff --git a/a.go b/a.go\n+x := 1"
		assert.Equal(t, text, TruncateToTokenLimit(text, 1000, "gpt-4o"))
	})

	t.Run("no limit", func(t *testing.T) {
		text := strings.Repeat("line of text\n", 100)
		assert.Equal(t, text, TruncateToTokenLimit(text, 0, "gpt-4o"))
	})

	t.Run("cuts on line boundary", func(t *testing.T) {
		text := strings.Repeat("+added line of code\n", 500)
		got := TruncateToTokenLimit(text, 100, "gpt-4o")

		assert.Less(t, len(got), len(text))
		assert.True(t, strings.HasSuffix(got, TruncatedMarker))
		for _, line := range strings.Split(strings.TrimSuffix(got, "\n"+TruncatedMarker), "\n") {
			assert.Equal(t, "+added line of code", line)
		}
	})
}

func TestProviderTokenLimit(t *testing.T) {
	tests := []struct {
		provider string
		model    string
		expected int
	}{
		{"openai", "gpt-4o", 100000},
		{"openai", "gpt-3.5-turbo", 3000},
		{"OpenAI", "gpt-3.5-turbo-16k", 12000},
		{"deepseek", "deepseek-chat", 56000},
		{"gemini", "gemini-2.0-flash", 900000},
		{"ollama", "qwen2.5-coder", 6000},
		{"unknown", "x", 8000},
	}

	for _, tt := range tests {
		t.Run(tt.provider+"/"+tt.model, func(t *testing.T) {
			assert.Equal(t, tt.expected, ProviderTokenLimit(tt.provider, tt.model))
		})
	}
}
