package config

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  ModelConfig
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid openai config",
			config: ModelConfig{
				Provider: "openai",
				APIKey:   "sk-xxx",
				Model:    "gpt-4o",
			},
			wantErr: false,
		},
		{
			name: "valid deepseek config",
			config: ModelConfig{
				Provider: "deepseek",
				APIKey:   "sk-xxx",
				Model:    "deepseek-chat",
			},
			wantErr: false,
		},
		{
			name: "valid ollama config without api key",
			config: ModelConfig{
				Provider: "ollama",
				Model:    "qwen2.5:14b",
				BaseURL:  "http://localhost:11434/v1",
			},
			wantErr: false,
		},
		{
			name: "missing provider",
			config: ModelConfig{
				APIKey: "sk-xxx",
				Model:  "gpt-4o",
			},
			wantErr: true,
			errMsg:  "provider is required",
		},
		{
			name: "invalid provider",
			config: ModelConfig{
				Provider: "invalid",
				APIKey:   "sk-xxx",
				Model:    "gpt-4o",
			},
			wantErr: true,
			errMsg:  "unsupported provider",
		},
		{
			name: "missing model",
			config: ModelConfig{
				Provider: "openai",
				APIKey:   "sk-xxx",
			},
			wantErr: true,
			errMsg:  "model is required",
		},
		{
			name: "missing api key for openai",
			config: ModelConfig{
				Provider: "openai",
				Model:    "gpt-4o",
			},
			wantErr: true,
			errMsg:  "api_key is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_GetModel(t *testing.T) {
	cfg := &Config{
		DefaultModel: "deepseek",
		Models: map[string]ModelConfig{
			"deepseek": {
				Provider: "deepseek",
				APIKey:   "sk-deepseek",
				Model:    "deepseek-chat",
			},
			"gpt4": {
				Provider: "openai",
				APIKey:   "sk-openai",
				Model:    "gpt-4o",
			},
		},
		Language: "en",
	}

	t.Run("get existing model", func(t *testing.T) {
		model, err := cfg.GetModel("gpt4")
		require.NoError(t, err)
		assert.Equal(t, "openai", model.Provider)
		assert.Equal(t, "gpt-4o", model.Model)
	})

	t.Run("get default model when empty name", func(t *testing.T) {
		model, err := cfg.GetModel("")
		require.NoError(t, err)
		assert.Equal(t, "deepseek", model.Provider)
		assert.Equal(t, "deepseek-chat", model.Model)
	})

	t.Run("get non-existing model", func(t *testing.T) {
		_, err := cfg.GetModel("nonexistent")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestConfig_GetModelWithEnvOverride(t *testing.T) {
	cfg := &Config{
		DefaultModel: "deepseek",
		Models: map[string]ModelConfig{
			"deepseek": {
				Provider: "deepseek",
				APIKey:   "sk-deepseek",
				Model:    "deepseek-chat",
			},
			"gpt4": {
				Provider: "openai",
				APIKey:   "sk-openai",
				Model:    "gpt-4o",
			},
		},
	}

	t.Run("env variable overrides default", func(t *testing.T) {
		os.Setenv("COMMITCRAFT_MODEL", "gpt4")
		defer os.Unsetenv("COMMITCRAFT_MODEL")

		model, err := cfg.GetModel("")
		require.NoError(t, err)
		assert.Equal(t, "openai", model.Provider)
	})

	t.Run("explicit name overrides env", func(t *testing.T) {
		os.Setenv("COMMITCRAFT_MODEL", "gpt4")
		defer os.Unsetenv("COMMITCRAFT_MODEL")

		model, err := cfg.GetModel("deepseek")
		require.NoError(t, err)
		assert.Equal(t, "deepseek", model.Provider)
	})
}

func TestConfig_ExpandEnvInAPIKey(t *testing.T) {
	os.Setenv("TEST_API_KEY", "my-secret-key")
	defer os.Unsetenv("TEST_API_KEY")

	cfg := &Config{
		DefaultModel: "test",
		Models: map[string]ModelConfig{
			"test": {
				Provider: "openai",
				APIKey:   "${TEST_API_KEY}",
				Model:    "gpt-4o",
			},
		},
	}

	model, err := cfg.GetModel("test")
	require.NoError(t, err)
	assert.Equal(t, "my-secret-key", model.APIKey)
}

func TestConfig_GetLanguage(t *testing.T) {
	t.Run("returns configured language", func(t *testing.T) {
		cfg := &Config{Language: "zh"}
		assert.Equal(t, "zh", cfg.GetLanguage(""))
	})

	t.Run("override with parameter", func(t *testing.T) {
		cfg := &Config{Language: "zh"}
		assert.Equal(t, "en", cfg.GetLanguage("en"))
	})

	t.Run("env variable override", func(t *testing.T) {
		os.Setenv("COMMITCRAFT_LANG", "zh-CN")
		defer os.Unsetenv("COMMITCRAFT_LANG")

		cfg := &Config{Language: "zh"}
		assert.Equal(t, "zh-CN", cfg.GetLanguage(""))
	})

	t.Run("parameter overrides env", func(t *testing.T) {
		os.Setenv("COMMITCRAFT_LANG", "zh-CN")
		defer os.Unsetenv("COMMITCRAFT_LANG")

		cfg := &Config{Language: "zh"}
		assert.Equal(t, "en", cfg.GetLanguage("en"))
	})

	t.Run("default to en when empty", func(t *testing.T) {
		cfg := &Config{}
		assert.Equal(t, "en", cfg.GetLanguage(""))
	})
}

func TestLoadFromFile(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".commitcraft.yaml")

	configContent := `
default_model: deepseek
models:
  deepseek:
    provider: deepseek
    api_key: sk-test
    model: deepseek-chat
  gpt4:
    provider: openai
    api_key: sk-openai
    model: gpt-4o
language: zh
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := LoadFromFile(configPath)
	require.NoError(t, err)

	assert.Equal(t, "deepseek", cfg.DefaultModel)
	assert.Equal(t, "zh", cfg.Language)
	assert.Len(t, cfg.Models, 2)

	deepseek, ok := cfg.Models["deepseek"]
	assert.True(t, ok)
	assert.Equal(t, "deepseek", deepseek.Provider)
	assert.Equal(t, "deepseek-chat", deepseek.Model)
}

func TestLoadFromFile_NotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/.commitcraft.yaml")
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := &Config{
			DefaultModel: "deepseek",
			Models: map[string]ModelConfig{
				"deepseek": {
					Provider: "deepseek",
					APIKey:   "sk-test",
					Model:    "deepseek-chat",
				},
			},
			Language: "en",
		}
		err := cfg.Validate()
		assert.NoError(t, err)
	})

	t.Run("no models configured", func(t *testing.T) {
		cfg := &Config{
			DefaultModel: "deepseek",
			Models:       map[string]ModelConfig{},
		}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no models configured")
	})

	t.Run("default model not found", func(t *testing.T) {
		cfg := &Config{
			DefaultModel: "nonexistent",
			Models: map[string]ModelConfig{
				"deepseek": {
					Provider: "deepseek",
					APIKey:   "sk-test",
					Model:    "deepseek-chat",
				},
			},
		}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "default model")
	})

	t.Run("invalid model config", func(t *testing.T) {
		cfg := &Config{
			DefaultModel: "deepseek",
			Models: map[string]ModelConfig{
				"deepseek": {
					Provider: "invalid-provider",
					APIKey:   "sk-test",
					Model:    "deepseek-chat",
				},
			},
		}
		err := cfg.Validate()
		assert.Error(t, err)
	})
}

func TestSupportedProviders(t *testing.T) {
	providers := SupportedProviders()
	assert.Contains(t, providers, "openai")
	assert.Contains(t, providers, "deepseek")
	assert.Contains(t, providers, "ollama")
	assert.Contains(t, providers, "gemini")
	assert.Contains(t, providers, "grok")
	assert.True(t, sort.StringsAreSorted(providers))
}

func TestConfig_GetCommitContext(t *testing.T) {
	t.Run("returns empty when no commit section", func(t *testing.T) {
		cfg := &Config{}
		text, err := cfg.GetCommitContext()
		assert.NoError(t, err)
		assert.Empty(t, text)
	})

	t.Run("inline context has priority over file", func(t *testing.T) {
		cfg := &Config{
			Commit: &CommitConfig{
				Context:     "reference ticket ids",
				ContextFile: "/some/file/path",
			},
		}
		text, err := cfg.GetCommitContext()
		assert.NoError(t, err)
		assert.Equal(t, "reference ticket ids", text)
	})

	t.Run("loads context from file", func(t *testing.T) {
		tmpDir := t.TempDir()
		path := filepath.Join(tmpDir, "context.txt")
		require.NoError(t, os.WriteFile(path, []byte("mention the affected service\n"), 0644))

		cfg := &Config{Commit: &CommitConfig{ContextFile: path}}
		text, err := cfg.GetCommitContext()
		assert.NoError(t, err)
		assert.Equal(t, "mention the affected service", text)
	})

	t.Run("returns error when file not found", func(t *testing.T) {
		cfg := &Config{Commit: &CommitConfig{ContextFile: "/nonexistent/path/context.txt"}}
		_, err := cfg.GetCommitContext()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestConfig_GetCommitConfig(t *testing.T) {
	t.Run("defaults when unset", func(t *testing.T) {
		commit := (&Config{}).GetCommitConfig()
		assert.Equal(t, StyleImperative, commit.Style)
		assert.Equal(t, 100, commit.MaxSubjectLength)
		assert.Zero(t, commit.MinSubjectLength)
		assert.False(t, commit.IncludeBody)
		assert.True(t, commit.StreamEnabled())
	})

	t.Run("fills missing values", func(t *testing.T) {
		cfg := &Config{Commit: &CommitConfig{MinSubjectLength: 80, IncludeBody: true}}
		commit := cfg.GetCommitConfig()
		assert.Equal(t, 80, commit.MinSubjectLength)
		assert.Equal(t, 100, commit.MaxSubjectLength)
		assert.Equal(t, 8, commit.MinBodyLines)
		assert.Equal(t, 12, commit.MaxBodyLines)
	})

	t.Run("stream can be disabled", func(t *testing.T) {
		off := false
		cfg := &Config{Commit: &CommitConfig{Stream: &off}}
		assert.False(t, cfg.GetCommitConfig().StreamEnabled())
	})
}

func TestCommitConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  CommitConfig
		wantErr string
	}{
		{"valid", CommitConfig{Style: StyleSentence, MinSubjectLength: 80, MaxSubjectLength: 120}, ""},
		{"unknown style", CommitConfig{Style: "shouty"}, "unsupported style"},
		{"negative length", CommitConfig{MinSubjectLength: -1}, "non-negative"},
		{"min above max", CommitConfig{MinSubjectLength: 300, MaxSubjectLength: 120}, "must not exceed"},
		{"body min above max", CommitConfig{MinBodyLines: 9, MaxBodyLines: 4}, "min_body_lines"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_GetDiffConfig(t *testing.T) {
	d := (&Config{}).GetDiffConfig()
	assert.Equal(t, 28000, d.MaxRawChars)
	assert.Equal(t, 6, d.MaxSummaryFiles)
	assert.Equal(t, 5, d.RecentCommits)
	assert.Zero(t, d.MaxPromptTokens)

	cfg := &Config{Diff: &DiffConfig{MaxRawChars: 1000, RecentCommits: -1}}
	d = cfg.GetDiffConfig()
	assert.Equal(t, 1000, d.MaxRawChars)
	assert.Equal(t, 6, d.MaxSummaryFiles)
	assert.Equal(t, 5, d.RecentCommits)
}

func TestLoadFromFile_WithCommitSection(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ".commitcraft.yaml")

	configContent := `
default_model: deepseek
models:
  deepseek:
    provider: deepseek
    api_key: sk-test
    model: deepseek-chat
commit:
  style: sentence
  prefix: "[core] "
  include_body: true
  min_subject_length: 80
  max_subject_length: 120
  stream: false
diff:
  max_raw_chars: 12000
  recent_commits: 3
retry:
  enabled: true
  max_attempts: 2
  backoff_base: 0.5
  backoff_max: 4
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := LoadFromFile(configPath)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	commit := cfg.GetCommitConfig()
	assert.Equal(t, StyleSentence, commit.Style)
	assert.Equal(t, "[core] ", commit.Prefix)
	assert.True(t, commit.IncludeBody)
	assert.Equal(t, 80, commit.MinSubjectLength)
	assert.Equal(t, 120, commit.MaxSubjectLength)
	assert.False(t, commit.StreamEnabled())

	assert.Equal(t, 12000, cfg.GetDiffConfig().MaxRawChars)
	assert.Equal(t, 3, cfg.GetDiffConfig().RecentCommits)
	assert.Equal(t, 2, cfg.GetRetryConfig().MaxAttempts)
	assert.Equal(t, 0.5, cfg.GetRetryConfig().BackoffBase)
}

func TestModelConfig_ID(t *testing.T) {
	a := ModelConfig{Provider: "openai", Model: "gpt-4o"}
	b := ModelConfig{Provider: "openai", Model: "gpt-4o-mini"}
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, a.ID(), ModelConfig{Provider: "openai", Model: "gpt-4o", APIKey: "other"}.ID())
}
