package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/huimingz/commitcraft/internal/config"
	"github.com/huimingz/commitcraft/internal/diff"
	"github.com/huimingz/commitcraft/internal/prompt"
	"github.com/huimingz/commitcraft/pkg/lang"
)

func noColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestCommands_Registered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"commit", "summary", "init", "models", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestCommitCmd_Flags(t *testing.T) {
	flags := commitCmd.Flags()
	for _, name := range []string{"context", "language", "style", "prefix", "suffix", "body", "no-stream", "yes", "dry-run"} {
		assert.NotNil(t, flags.Lookup(name), "flag %s should exist", name)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("model"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("debug"))
}

func testConfig() *config.Config {
	return &config.Config{
		DefaultModel: "local",
		Language:     "zh",
		Models: map[string]config.ModelConfig{
			"local": {Provider: "ollama", Model: "qwen2.5-coder"},
			"gpt":   {Provider: "openai", Model: "gpt-4o", APIKey: "sk-test"},
			"bad":   {Provider: "openai", Model: "gpt-4o"},
		},
		Commit: &config.CommitConfig{Prefix: "[CFG] ", Context: "configured hint"},
	}
}

func TestBuildRequest(t *testing.T) {
	t.Setenv(config.EnvModel, "")
	t.Setenv(config.EnvLanguage, "")

	t.Run("config values", func(t *testing.T) {
		req, err := buildRequest(testConfig(), "", commitOptions{})
		require.NoError(t, err)
		assert.Equal(t, "qwen2.5-coder", req.Model.Model)
		assert.Equal(t, lang.ChineseSimplified, req.Language)
		assert.Equal(t, "configured hint", req.Context)
		assert.Equal(t, "[CFG] ", req.Commit.Prefix)
		assert.Equal(t, config.StyleImperative, req.Commit.Style)
		assert.True(t, req.Commit.StreamEnabled())
		assert.Equal(t, 28000, req.Diff.MaxRawChars)
	})

	t.Run("flag overrides", func(t *testing.T) {
		body := true
		req, err := buildRequest(testConfig(), "gpt", commitOptions{
			Context:  "fix for #12",
			Language: "en-US",
			Style:    config.StyleSentence,
			Prefix:   "[AUTH-7] ",
			Suffix:   " (#42)",
			Body:     &body,
			NoStream: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "gpt-4o", req.Model.Model)
		assert.Equal(t, lang.English, req.Language)
		assert.Equal(t, "fix for #12", req.Context)
		assert.Equal(t, "[AUTH-7] ", req.Commit.Prefix)
		assert.Equal(t, " (#42)", req.Commit.Suffix)
		assert.True(t, req.Commit.IncludeBody)
		assert.False(t, req.Commit.StreamEnabled())
	})

	t.Run("invalid style", func(t *testing.T) {
		_, err := buildRequest(testConfig(), "", commitOptions{Style: "shouty"})
		assert.Error(t, err)
	})

	t.Run("model without api key", func(t *testing.T) {
		_, err := buildRequest(testConfig(), "bad", commitOptions{})
		assert.Error(t, err)
	})

	t.Run("unknown model", func(t *testing.T) {
		_, err := buildRequest(testConfig(), "missing", commitOptions{})
		assert.Error(t, err)
	})
}

func summaryContext() *prompt.Context {
	summary := &diff.Summary{
		Files: []diff.FileChange{
			{Path: "src/auth/login.ts", ChangeType: diff.ChangeModified, Language: diff.LangTS, Additions: 40, Deletions: 5, Weight: 7, Keywords: []string{"validateToken"}},
		},
		LockfileSummaries: []string{"package-lock.json: lockfile updated"},
		TotalAdditions:    40,
		TotalDeletions:    5,
	}
	summary.Text = diff.RenderSummary(summary, 6)
	return prompt.Build(summary, prompt.RepoContext{}, prompt.Options{})
}

func TestRenderSummary(t *testing.T) {
	noColor(t)
	pc := summaryContext()

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, renderSummary(&buf, pc, FormatText))
		out := buf.String()
		assert.Contains(t, out, "feat(auth)\n")
		assert.Contains(t, out, "Files changed: 2 (lockfiles: 1)")
		assert.Contains(t, out, "Subject must mention 1 of: login.ts")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, renderSummary(&buf, pc, FormatJSON))

		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "feat", got["type"])
		assert.Equal(t, "auth", got["scope"])
		summary := got["summary"].(map[string]interface{})
		assert.Len(t, summary["files"], 1)
		assert.Len(t, summary["lockfile_summaries"], 1)
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, renderSummary(&buf, pc, FormatYAML))

		var got summaryView
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "auth", got.Scope)
		require.NotNil(t, got.Summary)
		require.Len(t, got.Summary.Files, 1)
		assert.Equal(t, "src/auth/login.ts", got.Summary.Files[0].Path)
		assert.Equal(t, 40, got.Summary.TotalAdditions)
	})

	t.Run("unsupported", func(t *testing.T) {
		assert.Error(t, renderSummary(&bytes.Buffer{}, pc, "xml"))
	})
}

func TestWriteConfigTemplate(t *testing.T) {
	path := filepath.Join(t.TempDir(), config.FileName)

	require.NoError(t, writeConfigTemplate(path, false))
	assert.Error(t, writeConfigTemplate(path, false))
	require.NoError(t, writeConfigTemplate(path, true))

	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.DefaultModel)
	assert.Equal(t, "en", cfg.Language)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 100, cfg.GetCommitConfig().MaxSubjectLength)
	assert.Equal(t, 28000, cfg.GetDiffConfig().MaxRawChars)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestListModels(t *testing.T) {
	noColor(t)

	t.Run("sorted with default marked", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := testConfig()
		cfg.Models["broken"] = config.ModelConfig{Provider: "acme", Model: "x"}
		require.NoError(t, listModels(&buf, cfg))

		out := buf.String()
		assert.Contains(t, out, "✓ local (default)")
		assert.Contains(t, out, "Unusable: unsupported provider: acme")
		bad := strings.Index(out, "    bad\n")
		gpt := strings.Index(out, "    gpt\n")
		local := strings.Index(out, "✓ local")
		require.NotEqual(t, -1, bad)
		assert.Less(t, bad, gpt)
		assert.Less(t, gpt, local)
	})

	t.Run("no models", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, listModels(&buf, &config.Config{}))
		assert.Contains(t, buf.String(), "No models configured.")
	})
}

func TestInterruptHandler_Stop(t *testing.T) {
	cancelled := false
	h := NewInterruptHandler(func() { cancelled = true }, nil, &bytes.Buffer{})
	h.Start()
	h.Stop()
	assert.False(t, h.IsInterrupted())
	assert.False(t, cancelled)
}
