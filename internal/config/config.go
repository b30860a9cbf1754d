package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the configuration file looked up in the working and home directories
const FileName = ".commitcraft.yaml"

// Environment overrides
const (
	EnvModel    = "COMMITCRAFT_MODEL"
	EnvLanguage = "COMMITCRAFT_LANG"
)

// Supported providers
var supportedProviders = map[string]bool{
	"openai":   true,
	"deepseek": true,
	"ollama":   true,
	"gemini":   true,
	"grok":     true,
}

// SupportedProviders returns the supported providers in name order
func SupportedProviders() []string {
	providers := make([]string, 0, len(supportedProviders))
	for p := range supportedProviders {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return providers
}

// Subject styles
const (
	StyleImperative = "imperative"
	StyleSentence   = "sentence"
)

// Config represents the application configuration
type Config struct {
	DefaultModel string                 `yaml:"default_model" mapstructure:"default_model"`
	Models       map[string]ModelConfig `yaml:"models" mapstructure:"models"`
	Language     string                 `yaml:"language" mapstructure:"language"`
	Commit       *CommitConfig          `yaml:"commit" mapstructure:"commit"`
	Diff         *DiffConfig            `yaml:"diff" mapstructure:"diff"`
	Retry        *RetryConfig           `yaml:"retry" mapstructure:"retry"`
}

// CommitConfig shapes the generated commit message
type CommitConfig struct {
	Style            string `yaml:"style" mapstructure:"style"` // imperative | sentence
	Prefix           string `yaml:"prefix" mapstructure:"prefix"`
	Suffix           string `yaml:"suffix" mapstructure:"suffix"`
	IncludeBody      bool   `yaml:"include_body" mapstructure:"include_body"`
	MinSubjectLength int    `yaml:"min_subject_length" mapstructure:"min_subject_length"`
	MaxSubjectLength int    `yaml:"max_subject_length" mapstructure:"max_subject_length"`
	LengthThreshold  int    `yaml:"length_threshold" mapstructure:"length_threshold"` // changed lines before bounds apply, 0 = always
	MinBodyLines     int    `yaml:"min_body_lines" mapstructure:"min_body_lines"`
	MaxBodyLines     int    `yaml:"max_body_lines" mapstructure:"max_body_lines"`
	Stream           *bool  `yaml:"stream" mapstructure:"stream"`
	Context          string `yaml:"context" mapstructure:"context"`           // inline guidance for the model
	ContextFile      string `yaml:"context_file" mapstructure:"context_file"` // path to a guidance file
}

// DefaultCommitConfig returns the default commit configuration
func DefaultCommitConfig() *CommitConfig {
	return &CommitConfig{
		Style:            StyleImperative,
		MaxSubjectLength: 100,
		MinBodyLines:     8,
		MaxBodyLines:     12,
	}
}

// StreamEnabled reports whether partial output is streamed, true unless disabled
func (c *CommitConfig) StreamEnabled() bool {
	return c.Stream == nil || *c.Stream
}

// Validate validates the commit configuration
func (c *CommitConfig) Validate() error {
	if c.Style != "" && c.Style != StyleImperative && c.Style != StyleSentence {
		return fmt.Errorf("unsupported style: %s", c.Style)
	}
	if c.MinSubjectLength < 0 || c.MaxSubjectLength < 0 || c.LengthThreshold < 0 {
		return fmt.Errorf("subject lengths must be non-negative")
	}
	if c.MaxSubjectLength > 0 && c.MinSubjectLength > c.MaxSubjectLength {
		return fmt.Errorf("min_subject_length must not exceed max_subject_length")
	}
	if c.MinBodyLines < 0 || c.MaxBodyLines < 0 {
		return fmt.Errorf("body line counts must be non-negative")
	}
	if c.MaxBodyLines > 0 && c.MinBodyLines > c.MaxBodyLines {
		return fmt.Errorf("min_body_lines must not exceed max_body_lines")
	}
	return nil
}

// DiffConfig bounds how much of the staged diff reaches the model
type DiffConfig struct {
	MaxRawChars     int    `yaml:"max_raw_chars" mapstructure:"max_raw_chars"`
	MaxSummaryFiles int    `yaml:"max_summary_files" mapstructure:"max_summary_files"`
	RecentCommits   int    `yaml:"recent_commits" mapstructure:"recent_commits"`
	MaxPromptTokens int    `yaml:"max_prompt_tokens" mapstructure:"max_prompt_tokens"` // 0 = provider limit, negative disables
	TokenizerModel  string `yaml:"tokenizer_model" mapstructure:"tokenizer_model"`
}

// DefaultDiffConfig returns the default diff configuration
func DefaultDiffConfig() *DiffConfig {
	return &DiffConfig{
		MaxRawChars:     28000,
		MaxSummaryFiles: 6,
		RecentCommits:   5,
	}
}

// RetryConfig represents the retry configuration
type RetryConfig struct {
	Enabled     bool    `yaml:"enabled" mapstructure:"enabled"`
	MaxAttempts int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	BackoffBase float64 `yaml:"backoff_base" mapstructure:"backoff_base"` // in seconds
	BackoffMax  float64 `yaml:"backoff_max" mapstructure:"backoff_max"`   // in seconds
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		Enabled:     true,
		MaxAttempts: 3,
		BackoffBase: 1.0,
		BackoffMax:  8.0,
	}
}

// Validate validates the retry configuration
func (r *RetryConfig) Validate() error {
	if r.MaxAttempts < 0 {
		return fmt.Errorf("max_attempts must be non-negative")
	}
	if r.BackoffBase < 0 {
		return fmt.Errorf("backoff_base must be non-negative")
	}
	if r.BackoffMax < r.BackoffBase {
		return fmt.Errorf("backoff_max must be greater than or equal to backoff_base")
	}
	return nil
}

// ModelConfig represents a single model configuration
type ModelConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
	APIKey   string `yaml:"api_key" mapstructure:"api_key" json:"-"`
	Model    string `yaml:"model" mapstructure:"model"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
}

// ID identifies the model for session reuse
func (m ModelConfig) ID() string {
	return m.Provider + "/" + m.Model + "@" + m.BaseURL
}

// Validate validates the model configuration
func (m *ModelConfig) Validate() error {
	if m.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if !supportedProviders[m.Provider] {
		return fmt.Errorf("unsupported provider: %s", m.Provider)
	}
	if m.Model == "" {
		return fmt.Errorf("model is required")
	}
	// API key is required for all providers except ollama
	if m.Provider != "ollama" && m.APIKey == "" {
		return fmt.Errorf("api_key is required for provider %s", m.Provider)
	}
	return nil
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if len(c.Models) == 0 {
		return fmt.Errorf("no models configured")
	}

	if c.DefaultModel != "" {
		if _, ok := c.Models[c.DefaultModel]; !ok {
			return fmt.Errorf("default model '%s' not found in models configuration", c.DefaultModel)
		}
	}

	for name, model := range c.Models {
		if err := model.Validate(); err != nil {
			return fmt.Errorf("invalid model '%s': %w", name, err)
		}
	}

	if c.Commit != nil {
		if err := c.Commit.Validate(); err != nil {
			return fmt.Errorf("invalid commit configuration: %w", err)
		}
	}

	if c.Retry != nil {
		if err := c.Retry.Validate(); err != nil {
			return fmt.Errorf("invalid retry configuration: %w", err)
		}
	}

	return nil
}

// GetModel returns the model configuration by name
// Priority: parameter > env variable (COMMITCRAFT_MODEL) > default_model
func (c *Config) GetModel(modelName string) (*ModelConfig, error) {
	if modelName == "" {
		modelName = os.Getenv(EnvModel)
	}
	if modelName == "" {
		modelName = c.DefaultModel
	}
	if modelName == "" {
		return nil, fmt.Errorf("no model specified and no default model configured")
	}

	model, ok := c.Models[modelName]
	if !ok {
		return nil, fmt.Errorf("model '%s' not found in configuration", modelName)
	}

	model.APIKey = expandEnv(model.APIKey)

	return &model, nil
}

// GetLanguage returns the language to use
// Priority: parameter > env variable (COMMITCRAFT_LANG) > config file > default (en)
func (c *Config) GetLanguage(langParam string) string {
	if langParam != "" {
		return langParam
	}
	if envLang := os.Getenv(EnvLanguage); envLang != "" {
		return envLang
	}
	if c.Language != "" {
		return c.Language
	}
	return "en"
}

// GetCommitConfig returns the commit configuration with defaults applied
func (c *Config) GetCommitConfig() *CommitConfig {
	if c.Commit == nil {
		return DefaultCommitConfig()
	}
	defaults := DefaultCommitConfig()
	if c.Commit.Style == "" {
		c.Commit.Style = defaults.Style
	}
	if c.Commit.MaxSubjectLength <= 0 {
		c.Commit.MaxSubjectLength = defaults.MaxSubjectLength
	}
	if c.Commit.MinBodyLines <= 0 {
		c.Commit.MinBodyLines = defaults.MinBodyLines
	}
	if c.Commit.MaxBodyLines <= 0 {
		c.Commit.MaxBodyLines = defaults.MaxBodyLines
	}
	return c.Commit
}

// GetDiffConfig returns the diff configuration with defaults applied
func (c *Config) GetDiffConfig() *DiffConfig {
	if c.Diff == nil {
		return DefaultDiffConfig()
	}
	defaults := DefaultDiffConfig()
	if c.Diff.MaxRawChars <= 0 {
		c.Diff.MaxRawChars = defaults.MaxRawChars
	}
	if c.Diff.MaxSummaryFiles <= 0 {
		c.Diff.MaxSummaryFiles = defaults.MaxSummaryFiles
	}
	if c.Diff.RecentCommits < 0 {
		c.Diff.RecentCommits = defaults.RecentCommits
	}
	return c.Diff
}

// GetRetryConfig returns the retry configuration with defaults applied
func (c *Config) GetRetryConfig() *RetryConfig {
	if c.Retry == nil {
		return DefaultRetryConfig()
	}
	defaults := DefaultRetryConfig()
	if c.Retry.MaxAttempts < 0 {
		c.Retry.MaxAttempts = defaults.MaxAttempts
	}
	if c.Retry.BackoffBase < 0 {
		c.Retry.BackoffBase = defaults.BackoffBase
	}
	if c.Retry.BackoffMax < 0 {
		c.Retry.BackoffMax = defaults.BackoffMax
	}
	return c.Retry
}

// GetCommitContext returns extra guidance for the model
// Priority: inline context > context file > empty string
func (c *Config) GetCommitContext() (string, error) {
	if c.Commit == nil {
		return "", nil
	}
	if c.Commit.Context != "" {
		return c.Commit.Context, nil
	}
	if c.Commit.ContextFile == "" {
		return "", nil
	}

	filePath := c.Commit.ContextFile
	if strings.HasPrefix(filePath, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		filePath = filepath.Join(homeDir, filePath[2:])
	}

	content, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("commit context file not found: %s", filePath)
		}
		return "", fmt.Errorf("failed to read commit context file: %w", err)
	}
	return strings.TrimSpace(string(content)), nil
}

// expandEnv expands environment variables in the format ${VAR} or $VAR
func expandEnv(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	if strings.HasPrefix(s, "$") {
		return os.Getenv(s[1:])
	}
	return s
}

// LoadFromFile loads configuration from a file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Load loads configuration with the following priority:
// 1. Custom path if provided
// 2. Current directory .commitcraft.yaml
// 3. Home directory ~/.commitcraft.yaml
func Load(customPath string) (*Config, error) {
	if customPath != "" {
		return LoadFromFile(customPath)
	}

	if cfg, err := LoadFromFile(FileName); err == nil {
		return cfg, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	if cfg, err := LoadFromFile(filepath.Join(homeDir, FileName)); err == nil {
		return cfg, nil
	}

	return nil, fmt.Errorf("no configuration file found. Run 'commitcraft init' to create one")
}
