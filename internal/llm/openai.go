package llm

import (
	"context"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/huimingz/commitcraft/internal/config"
)

// Default base URLs of the OpenAI-compatible providers
const (
	DeepseekDefaultBaseURL = "https://api.deepseek.com/v1"
	GrokDefaultBaseURL     = "https://api.x.ai/v1"
	OllamaDefaultBaseURL   = "http://localhost:11434/v1"
)

// CompatibleProvider implements Provider for every endpoint speaking the
// OpenAI chat completions API: OpenAI itself, Deepseek, Grok and local Ollama.
type CompatibleProvider struct {
	baseProvider
}

func newCompatibleProvider(name, defaultBaseURL string, cfg config.ModelConfig) *CompatibleProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &CompatibleProvider{baseProvider{name: name, cfg: cfg}}
}

// NewOpenAIProvider creates an OpenAI provider; an empty base URL uses the SDK default
func NewOpenAIProvider(cfg config.ModelConfig) *CompatibleProvider {
	return newCompatibleProvider("openai", "", cfg)
}

// NewDeepseekProvider creates a Deepseek provider
func NewDeepseekProvider(cfg config.ModelConfig) *CompatibleProvider {
	return newCompatibleProvider("deepseek", DeepseekDefaultBaseURL, cfg)
}

// NewGrokProvider creates an xAI Grok provider
func NewGrokProvider(cfg config.ModelConfig) *CompatibleProvider {
	return newCompatibleProvider("grok", GrokDefaultBaseURL, cfg)
}

// NewOllamaProvider creates a provider for a local Ollama server
func NewOllamaProvider(cfg config.ModelConfig) *CompatibleProvider {
	// Ollama ignores the key but the client requires one
	if cfg.APIKey == "" {
		cfg.APIKey = "ollama"
	}
	return newCompatibleProvider("ollama", OllamaDefaultBaseURL, cfg)
}

// CreateChatModel creates an Eino chat model for the endpoint
func (p *CompatibleProvider) CreateChatModel(ctx context.Context) (model.BaseChatModel, error) {
	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:  p.cfg.APIKey,
		Model:   p.cfg.Model,
		BaseURL: p.cfg.BaseURL,
	})
}
