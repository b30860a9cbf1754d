package llm

import (
	"context"

	"github.com/cloudwego/eino/components/model"

	"github.com/huimingz/commitcraft/internal/config"
	"github.com/huimingz/commitcraft/internal/tokenizer"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// GetConfig returns the model configuration
	GetConfig() config.ModelConfig

	// TokenLimit is the prompt budget used when the config sets none
	TokenLimit() int

	// CreateChatModel creates an Eino chat model instance
	CreateChatModel(ctx context.Context) (model.BaseChatModel, error)
}

// baseProvider holds what every provider shares
type baseProvider struct {
	name string
	cfg  config.ModelConfig
}

// Name returns the provider name
func (p *baseProvider) Name() string {
	return p.name
}

// GetConfig returns the model configuration
func (p *baseProvider) GetConfig() config.ModelConfig {
	return p.cfg
}

// TokenLimit returns the prompt token budget for the configured model
func (p *baseProvider) TokenLimit() int {
	return tokenizer.ProviderTokenLimit(p.name, p.cfg.Model)
}
