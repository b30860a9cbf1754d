package llm

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/huimingz/commitcraft/internal/config"
)

// GeminiProvider implements Provider for Google Gemini
type GeminiProvider struct {
	baseProvider
}

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(cfg config.ModelConfig) *GeminiProvider {
	return &GeminiProvider{baseProvider{name: "gemini", cfg: cfg}}
}

// CreateChatModel creates an Eino chat model for Gemini
func (p *GeminiProvider) CreateChatModel(ctx context.Context) (model.BaseChatModel, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  p.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if p.cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: p.cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return gemini.NewChatModel(ctx, &gemini.Config{
		Client: client,
		Model:  p.cfg.Model,
	})
}
