// Package tokenizer estimates prompt sizes with tiktoken encodings.
package tokenizer

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// TruncatedMarker replaces the tail of text cut by TruncateToTokenLimit
const TruncatedMarker = "...[truncated to fit token limit]"

const fallbackEncoding = "cl100k_base"

var (
	encodings   = make(map[string]*tiktoken.Tiktoken)
	encodingsMu sync.Mutex
)

// encodingFor returns a cached encoding for model, or nil when no encoding can be loaded
func encodingFor(model string) *tiktoken.Tiktoken {
	encodingsMu.Lock()
	defer encodingsMu.Unlock()

	if enc, ok := encodings[model]; ok {
		return enc
	}
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// Non-OpenAI models (deepseek, gemini, local models) share the cl100k approximation
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			enc = nil
		}
	}
	encodings[model] = enc
	return enc
}

// CountTokens returns the number of tokens in text for the model.
// Falls back to a character estimate when no encoding is available.
func CountTokens(text string, model string) int {
	if text == "" {
		return 0
	}
	enc := encodingFor(model)
	if enc == nil {
		// Typical ratio is 1 token per 3.5 characters for source text
		return int(float64(len(text))/3.5) + 1
	}
	return len(enc.Encode(text, nil, nil))
}

// TruncateToTokenLimit cuts text on a line boundary so it fits in maxTokens,
// replacing the dropped tail with TruncatedMarker.
func TruncateToTokenLimit(text string, maxTokens int, model string) string {
	if maxTokens <= 0 || CountTokens(text, model) <= maxTokens {
		return text
	}

	budget := maxTokens - CountTokens(TruncatedMarker, model)
	var result []string
	used := 0
	for _, line := range strings.Split(text, "\n") {
		lineTokens := CountTokens(line+"\n", model)
		if used+lineTokens > budget {
			break
		}
		result = append(result, line)
		used += lineTokens
	}
	result = append(result, TruncatedMarker)
	return strings.Join(result, "\n")
}

// ProviderTokenLimit returns a conservative input budget for a provider and model.
func ProviderTokenLimit(provider string, model string) int {
	provider = strings.ToLower(provider)
	model = strings.ToLower(model)

	switch provider {
	case "openai":
		if strings.Contains(model, "gpt-3.5-turbo") {
			if strings.Contains(model, "16k") {
				return 12000
			}
			return 3000
		}
		return 100000
	case "deepseek":
		return 56000
	case "grok":
		return 100000
	case "gemini":
		if strings.Contains(model, "1.0") {
			return 30000
		}
		return 900000
	case "ollama":
		// Local models often run with a small context window
		return 6000
	default:
		return 8000
	}
}
