package llm

import (
	"fmt"
)

// Provider represents the LLM provider type
type Provider string

const (
	ProviderClaude Provider = "claude"
	ProviderOpenAI Provider = "openai"
)

// CreateLLM creates an LLM instance for the given provider. An empty model
// selects the provider default.
func CreateLLM(provider Provider, apiKey, model string) (LLM, error) {
	switch provider {
	case ProviderClaude, "":
		if apiKey == "" {
			return nil, fmt.Errorf("Claude API key is required")
		}
		if model != "" {
			return NewClaudeWithModel(apiKey, model), nil
		}
		return NewClaude(apiKey), nil

	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		if model != "" {
			return NewOpenAIWithModel(apiKey, model), nil
		}
		return NewOpenAI(apiKey), nil

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (supported: claude, openai)", provider)
	}
}
