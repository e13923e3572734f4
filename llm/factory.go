// LLM Provider Factory - creates a provider from its canonical name.

package llm

import (
	"fmt"
	"strings"
)

// Default models per provider, used when no model is configured.
const (
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultOpenAIModel    = "gpt-4o"
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
)

// Aliases map to canonical provider names.
var aliases = map[string]string{
	"google": "gemini",
	"claude": "anthropic",
	"gpt":    "openai",
}

// APIKeyEnv returns the environment variable holding the API key
// for the named provider. Unknown providers return "".
func APIKeyEnv(name string) string {
	switch Normalize(name) {
	case "gemini":
		return "GEMINI_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	}
	return ""
}

// DefaultModel returns the default model for the named provider.
func DefaultModel(name string) string {
	switch Normalize(name) {
	case "gemini":
		return DefaultGeminiModel
	case "openai":
		return DefaultOpenAIModel
	case "anthropic":
		return DefaultAnthropicModel
	}
	return ""
}

// Normalize resolves provider aliases to canonical lowercase names.
func Normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[name]; ok {
		return canonical
	}
	return name
}

// New creates a provider by name. The model may be "" to use the
// provider default. Returns an error for unknown provider names;
// an empty API key is the caller's concern (providers report
// credential failures on first use).
func New(name, apiKey, model string, maxTokens uint32, temperature float32) (Provider, error) {
	canonical := Normalize(name)
	if model == "" {
		model = DefaultModel(canonical)
	}

	switch canonical {
	case "gemini":
		return NewGeminiProvider(apiKey, model, maxTokens, temperature), nil
	case "openai":
		return NewOpenAIProvider(apiKey, model, maxTokens, temperature), nil
	case "anthropic":
		return NewAnthropicProvider(apiKey, model, maxTokens, temperature), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (supported: gemini, openai, anthropic)", name)
	}
}
