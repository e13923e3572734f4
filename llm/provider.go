// LLM Provider interface - the abstract interface for generation backends.
// Each provider implementation hides:
// - API client initialization and authentication
// - Request/response format conversion
// - Provider-specific streaming mechanics

package llm

import (
	"context"
)

// Provider defines the abstract interface for generation backends.
type Provider interface {
	// Name returns the provider name (for logging/debugging).
	Name() string

	// Model returns the current model being used.
	Model() string

	// Chat sends a chat completion request and waits for the full response.
	Chat(ctx context.Context, messages []ChatMessage) (Response, error)

	// StreamChat streams a chat completion, sending chunks to the provided
	// channel in arrival order. The channel is not closed by the provider.
	// Returns token usage when the provider reports it.
	StreamChat(ctx context.Context, messages []ChatMessage, chunks chan<- string) (*TokenUsage, error)
}
