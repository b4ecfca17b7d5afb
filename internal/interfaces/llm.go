package interfaces

import "context"

// Message represents a single turn in an LLM conversation.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// LLMService generates chat completions for the analysis stages. Providers
// (Claude, Gemini) are selected by configuration.
type LLMService interface {
	// Chat generates a completion for the conversation history.
	Chat(ctx context.Context, messages []Message) (string, error)

	// GetModelName returns the provider's configured model identifier.
	GetModelName() string
}
