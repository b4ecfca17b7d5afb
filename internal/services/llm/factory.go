package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stocksense/internal/common"
	"github.com/ternarybob/stocksense/internal/interfaces"
)

// NewLLMService creates the appropriate LLM service implementation based on configuration
func NewLLMService(cfg *common.LLMConfig, logger arbor.ILogger) (interfaces.LLMService, error) {
	logger.Info().Str("provider", cfg.Provider).Msg("Initializing LLM service")

	switch cfg.Provider {
	case "claude":
		return NewClaudeService(cfg, logger)

	case "gemini":
		return NewGeminiService(cfg, logger)

	default:
		return nil, fmt.Errorf("invalid LLM provider '%s': must be 'claude' or 'gemini'", cfg.Provider)
	}
}
