// Package llm holds the language-model providers used for prompt rewriting
// and sound-effect descriptions.
package llm

import (
	"fmt"

	"github.com/kiranshivaraju/vidforge/internal/config"
	"github.com/kiranshivaraju/vidforge/pkg/models"
)

// NewProvider constructs the appropriate LLM provider based on config.
// Called once at server startup.
func NewProvider(cfg config.LLMConfig) (models.LLMProvider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg.OpenAI, cfg.Timeout), nil
	case "vllm":
		return NewVLLMProvider(cfg.VLLM, cfg.Timeout), nil
	case "ollama":
		return NewOllamaProvider(cfg.Ollama, cfg.Timeout), nil
	case "anthropic":
		return NewAnthropicProvider(cfg.Anthropic, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q: must be one of openai, vllm, ollama, anthropic", cfg.Provider)
	}
}
