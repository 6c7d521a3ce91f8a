// Package enhancer rewrites a free-text prompt into a structured generation spec.
package enhancer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kiranshivaraju/vidforge/pkg/models"
)

const (
	DefaultAspectRatio = "16:9"
	DefaultDuration    = 10
	MaxPromptWords     = 100
)

const (
	systemPrompt = "Generate a simple, concise video prompt (max 100 words) that's easy for video generation APIs " +
		"to process. Include 'prompt', 'aspect_ratio', and 'duration' in your JSON response."
	userPromptPrefix = "Create a video prompt based on: "
)

// Enhancer asks a language model to normalize a raw prompt. It never fails:
// any provider or parse error yields defaults built from the raw prompt.
type Enhancer struct {
	provider models.LLMProvider
}

func New(provider models.LLMProvider) *Enhancer {
	return &Enhancer{provider: provider}
}

// Enhance returns the model's generation spec, or Fallback(raw) when the model
// is unreachable or its output does not parse.
func (e *Enhancer) Enhance(ctx context.Context, raw string) models.EnhancedPrompt {
	reply, err := e.provider.Complete(ctx, models.ChatRequest{
		System: systemPrompt,
		User:   userPromptPrefix + raw,
	})
	if err != nil {
		slog.Warn("prompt enhancement unavailable, using defaults",
			"provider", e.provider.Name(),
			"error", err,
		)
		return Fallback(raw)
	}

	spec, err := Parse(reply)
	if err != nil {
		slog.Warn("prompt enhancement returned malformed output, using defaults",
			"provider", e.provider.Name(),
			"error", err,
			"reply", truncateString(reply, 200),
		)
		return Fallback(raw)
	}

	slog.Info("prompt enhanced",
		"aspect_ratio", spec.AspectRatio,
		"duration", spec.Duration,
		"words", len(strings.Fields(spec.Prompt)),
	)
	return spec
}

// Fallback builds the default spec from the caller's own prompt.
func Fallback(raw string) models.EnhancedPrompt {
	return models.EnhancedPrompt{
		Prompt:      TruncateWords(raw, MaxPromptWords),
		AspectRatio: DefaultAspectRatio,
		Duration:    DefaultDuration,
	}
}

func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
