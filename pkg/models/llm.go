// Package models contains shared data models used across the vidforge codebase.
package models

import "context"

// LLMProvider is the interface every language-model integration implements.
// Components never call a specific provider directly.
type LLMProvider interface {
	// Complete sends one system/user exchange and returns the model's text reply.
	Complete(ctx context.Context, req ChatRequest) (string, error)
	// Name returns the provider identifier (e.g., "openai", "ollama").
	Name() string
}

// ChatRequest is a single-turn chat exchange.
type ChatRequest struct {
	System string
	User   string
}
