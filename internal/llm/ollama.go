package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kiranshivaraju/vidforge/internal/config"
	"github.com/kiranshivaraju/vidforge/pkg/models"
)

// OllamaProvider implements models.LLMProvider using Ollama's native chat API.
type OllamaProvider struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

type ollamaChatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type ollamaChatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

func NewOllamaProvider(cfg config.OllamaConfig, timeout time.Duration) *OllamaProvider {
	return &OllamaProvider{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *OllamaProvider) Name() string { return "ollama" }

func (p *OllamaProvider) Complete(ctx context.Context, req models.ChatRequest) (string, error) {
	body := ollamaChatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
	}

	var out ollamaChatResponse
	if err := postJSON(ctx, p.httpClient, p.baseURL+"/api/chat", nil, body, &out); err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	return out.Message.Content, nil
}

var _ models.LLMProvider = (*OllamaProvider)(nil)
