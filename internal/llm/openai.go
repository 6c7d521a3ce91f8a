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

// OpenAIProvider talks to an OpenAI-compatible chat completions endpoint.
// It also serves vLLM, which exposes the same API.
type OpenAIProvider struct {
	name       string
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewOpenAIProvider creates a provider for the OpenAI API.
func NewOpenAIProvider(cfg config.OpenAIConfig, timeout time.Duration) *OpenAIProvider {
	return &OpenAIProvider{
		name:       "openai",
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewVLLMProvider creates a provider for a vLLM server's OpenAI-compatible API.
func NewVLLMProvider(cfg config.VLLMConfig, timeout time.Duration) *OpenAIProvider {
	return &OpenAIProvider{
		name:       "vllm",
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (p *OpenAIProvider) Name() string { return p.name }

func (p *OpenAIProvider) Complete(ctx context.Context, req models.ChatRequest) (string, error) {
	body := chatCompletionRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
	}

	headers := map[string]string{}
	if p.apiKey != "" {
		headers["Authorization"] = "Bearer " + p.apiKey
	}

	var out chatCompletionResponse
	if err := postJSON(ctx, p.httpClient, p.baseURL+"/chat/completions", headers, body, &out); err != nil {
		return "", fmt.Errorf("%s chat completion: %w", p.name, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%s chat completion: %w: no choices", p.name, ErrInvalidResponse)
	}
	return out.Choices[0].Message.Content, nil
}

var _ models.LLMProvider = (*OpenAIProvider)(nil)
