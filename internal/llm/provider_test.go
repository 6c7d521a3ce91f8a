package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kiranshivaraju/vidforge/internal/config"
	"github.com/kiranshivaraju/vidforge/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testChat = models.ChatRequest{System: "be brief", User: "a cat on a skateboard"}

func TestOpenAIProvider_Complete(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body.Model)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "be brief", body.Messages[0].Content)
		assert.Equal(t, "a cat on a skateboard", body.Messages[1].Content)

		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer ts.Close()

	p := NewOpenAIProvider(config.OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini", BaseURL: ts.URL + "/v1/"}, 5*time.Second)
	got, err := p.Complete(context.Background(), testChat)
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer ts.Close()

	p := NewOpenAIProvider(config.OpenAIConfig{APIKey: "k", Model: "m", BaseURL: ts.URL}, 5*time.Second)
	_, err := p.Complete(context.Background(), testChat)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestOpenAIProvider_Non2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer ts.Close()

	p := NewOpenAIProvider(config.OpenAIConfig{APIKey: "k", Model: "m", BaseURL: ts.URL}, 5*time.Second)
	_, err := p.Complete(context.Background(), testChat)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Contains(t, err.Error(), "401")
}

func TestOpenAIProvider_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer ts.Close()

	p := NewOpenAIProvider(config.OpenAIConfig{APIKey: "k", Model: "m", BaseURL: ts.URL}, 20*time.Millisecond)
	_, err := p.Complete(context.Background(), testChat)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestVLLMProvider_NoAuthHeader(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"vllm says hi"}}]}`))
	}))
	defer ts.Close()

	p := NewVLLMProvider(config.VLLMConfig{BaseURL: ts.URL, Model: "mistral-7b"}, 5*time.Second)
	got, err := p.Complete(context.Background(), testChat)
	require.NoError(t, err)
	assert.Equal(t, "vllm says hi", got)
	assert.Equal(t, "vllm", p.Name())
}

func TestOllamaProvider_Complete(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		var body ollamaChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.False(t, body.Stream)
		assert.Equal(t, "llama3", body.Model)
		w.Write([]byte(`{"message":{"role":"assistant","content":"from ollama"},"done":true}`))
	}))
	defer ts.Close()

	p := NewOllamaProvider(config.OllamaConfig{BaseURL: ts.URL, Model: "llama3"}, 5*time.Second)
	got, err := p.Complete(context.Background(), testChat)
	require.NoError(t, err)
	assert.Equal(t, "from ollama", got)
}

func TestOllamaProvider_InvalidJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer ts.Close()

	p := NewOllamaProvider(config.OllamaConfig{BaseURL: ts.URL, Model: "llama3"}, 5*time.Second)
	_, err := p.Complete(context.Background(), testChat)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestAnthropicProvider_Complete(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var body anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "be brief", body.System)
		require.Len(t, body.Messages, 1)

		w.Write([]byte(`{"content":[{"type":"text","text":"part one "},{"type":"text","text":"part two"}]}`))
	}))
	defer ts.Close()

	p := NewAnthropicProvider(config.AnthropicConfig{APIKey: "sk-ant", Model: "claude"}, 5*time.Second)
	p.baseURL = ts.URL

	got, err := p.Complete(context.Background(), testChat)
	require.NoError(t, err)
	assert.Equal(t, "part one part two", got)
}

func TestProvider_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	p := NewOllamaProvider(config.OllamaConfig{BaseURL: url, Model: "llama3"}, time.Second)
	_, err := p.Complete(context.Background(), testChat)
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}
