package mock

import (
	"context"
	"sync"

	"github.com/kiranshivaraju/vidforge/internal/llm"
	"github.com/kiranshivaraju/vidforge/pkg/models"
)

// MockProvider satisfies models.LLMProvider for testing.
type MockProvider struct {
	Name_        string
	CompleteFunc func(ctx context.Context, req models.ChatRequest) (string, error)

	mu    sync.Mutex
	calls []models.ChatRequest
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Complete(ctx context.Context, req models.ChatRequest) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return "", nil
}

// Calls returns the requests received so far.
func (m *MockProvider) Calls() []models.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ChatRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

// NewReplyProvider returns a MockProvider that always replies with text.
func NewReplyProvider(text string) *MockProvider {
	return &MockProvider{
		Name_: "mock",
		CompleteFunc: func(_ context.Context, _ models.ChatRequest) (string, error) {
			return text, nil
		},
	}
}

// NewScriptedProvider returns replies in order; the last reply repeats once the script runs out.
func NewScriptedProvider(replies ...string) *MockProvider {
	var (
		mu  sync.Mutex
		idx int
	)
	return &MockProvider{
		Name_: "mock-scripted",
		CompleteFunc: func(_ context.Context, _ models.ChatRequest) (string, error) {
			mu.Lock()
			defer mu.Unlock()
			if len(replies) == 0 {
				return "", nil
			}
			r := replies[min(idx, len(replies)-1)]
			idx++
			return r, nil
		},
	}
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		CompleteFunc: func(_ context.Context, _ models.ChatRequest) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		CompleteFunc: func(ctx context.Context, _ models.ChatRequest) (string, error) {
			<-ctx.Done()
			return "", llm.ErrTimeout
		},
	}
}

// Compile-time check that MockProvider implements LLMProvider.
var _ models.LLMProvider = (*MockProvider)(nil)
