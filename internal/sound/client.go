package sound

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	ErrSynthesis   = errors.New("sound synthesis failed")
	ErrEmptyResult = errors.New("sound synthesis returned no audio")
)

const maxErrorBody = 512

// Synthesizer turns a text description into raw audio bytes.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// HTTPClient implements Synthesizer against the ElevenLabs sound-generation API.
type HTTPClient struct {
	baseURL         string
	apiKey          string
	durationSeconds float64
	promptInfluence float64
	httpClient      *http.Client
}

type synthesizeRequest struct {
	Text            string  `json:"text"`
	DurationSeconds float64 `json:"duration_seconds"`
	PromptInfluence float64 `json:"prompt_influence"`
}

// NewHTTPClient creates an HTTPClient. durationSeconds and promptInfluence are
// sent with every request.
func NewHTTPClient(baseURL, apiKey string, durationSeconds, promptInfluence float64, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:         strings.TrimRight(baseURL, "/"),
		apiKey:          apiKey,
		durationSeconds: durationSeconds,
		promptInfluence: promptInfluence,
		httpClient:      &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	payload, err := json.Marshal(synthesizeRequest{
		Text:            text,
		DurationSeconds: c.durationSeconds,
		PromptInfluence: c.promptInfluence,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal sound request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sound-generation", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create sound request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSynthesis, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("%w: status %d: %s", ErrSynthesis, resp.StatusCode, snippet)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrSynthesis, err)
	}
	if len(audio) == 0 {
		return nil, ErrEmptyResult
	}
	return audio, nil
}

var _ Synthesizer = (*HTTPClient)(nil)
