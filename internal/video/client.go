package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kiranshivaraju/vidforge/pkg/models"
)

const maxErrorBody = 512

// Client is the video-generation service interface.
type Client interface {
	// Submit starts a generation and returns its id. No result is available synchronously.
	Submit(ctx context.Context, req SubmitRequest) (string, error)
	// Status fetches the current state of a generation.
	Status(ctx context.Context, id string) (*Generation, error)
}

// Keyframe is an anchor image in the service's wire format.
type Keyframe struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// SubmitRequest is the generation request body.
type SubmitRequest struct {
	Prompt          string              `json:"prompt"`
	AspectRatio     string              `json:"aspect_ratio,omitempty"`
	DurationSeconds int                 `json:"duration_seconds,omitempty"`
	Keyframes       map[string]Keyframe `json:"keyframes,omitempty"`
}

// NewSubmitRequest builds the request body from an enhanced prompt and keyframes.
// The keyframes object is omitted entirely when there are none.
func NewSubmitRequest(p models.EnhancedPrompt, kf models.Keyframes) SubmitRequest {
	req := SubmitRequest{
		Prompt:          p.Prompt,
		AspectRatio:     p.AspectRatio,
		DurationSeconds: p.Duration,
	}
	if kf.Empty() {
		return req
	}
	req.Keyframes = map[string]Keyframe{}
	if kf.Frame0 != "" {
		req.Keyframes["frame0"] = Keyframe{Type: "image", URL: kf.Frame0}
	}
	if kf.Frame1 != "" {
		req.Keyframes["frame1"] = Keyframe{Type: "image", URL: kf.Frame1}
	}
	return req
}

// Generation is the status document of one remote generation.
type Generation struct {
	ID            string `json:"id"`
	State         string `json:"state"`
	FailureReason string `json:"failure_reason"`
	Assets        struct {
		Video string `json:"video"`
	} `json:"assets"`
}

// HTTPClient implements Client against the Luma Dream Machine API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient creates an HTTPClient. timeout bounds each request, not the whole generation.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal generation request: %w", err)
	}

	var gen Generation
	if err := c.do(ctx, "submit", http.MethodPost, c.baseURL+"/generations", payload, &gen); err != nil {
		return "", err
	}
	if gen.ID == "" {
		return "", fmt.Errorf("%w: submit: response has no generation id", ErrTransport)
	}
	return gen.ID, nil
}

func (c *HTTPClient) Status(ctx context.Context, id string) (*Generation, error) {
	var gen Generation
	if err := c.do(ctx, "status", http.MethodGet, c.baseURL+"/generations/"+url.PathEscape(id), nil, &gen); err != nil {
		return nil, err
	}
	return &gen, nil
}

func (c *HTTPClient) do(ctx context.Context, op, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s: %w", op, ctx.Err())
		}
		return fmt.Errorf("%w: %s: %v", ErrTransport, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: decode response: %v", ErrTransport, op, err)
	}
	return nil
}

var _ Client = (*HTTPClient)(nil)
