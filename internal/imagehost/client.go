// Package imagehost uploads images to an imgbb-compatible hosting service
// and returns their public URLs.
package imagehost

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

var ErrUpload = errors.New("image upload failed")

// Client is the image-hosting interface.
type Client interface {
	// UploadFile pushes a local image and returns its public URL.
	UploadFile(ctx context.Context, path string) (string, error)
	// UploadURL asks the host to fetch and re-host a remote image.
	UploadURL(ctx context.Context, imageURL string) (string, error)
}

// HTTPClient implements Client over the imgbb upload API.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type uploadResponse struct {
	Success bool `json:"success"`
	Data    struct {
		URL string `json:"url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewHTTPClient creates an HTTPClient for the service at baseURL.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) UploadFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: read image: %v", ErrUpload, err)
	}
	return c.upload(ctx, base64.StdEncoding.EncodeToString(data))
}

func (c *HTTPClient) UploadURL(ctx context.Context, imageURL string) (string, error) {
	return c.upload(ctx, imageURL)
}

func (c *HTTPClient) upload(ctx context.Context, image string) (string, error) {
	form := url.Values{}
	form.Set("key", c.apiKey)
	form.Set("image", image)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpload, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrUpload, err)
	}

	var out uploadResponse
	decodeErr := json.Unmarshal(body, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil && out.Error.Message != "" {
			return "", fmt.Errorf("%w: status %d: %s", ErrUpload, resp.StatusCode, out.Error.Message)
		}
		return "", fmt.Errorf("%w: status %d", ErrUpload, resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUpload, decodeErr)
	}
	if !out.Success {
		return "", fmt.Errorf("%w: %s", ErrUpload, out.Error.Message)
	}
	if out.Data.URL == "" {
		return "", fmt.Errorf("%w: response has no url", ErrUpload)
	}
	return out.Data.URL, nil
}

var _ Client = (*HTTPClient)(nil)
