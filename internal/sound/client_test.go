package sound

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesize_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/sound-generation", r.URL.Path)
		assert.Equal(t, "xi-key", r.Header.Get("xi-api-key"))
		assert.Equal(t, "audio/mpeg", r.Header.Get("Accept"))

		var body synthesizeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "waves crashing", body.Text)
		assert.Equal(t, 10.0, body.DurationSeconds)
		assert.Equal(t, 0.3, body.PromptInfluence)

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3-fake-mp3"))
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL+"/v1", "xi-key", 10, 0.3, 5*time.Second)
	audio, err := c.Synthesize(context.Background(), "waves crashing")
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3-fake-mp3"), audio)
}

func TestSynthesize_Non2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":{"status":"invalid_api_key"}}`))
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL, "bad", 10, 0.3, 5*time.Second)
	_, err := c.Synthesize(context.Background(), "x")
	assert.ErrorIs(t, err, ErrSynthesis)
	assert.Contains(t, err.Error(), "401")
}

func TestSynthesize_EmptyBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := NewHTTPClient(ts.URL, "k", 10, 0.3, 5*time.Second)
	_, err := c.Synthesize(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyResult)
}

func TestSynthesize_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := ts.URL
	ts.Close()

	c := NewHTTPClient(url, "k", 10, 0.3, time.Second)
	_, err := c.Synthesize(context.Background(), "x")
	assert.ErrorIs(t, err, ErrSynthesis)
}
