package sound_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/kiranshivaraju/vidforge/internal/llm/mock"
	"github.com/kiranshivaraju/vidforge/internal/sound"
	"github.com/kiranshivaraju/vidforge/internal/staging"
	"github.com/kiranshivaraju/vidforge/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockSynth struct {
	audio []byte
	err   error
	texts []string
}

func (m *mockSynth) Synthesize(_ context.Context, text string) ([]byte, error) {
	m.texts = append(m.texts, text)
	return m.audio, m.err
}

type failingWriter struct{}

func (failingWriter) WriteTempAudio([]byte, string) (string, error) {
	return "", errors.New("disk full")
}

func newArea(t *testing.T) *staging.Area {
	t.Helper()
	area, err := staging.New(t.TempDir(), "http://localhost:8080")
	require.NoError(t, err)
	return area
}

// --- Generate ---

func TestGenerate_WritesAudio(t *testing.T) {
	provider := mock.NewReplyProvider("  gentle waves, seagulls  ")
	synth := &mockSynth{audio: []byte("mp3-bytes")}
	job := sound.NewJob(provider, synth, newArea(t))

	res := job.Generate(context.Background(), "a beach at sunset")

	require.False(t, res.Absent())
	assert.FileExists(t, res.Path)
	assert.Equal(t, ".mp3", res.Path[len(res.Path)-4:])
	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), data)

	assert.Equal(t, []string{"gentle waves, seagulls"}, synth.texts)
	calls := provider.Calls()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].System, "5 seconds or less")
	assert.Equal(t, "Create a sound effect description for: a beach at sunset", calls[0].User)
}

func TestGenerate_EmptyDescriptionUsesDefault(t *testing.T) {
	synth := &mockSynth{audio: []byte("mp3")}
	job := sound.NewJob(mock.NewReplyProvider("   "), synth, newArea(t))

	res := job.Generate(context.Background(), "scene")

	assert.False(t, res.Absent())
	assert.Equal(t, []string{"Default sound effect"}, synth.texts)
}

func TestGenerate_DescriptionFailureIsAbsent(t *testing.T) {
	synth := &mockSynth{audio: []byte("mp3")}
	job := sound.NewJob(mock.NewFailingProvider(errors.New("llm down")), synth, newArea(t))

	res := job.Generate(context.Background(), "scene")

	assert.True(t, res.Absent())
	assert.Empty(t, synth.texts)
}

func TestGenerate_SynthesisFailureIsAbsent(t *testing.T) {
	job := sound.NewJob(mock.NewReplyProvider("boom"), &mockSynth{err: sound.ErrSynthesis}, newArea(t))

	res := job.Generate(context.Background(), "scene")
	assert.Equal(t, models.NoAudio, res)
}

func TestGenerate_Non2xxFromServiceIsAbsent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	synth := sound.NewHTTPClient(ts.URL, "k", 10, 0.3, 5*time.Second)
	job := sound.NewJob(mock.NewReplyProvider("rain"), synth, newArea(t))

	res := job.Generate(context.Background(), "scene")
	assert.True(t, res.Absent())
}

func TestGenerate_EmptyAudioIsAbsent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	synth := sound.NewHTTPClient(ts.URL, "k", 10, 0.3, 5*time.Second)
	job := sound.NewJob(mock.NewReplyProvider("rain"), synth, newArea(t))

	assert.True(t, job.Generate(context.Background(), "scene").Absent())
}

func TestGenerate_WriteFailureIsAbsent(t *testing.T) {
	job := sound.NewJob(mock.NewReplyProvider("rain"), &mockSynth{audio: []byte("mp3")}, failingWriter{})

	assert.True(t, job.Generate(context.Background(), "scene").Absent())
}

func TestGenerate_DisabledWithoutSynthesizer(t *testing.T) {
	provider := mock.NewReplyProvider("rain")
	job := sound.NewJob(provider, nil, newArea(t))

	res := job.Generate(context.Background(), "scene")

	assert.True(t, res.Absent())
	assert.Empty(t, provider.Calls())
}
