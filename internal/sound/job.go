// Package sound produces an optional sound-effect clip for a generated scene.
// Every failure degrades to models.NoAudio; nothing here returns an error.
package sound

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kiranshivaraju/vidforge/pkg/models"
)

const (
	systemPrompt = "Generate a brief sound effect description for a short video scene (5 seconds or less). " +
		"Keep it concise and specific."
	userPromptPrefix   = "Create a sound effect description for: "
	defaultDescription = "Default sound effect"
	audioExt           = ".mp3"
)

// AudioWriter stores synthesized audio and returns its local path.
type AudioWriter interface {
	WriteTempAudio(data []byte, ext string) (string, error)
}

// Job describes a scene with the language model and synthesizes it.
type Job struct {
	provider models.LLMProvider
	synth    Synthesizer
	writer   AudioWriter
}

// NewJob creates a Job. A nil synth disables sound: Generate always returns NoAudio.
func NewJob(provider models.LLMProvider, synth Synthesizer, writer AudioWriter) *Job {
	return &Job{provider: provider, synth: synth, writer: writer}
}

// Generate returns the path of a temporary audio file for scene, or NoAudio.
// The caller owns the returned file.
func (j *Job) Generate(ctx context.Context, scene string) models.AudioResult {
	if j.synth == nil {
		slog.Warn("sound effect skipped: no audio-synthesis key configured")
		return models.NoAudio
	}

	description, err := j.describe(ctx, scene)
	if err != nil {
		slog.Warn("sound description unavailable, continuing without audio",
			"provider", j.provider.Name(),
			"error", err,
		)
		return models.NoAudio
	}

	audio, err := j.synth.Synthesize(ctx, description)
	if err != nil {
		slog.Warn("sound effect synthesis failed, continuing without audio", "error", err)
		return models.NoAudio
	}

	path, err := j.writer.WriteTempAudio(audio, audioExt)
	if err != nil {
		slog.Warn("sound effect could not be staged, continuing without audio", "error", err)
		return models.NoAudio
	}

	slog.Info("sound effect generated", "bytes", len(audio))
	return models.AudioResult{Path: path}
}

// describe asks the model for a short sound description. An empty reply
// falls back to a generic description.
func (j *Job) describe(ctx context.Context, scene string) (string, error) {
	reply, err := j.provider.Complete(ctx, models.ChatRequest{
		System: systemPrompt,
		User:   userPromptPrefix + scene,
	})
	if err != nil {
		return "", err
	}
	if d := strings.TrimSpace(reply); d != "" {
		return d, nil
	}
	return defaultDescription, nil
}
