// Package pipeline sequences prompt enhancement, asset resolution, video
// generation and the optional sound stage into one invocation.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/kiranshivaraju/vidforge/pkg/models"
)

// Enhancer normalizes a raw prompt. It never fails.
type Enhancer interface {
	Enhance(ctx context.Context, raw string) models.EnhancedPrompt
}

// Resolver turns the request's input variant into keyframe URLs.
type Resolver interface {
	Resolve(ctx context.Context, in models.Input) (models.Keyframes, error)
}

// VideoRunner submits a generation and polls it to a terminal state.
type VideoRunner interface {
	Run(ctx context.Context, prompt models.EnhancedPrompt, kf models.Keyframes) (*models.VideoJob, error)
}

// SoundGenerator produces temporary audio for a scene, or models.NoAudio.
type SoundGenerator interface {
	Generate(ctx context.Context, scene string) models.AudioResult
}

// Combiner muxes audio into a video and owns the temporary audio file.
type Combiner interface {
	Combine(ctx context.Context, videoURL string, audio models.AudioResult) models.FinalResult
}

// Orchestrator holds no per-invocation state. Concurrent Submit calls share
// nothing but the stage implementations.
type Orchestrator struct {
	enhancer Enhancer
	resolver Resolver
	video    VideoRunner
	sound    SoundGenerator
	muxer    Combiner
}

// NewOrchestrator wires the pipeline stages.
func NewOrchestrator(enhancer Enhancer, resolver Resolver, video VideoRunner, sound SoundGenerator, muxer Combiner) *Orchestrator {
	return &Orchestrator{
		enhancer: enhancer,
		resolver: resolver,
		video:    video,
		sound:    sound,
		muxer:    muxer,
	}
}

// Submit runs the pipeline for req. Failures are returned as *Error. Sound and
// mux failures never fail the call; they set FinalResult.Degraded instead.
func (o *Orchestrator) Submit(ctx context.Context, req models.GenerationRequest) (*models.FinalResult, error) {
	if err := req.Validate(); err != nil {
		return nil, Classify(err)
	}

	start := time.Now()
	mode := req.Input.Mode()

	prompt := o.enhancer.Enhance(ctx, req.Prompt)

	kf, err := o.resolver.Resolve(ctx, req.Input)
	if err != nil {
		pe := Classify(err)
		slog.Warn("asset resolution failed", "mode", mode, "category", pe.Category, "error", err)
		return nil, pe
	}

	job, err := o.video.Run(ctx, prompt, kf)
	if err != nil {
		pe := Classify(err)
		attrs := []any{"mode", mode, "category", pe.Category, "error", err}
		if job != nil {
			attrs = append(attrs, "generation_id", job.ID, "polls", job.Polls)
		}
		slog.Error("video generation failed", attrs...)
		return nil, pe
	}

	if !req.SoundEnabled {
		slog.Info("pipeline completed",
			"mode", mode,
			"generation_id", job.ID,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return &models.FinalResult{VideoURL: job.VideoURL}, nil
	}

	audio := o.sound.Generate(ctx, prompt.Prompt)
	result := o.muxer.Combine(ctx, job.VideoURL, audio)
	if audio.Absent() {
		result.Degraded = true
	}

	slog.Info("pipeline completed",
		"mode", mode,
		"generation_id", job.ID,
		"degraded", result.Degraded,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return &result, nil
}
