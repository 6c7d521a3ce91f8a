// Package video submits generations to the video service and polls them to a
// terminal state.
package video

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kiranshivaraju/vidforge/pkg/models"
)

const (
	DefaultPollInterval    = 5 * time.Second
	DefaultMaxPollAttempts = 60
)

// Remote states reported by the service. Anything else means "not done yet".
const (
	stateCompleted = "completed"
	stateFailed    = "failed"
)

// Sleeper waits between polls. Sleep returns early with ctx.Err() on cancellation.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Job drives one generation from submission to Completed, Failed or TimedOut.
// A Job holds no per-generation state and is safe for concurrent use.
type Job struct {
	client      Client
	interval    time.Duration
	maxAttempts int
	sleeper     Sleeper
}

type Option func(*Job)

func WithPollInterval(d time.Duration) Option {
	return func(j *Job) {
		if d > 0 {
			j.interval = d
		}
	}
}

func WithMaxAttempts(n int) Option {
	return func(j *Job) {
		if n > 0 {
			j.maxAttempts = n
		}
	}
}

// WithSleeper replaces the real timer, typically with a fake in tests.
func WithSleeper(s Sleeper) Option {
	return func(j *Job) { j.sleeper = s }
}

func NewJob(client Client, opts ...Option) *Job {
	j := &Job{
		client:      client,
		interval:    DefaultPollInterval,
		maxAttempts: DefaultMaxPollAttempts,
		sleeper:     timerSleeper{},
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Run submits the generation and polls until it reaches a terminal state.
//
// The returned handle is nil only if submission failed. Errors wrap ErrTransport
// (not retried), ErrJobFailed, ErrJobTimedOut or the context error.
func (j *Job) Run(ctx context.Context, prompt models.EnhancedPrompt, kf models.Keyframes) (*models.VideoJob, error) {
	if err := kf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid keyframes: %w", err)
	}

	id, err := j.client.Submit(ctx, NewSubmitRequest(prompt, kf))
	if err != nil {
		return nil, fmt.Errorf("submit generation: %w", err)
	}
	handle := models.NewVideoJob(id)
	slog.Info("video generation submitted",
		"generation_id", id,
		"aspect_ratio", prompt.AspectRatio,
		"duration", prompt.Duration,
		"keyframes", !kf.Empty(),
	)

	for attempt := 1; attempt <= j.maxAttempts; attempt++ {
		gen, err := j.client.Status(ctx, id)
		handle.Polls = attempt
		if err != nil {
			return handle, fmt.Errorf("poll generation %s: %w", id, err)
		}

		switch gen.State {
		case stateCompleted:
			if gen.Assets.Video == "" {
				return handle, failJob(handle, "completed without a video asset")
			}
			handle.VideoURL = gen.Assets.Video
			if err := handle.Transition(models.VideoCompleted); err != nil {
				return handle, err
			}
			slog.Info("video generation completed", "generation_id", id, "polls", attempt)
			return handle, nil

		case stateFailed:
			reason := gen.FailureReason
			if reason == "" {
				reason = "unknown reason"
			}
			return handle, failJob(handle, reason)

		default:
			if err := handle.Transition(models.VideoProcessing); err != nil {
				return handle, err
			}
			slog.Debug("video generation in progress",
				"generation_id", id,
				"state", gen.State,
				"attempt", attempt,
				"max_attempts", j.maxAttempts,
			)
		}

		if attempt == j.maxAttempts {
			break
		}
		if err := j.sleeper.Sleep(ctx, j.interval); err != nil {
			return handle, fmt.Errorf("poll generation %s: %w", id, err)
		}
	}

	if err := handle.Transition(models.VideoTimedOut); err != nil {
		return handle, err
	}
	slog.Warn("video generation timed out", "generation_id", id, "polls", handle.Polls)
	return handle, &TimeoutError{GenerationID: id, Attempts: handle.Polls}
}

func failJob(handle *models.VideoJob, reason string) error {
	handle.FailureReason = reason
	if err := handle.Transition(models.VideoFailed); err != nil {
		return err
	}
	slog.Warn("video generation failed", "generation_id", handle.ID, "reason", reason)
	return &FailureError{GenerationID: handle.ID, Reason: reason}
}
