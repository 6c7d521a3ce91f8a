// Package mux combines a generated video with a synthesized audio track using
// ffmpeg. Tool failures degrade to the original video instead of failing.
package mux

import (
	"context"
	"log/slog"

	"github.com/kiranshivaraju/vidforge/pkg/models"
	"golang.org/x/sync/semaphore"
)

const maxStderrLog = 4096

// Stager is the part of the staging area the muxer needs.
type Stager interface {
	TempPath(ext string) string
	Publish(src string) (string, error)
	PublishCopy(src string) (string, error)
	Remove(path string) error
}

// Muxer invokes ffmpeg to put an audio track under a video.
type Muxer struct {
	runner     Runner
	ffmpegPath string
	stager     Stager
	sem        *semaphore.Weighted
}

// New creates a Muxer that runs at most maxConcurrent ffmpeg processes at once.
func New(runner Runner, ffmpegPath string, stager Stager, maxConcurrent int) *Muxer {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Muxer{
		runner:     runner,
		ffmpegPath: ffmpegPath,
		stager:     stager,
		sem:        semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Args returns the ffmpeg arguments for muxing: copy the first input's video
// stream, encode the second input's audio to AAC, stop at the shorter stream.
func Args(videoURL, audioPath, outPath string) []string {
	return []string{
		"-y",
		"-i", videoURL,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-shortest",
		outPath,
	}
}

// Combine muxes audio into the video at videoURL. With absent audio the video
// is returned untouched and no process runs. The temporary audio file is
// removed exactly once on every path.
func (m *Muxer) Combine(ctx context.Context, videoURL string, audio models.AudioResult) models.FinalResult {
	if audio.Absent() {
		return models.FinalResult{VideoURL: videoURL}
	}
	defer m.removeTemp(audio.Path)

	degraded := models.FinalResult{VideoURL: videoURL, Degraded: true}

	if err := m.sem.Acquire(ctx, 1); err != nil {
		slog.Warn("mux skipped, returning video without audio", "error", err)
		return degraded
	}
	defer m.sem.Release(1)

	out := m.stager.TempPath(".mp4")
	stderr, err := m.runner.Run(ctx, m.ffmpegPath, Args(videoURL, audio.Path, out)...)
	if err != nil {
		slog.Error("ffmpeg failed, returning video without audio",
			"error", err,
			"stderr", tail(stderr, maxStderrLog),
		)
		m.removeTemp(out)
		return degraded
	}

	combinedURL, err := m.stager.Publish(out)
	if err != nil {
		slog.Warn("publishing muxed video failed, returning video without audio", "error", err)
		m.removeTemp(out)
		return degraded
	}

	result := models.FinalResult{VideoURL: combinedURL}
	audioURL, err := m.stager.PublishCopy(audio.Path)
	if err != nil {
		slog.Warn("publishing standalone audio failed", "error", err)
		return result
	}
	result.AudioURL = audioURL

	slog.Info("video and audio combined", "video_url", combinedURL, "audio_url", audioURL)
	return result
}

func (m *Muxer) removeTemp(path string) {
	if err := m.stager.Remove(path); err != nil {
		slog.Warn("removing temporary file failed", "path", path, "error", err)
	}
}

func tail(b []byte, n int) string {
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(b)
}
