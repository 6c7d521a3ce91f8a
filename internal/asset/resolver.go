// Package asset turns caller-supplied images into keyframe URLs the video
// service can fetch.
package asset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kiranshivaraju/vidforge/internal/imagehost"
	"github.com/kiranshivaraju/vidforge/pkg/models"
)

// ErrResolution marks any failure to produce a usable image URL.
var ErrResolution = errors.New("asset resolution failed")

// Stager stores uploaded bytes locally before they are pushed to the host.
type Stager interface {
	SaveUpload(filename string, data []byte) (string, error)
	Remove(path string) error
}

// Resolver resolves each input variant into a normalized keyframe set.
type Resolver struct {
	stager Stager
	host   imagehost.Client
	rehost bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithURLRehost sends url-mode input through the image host as well.
func WithURLRehost() Option {
	return func(r *Resolver) { r.rehost = true }
}

func NewResolver(stager Stager, host imagehost.Client, opts ...Option) *Resolver {
	r := &Resolver{stager: stager, host: host}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the keyframes for in. Text-only input yields no keyframes.
// Caller URLs are passed through unchanged unless re-hosting is enabled.
func (r *Resolver) Resolve(ctx context.Context, in models.Input) (models.Keyframes, error) {
	switch v := in.(type) {
	case models.TextOnly:
		return models.Keyframes{}, nil

	case models.ImageURL:
		if !r.rehost {
			return models.Keyframes{Frame0: v.URL}, nil
		}
		u, err := r.host.UploadURL(ctx, v.URL)
		if err != nil {
			return models.Keyframes{}, fmt.Errorf("%w: rehost url: %w", ErrResolution, err)
		}
		slog.Info("image re-hosted", "source", v.URL, "url", u)
		return models.Keyframes{Frame0: u}, nil

	case models.ImageUpload:
		u, err := r.hostUpload(ctx, "initial image", v.Image)
		if err != nil {
			return models.Keyframes{}, err
		}
		return models.Keyframes{Frame0: u}, nil

	case models.FirstLastFrame:
		first, err := r.hostUpload(ctx, "first frame", v.First)
		if err != nil {
			return models.Keyframes{}, err
		}
		last, err := r.hostUpload(ctx, "last frame", v.Last)
		if err != nil {
			return models.Keyframes{}, err
		}
		return models.Keyframes{Frame0: first, Frame1: last}, nil

	default:
		return models.Keyframes{}, fmt.Errorf("%w: unsupported input %T", ErrResolution, in)
	}
}

// hostUpload stages one upload, pushes it to the image host and drops the
// local copy once the hosted URL exists.
func (r *Resolver) hostUpload(ctx context.Context, label string, up models.Upload) (string, error) {
	if len(up.Data) == 0 {
		return "", fmt.Errorf("%w: %s: %w", ErrResolution, label, models.ErrMissingImage)
	}

	path, err := r.stager.SaveUpload(up.Filename, up.Data)
	if err != nil {
		return "", fmt.Errorf("%w: stage %s: %w", ErrResolution, label, err)
	}
	defer func() {
		if err := r.stager.Remove(path); err != nil {
			slog.Warn("failed to remove staged upload", "path", path, "error", err)
		}
	}()

	u, err := r.host.UploadFile(ctx, path)
	if err != nil {
		return "", fmt.Errorf("%w: host %s: %w", ErrResolution, label, err)
	}
	slog.Info("image hosted", "label", label, "url", u)
	return u, nil
}
