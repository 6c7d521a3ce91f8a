// Package staging manages the local scratch area for uploads, synthesized
// audio and published media. Every file gets a random name so concurrent
// pipeline invocations never share a path.
package staging

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/vidforge/pkg/models"
)

var (
	ErrDisallowedType = models.ErrDisallowedType
	ErrNotFound       = errors.New("media not found")
)

const (
	uploadsDir = "uploads"
	audioDir   = "audio"
	tmpDir     = "tmp"
	mediaDir   = "media"
)

// Area is a staging directory tree rooted at one path.
type Area struct {
	root          string
	publicBaseURL string
}

// New creates the staging tree under dir. publicBaseURL prefixes the
// locators returned by Publish.
func New(dir, publicBaseURL string) (*Area, error) {
	for _, sub := range []string{uploadsDir, audioDir, tmpDir, mediaDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create staging dir %s: %w", sub, err)
		}
	}
	return &Area{root: dir, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// SaveUpload stores an uploaded image and returns its local path.
func (a *Area) SaveUpload(filename string, data []byte) (string, error) {
	if err := models.CheckImage(filename, data); err != nil {
		return "", err
	}
	ext := strings.ToLower(filepath.Ext(filename))

	path := filepath.Join(a.root, uploadsDir, uuid.NewString()+ext)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	return path, nil
}

// WriteTempAudio stores synthesized audio and returns its path. The caller owns
// the file and must remove it.
func (a *Area) WriteTempAudio(data []byte, ext string) (string, error) {
	path := filepath.Join(a.root, audioDir, uuid.NewString()+ext)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}
	return path, nil
}

// TempPath returns a fresh path for intermediate output. Nothing is created.
func (a *Area) TempPath(ext string) string {
	return filepath.Join(a.root, tmpDir, uuid.NewString()+ext)
}

// Publish moves src into the media directory and returns its public locator.
func (a *Area) Publish(src string) (string, error) {
	name := uuid.NewString() + filepath.Ext(src)
	if err := os.Rename(src, filepath.Join(a.root, mediaDir, name)); err != nil {
		return "", fmt.Errorf("publish %s: %w", filepath.Base(src), err)
	}
	return a.URL(name), nil
}

// PublishCopy copies src into the media directory, leaving src in place.
func (a *Area) PublishCopy(src string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", filepath.Base(src), err)
	}
	defer in.Close()

	name := uuid.NewString() + filepath.Ext(src)
	dst := filepath.Join(a.root, mediaDir, name)
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("copy %s: %w", name, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return a.URL(name), nil
}

// URL returns the public locator of a published media file.
func (a *Area) URL(name string) string {
	return a.publicBaseURL + "/media/" + name
}

// MediaPath resolves a published media name to its local path. Names that
// would escape the media directory are rejected.
func (a *Area) MediaPath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrNotFound
	}
	path := filepath.Join(a.root, mediaDir, name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", ErrNotFound
	}
	return path, nil
}

// Remove deletes a staged file. A missing file is not an error.
func (a *Area) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
