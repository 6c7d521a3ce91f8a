package models

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
)

// InputMode names the way a caller supplies visual input for a generation.
type InputMode string

const (
	ModeTextOnly       InputMode = "text_only"
	ModeImageText      InputMode = "image_text"
	ModeURL            InputMode = "url"
	ModeFirstLastFrame InputMode = "first_last_frame"
)

var (
	ErrEmptyPrompt  = errors.New("prompt is required")
	ErrMissingInput = errors.New("input is required")
	ErrMissingImage = errors.New("image is required")
	ErrInvalidURL   = errors.New("url must start with http:// or https://")

	ErrDisallowedType = errors.New("file type not allowed")
)

var allowedImageExt = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
}

// Input is the sealed set of input variants. Only the types in this file implement it.
type Input interface {
	Mode() InputMode
	validate() error
}

// Upload is an image file received from the caller.
type Upload struct {
	Filename string
	Data     []byte
}

func (u Upload) empty() bool { return len(u.Data) == 0 }

// CheckImage rejects files whose extension or sniffed content is not an image.
func CheckImage(filename string, data []byte) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedImageExt[ext] {
		return fmt.Errorf("%w: %q", ErrDisallowedType, ext)
	}
	if ct := http.DetectContentType(data); !strings.HasPrefix(ct, "image/") {
		return fmt.Errorf("%w: content is %s", ErrDisallowedType, ct)
	}
	return nil
}

func (u Upload) validate(label string) error {
	if u.empty() {
		return fmt.Errorf("%s: %w", label, ErrMissingImage)
	}
	if err := CheckImage(u.Filename, u.Data); err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	return nil
}

// TextOnly generates from the prompt alone.
type TextOnly struct{}

// ImageUpload anchors the first frame to an uploaded image.
type ImageUpload struct {
	Image Upload
}

// ImageURL anchors the first frame to an image the caller already hosts.
type ImageURL struct {
	URL string
}

// FirstLastFrame anchors both the first and the last frame.
type FirstLastFrame struct {
	First Upload
	Last  Upload
}

func (TextOnly) Mode() InputMode       { return ModeTextOnly }
func (ImageUpload) Mode() InputMode    { return ModeImageText }
func (ImageURL) Mode() InputMode       { return ModeURL }
func (FirstLastFrame) Mode() InputMode { return ModeFirstLastFrame }

func (TextOnly) validate() error { return nil }

func (i ImageUpload) validate() error {
	return i.Image.validate("initial image")
}

func (i ImageURL) validate() error {
	u := strings.TrimSpace(i.URL)
	if u == "" {
		return fmt.Errorf("url: %w", ErrMissingInput)
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return ErrInvalidURL
	}
	return nil
}

func (i FirstLastFrame) validate() error {
	if err := i.First.validate("first frame"); err != nil {
		return err
	}
	return i.Last.validate("last frame")
}

// GenerationRequest is the caller's raw intent.
type GenerationRequest struct {
	Prompt       string
	Input        Input
	SoundEnabled bool
}

// Validate checks that exactly one input variant is set and the prompt is non-empty.
func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return ErrEmptyPrompt
	}
	if r.Input == nil {
		return ErrMissingInput
	}
	return r.Input.validate()
}

// EnhancedPrompt is the language-model normalized generation spec.
type EnhancedPrompt struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
	Duration    int    `json:"duration"`
}

// Keyframes holds up to two anchor image URLs. Frame1 is only valid with Frame0.
type Keyframes struct {
	Frame0 string
	Frame1 string
}

func (k Keyframes) Empty() bool { return k.Frame0 == "" && k.Frame1 == "" }

func (k Keyframes) Validate() error {
	if k.Frame1 != "" && k.Frame0 == "" {
		return errors.New("frame1 requires frame0")
	}
	return nil
}
