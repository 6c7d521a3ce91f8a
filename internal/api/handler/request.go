package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/kiranshivaraju/vidforge/pkg/models"
)

var (
	errUnsupportedMode  = errors.New("input_type must be one of text_only, image_text, url, first_last_frame")
	errUnsupportedMedia = errors.New("content type must be multipart/form-data, application/x-www-form-urlencoded or application/json")
	errTooLarge         = errors.New("request body too large")
	errUnusedInput      = errors.New("input not used by the selected input_type")
)

// modeParts lists the image parts and url field each mode reads.
var modeParts = map[models.InputMode]struct {
	files []string
	url   bool
}{
	models.ModeTextOnly:       {},
	models.ModeImageText:      {files: []string{"initial_image"}},
	models.ModeURL:            {url: true},
	models.ModeFirstLastFrame: {files: []string{"first_frame", "last_frame"}},
}

// generationForm is the wire shape shared by the form and JSON encodings.
type generationForm struct {
	Prompt       string `json:"prompt"`
	InputType    string `json:"input_type"`
	URL          string `json:"url"`
	SoundEnabled bool   `json:"sound_effect_enabled"`
}

// parseGenerationRequest reads a generation request from a multipart form,
// a url-encoded form or a JSON body. Image files are only accepted as multipart parts.
func parseGenerationRequest(w http.ResponseWriter, r *http.Request, maxBytes int64) (models.GenerationRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		form  generationForm
		files = map[string]models.Upload{}
	)
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return models.GenerationRequest{}, bodyError(err)
		}
		form = formFields(r)
		for _, field := range []string{"initial_image", "first_frame", "last_frame"} {
			up, err := formFile(r, field)
			if err != nil {
				return models.GenerationRequest{}, err
			}
			if up != nil {
				files[field] = *up
			}
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return models.GenerationRequest{}, bodyError(err)
		}
		form = formFields(r)
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			return models.GenerationRequest{}, bodyError(err)
		}
	default:
		return models.GenerationRequest{}, errUnsupportedMedia
	}

	input, err := buildInput(form, files)
	if err != nil {
		return models.GenerationRequest{}, err
	}
	return models.GenerationRequest{
		Prompt:       strings.TrimSpace(form.Prompt),
		Input:        input,
		SoundEnabled: form.SoundEnabled,
	}, nil
}

func formFields(r *http.Request) generationForm {
	return generationForm{
		Prompt:       r.FormValue("prompt"),
		InputType:    r.FormValue("input_type"),
		URL:          r.FormValue("url"),
		SoundEnabled: parseToggle(r.FormValue("sound_effect_enabled")),
	}
}

// parseToggle accepts the values browsers and clients send for a checkbox.
func parseToggle(v string) bool {
	if strings.EqualFold(v, "on") {
		return true
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

func formFile(r *http.Request, field string) (*models.Upload, error) {
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	defer f.Close()
	return readUpload(f, hdr)
}

func readUpload(f multipart.File, hdr *multipart.FileHeader) (*models.Upload, error) {
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", hdr.Filename, err)
	}
	return &models.Upload{Filename: hdr.Filename, Data: data}, nil
}

func buildInput(form generationForm, files map[string]models.Upload) (models.Input, error) {
	mode := models.InputMode(form.InputType)
	if mode == "" {
		mode = models.ModeTextOnly
	}
	if err := checkUnused(mode, form, files); err != nil {
		return nil, err
	}

	switch mode {
	case models.ModeTextOnly:
		return models.TextOnly{}, nil
	case models.ModeImageText:
		return models.ImageUpload{Image: files["initial_image"]}, nil
	case models.ModeURL:
		return models.ImageURL{URL: strings.TrimSpace(form.URL)}, nil
	case models.ModeFirstLastFrame:
		return models.FirstLastFrame{First: files["first_frame"], Last: files["last_frame"]}, nil
	}
	return nil, errUnsupportedMode
}

// checkUnused rejects image parts or a url the mode would silently drop.
func checkUnused(mode models.InputMode, form generationForm, files map[string]models.Upload) error {
	parts, ok := modeParts[mode]
	if !ok {
		return errUnsupportedMode
	}
	if !parts.url && strings.TrimSpace(form.URL) != "" {
		return fmt.Errorf("%w: url with input_type %s", errUnusedInput, mode)
	}
	for field := range files {
		if !slices.Contains(parts.files, field) {
			return fmt.Errorf("%w: %s with input_type %s", errUnusedInput, field, mode)
		}
	}
	return nil
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || errors.Is(err, multipart.ErrMessageTooLarge) {
		return errTooLarge
	}
	return fmt.Errorf("malformed request body: %w", err)
}
