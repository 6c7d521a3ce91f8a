package models_test

import (
	"testing"

	"github.com/kiranshivaraju/vidforge/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var png = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func image(name string) models.Upload {
	return models.Upload{Filename: name, Data: png}
}

func TestGenerationRequest_Validate(t *testing.T) {
	cases := []struct {
		name string
		req  models.GenerationRequest
		want error
	}{
		{"text only", models.GenerationRequest{Prompt: "a fox", Input: models.TextOnly{}}, nil},
		{"empty prompt", models.GenerationRequest{Prompt: " \t", Input: models.TextOnly{}}, models.ErrEmptyPrompt},
		{"nil input", models.GenerationRequest{Prompt: "p"}, models.ErrMissingInput},

		{"image upload", models.GenerationRequest{Prompt: "p", Input: models.ImageUpload{Image: image("cat.PNG")}}, nil},
		{"image missing", models.GenerationRequest{Prompt: "p", Input: models.ImageUpload{}}, models.ErrMissingImage},
		{"image wrong extension", models.GenerationRequest{Prompt: "p", Input: models.ImageUpload{Image: image("cat.txt")}}, models.ErrDisallowedType},
		{"image wrong content", models.GenerationRequest{Prompt: "p",
			Input: models.ImageUpload{Image: models.Upload{Filename: "cat.png", Data: []byte("hello")}}}, models.ErrDisallowedType},

		{"url", models.GenerationRequest{Prompt: "p", Input: models.ImageURL{URL: "https://img.example.com/a.png"}}, nil},
		{"url empty", models.GenerationRequest{Prompt: "p", Input: models.ImageURL{URL: "  "}}, models.ErrMissingInput},
		{"url scheme", models.GenerationRequest{Prompt: "p", Input: models.ImageURL{URL: "ftp://host/a.png"}}, models.ErrInvalidURL},

		{"first last", models.GenerationRequest{Prompt: "p",
			Input: models.FirstLastFrame{First: image("a.jpg"), Last: image("b.webp")}}, nil},
		{"first missing", models.GenerationRequest{Prompt: "p",
			Input: models.FirstLastFrame{Last: image("b.png")}}, models.ErrMissingImage},
		{"last missing", models.GenerationRequest{Prompt: "p",
			Input: models.FirstLastFrame{First: image("a.png")}}, models.ErrMissingImage},
		{"last wrong type", models.GenerationRequest{Prompt: "p",
			Input: models.FirstLastFrame{First: image("a.png"), Last: image("b.gifx")}}, models.ErrDisallowedType},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.req.Validate()
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestInput_Modes(t *testing.T) {
	assert.Equal(t, models.ModeTextOnly, models.TextOnly{}.Mode())
	assert.Equal(t, models.ModeImageText, models.ImageUpload{}.Mode())
	assert.Equal(t, models.ModeURL, models.ImageURL{}.Mode())
	assert.Equal(t, models.ModeFirstLastFrame, models.FirstLastFrame{}.Mode())
}

func TestCheckImage(t *testing.T) {
	require.NoError(t, models.CheckImage("photo.jpeg", png))

	err := models.CheckImage("photo", png)
	assert.ErrorIs(t, err, models.ErrDisallowedType)
}

func TestKeyframes(t *testing.T) {
	assert.True(t, models.Keyframes{}.Empty())
	assert.NoError(t, models.Keyframes{}.Validate())
	assert.NoError(t, models.Keyframes{Frame0: "https://i/a.png"}.Validate())
	assert.NoError(t, models.Keyframes{Frame0: "https://i/a.png", Frame1: "https://i/b.png"}.Validate())

	only1 := models.Keyframes{Frame1: "https://i/b.png"}
	assert.False(t, only1.Empty())
	assert.Error(t, only1.Validate())
}
