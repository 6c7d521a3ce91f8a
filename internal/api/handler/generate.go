package handler

import (
	"context"
	"net/http"

	"github.com/kiranshivaraju/vidforge/internal/api/response"
	"github.com/kiranshivaraju/vidforge/pkg/models"
)

// Pipeline defines the interface the synchronous handler depends on.
type Pipeline interface {
	Submit(ctx context.Context, req models.GenerationRequest) (*models.FinalResult, error)
}

type generateResponse struct {
	VideoURL         string  `json:"video_url"`
	CombinedVideoURL string  `json:"combined_video_url"`
	SeparateAudioURL *string `json:"separate_audio_url"`
	Degraded         bool    `json:"degraded"`
}

func newGenerateResponse(res *models.FinalResult) generateResponse {
	out := generateResponse{
		VideoURL:         res.VideoURL,
		CombinedVideoURL: res.VideoURL,
		Degraded:         res.Degraded,
	}
	if res.AudioURL != "" {
		out.SeparateAudioURL = &res.AudioURL
	}
	return out
}

// NewGenerateHandler returns an http.HandlerFunc for POST /api/v1/generate.
// The request blocks until the pipeline finishes, which can take minutes.
func NewGenerateHandler(p Pipeline, maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseGenerationRequest(w, r, maxUploadBytes)
		if err != nil {
			writeRequestError(w, err)
			return
		}

		result, err := p.Submit(r.Context(), req)
		if err != nil {
			writePipelineError(w, r, err)
			return
		}

		response.JSON(w, newGenerateResponse(result))
	}
}
