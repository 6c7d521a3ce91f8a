package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/kiranshivaraju/vidforge/internal/api/response"
	"github.com/kiranshivaraju/vidforge/internal/pipeline"
)

// writeRequestError responds to a request that could not be parsed.
func writeRequestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errTooLarge):
		response.Error(w, http.StatusRequestEntityTooLarge, "REQUEST_TOO_LARGE", "Request body too large", nil)
	case errors.Is(err, errUnsupportedMedia):
		response.Error(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", err.Error(), nil)
	case errors.Is(err, errUnsupportedMode), errors.Is(err, errUnusedInput):
		response.Error(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	default:
		response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Malformed request body", nil)
	}
}

// writePipelineError maps a pipeline failure to its HTTP status and category code.
func writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	pe := pipeline.Classify(err)
	if pe.Category == pipeline.CategoryInternal {
		slog.Error("unhandled pipeline error", "path", r.URL.Path, "error", err)
	}

	var details any
	if len(pe.Details) > 0 {
		details = pe.Details
	}
	response.Error(w, pe.Category.HTTPStatus(), string(pe.Category), pe.Message, details)
}
