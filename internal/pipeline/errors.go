package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/kiranshivaraju/vidforge/internal/asset"
	"github.com/kiranshivaraju/vidforge/internal/video"
	"github.com/kiranshivaraju/vidforge/pkg/models"
)

// Category is the caller-facing failure class of a pipeline run.
type Category string

const (
	CategoryInvalidInput        Category = "INVALID_INPUT"
	CategoryAssetUnavailable    Category = "ASSET_UNAVAILABLE"
	CategoryPromptRejected      Category = "PROMPT_REJECTED"
	CategoryUpstreamAuth        Category = "UPSTREAM_AUTH"
	CategoryGenerationFailed    Category = "GENERATION_FAILED"
	CategoryGenerationTimeout   Category = "GENERATION_TIMEOUT"
	CategoryUpstreamUnavailable Category = "UPSTREAM_UNAVAILABLE"
	CategoryCanceled            Category = "CANCELED"
	CategoryInternal            Category = "INTERNAL_ERROR"
)

// Error is a categorized pipeline failure. Message is safe to show to callers;
// Err keeps the underlying cause for logs.
type Error struct {
	Category Category
	Message  string
	Details  map[string]string
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Category, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the category to the status the HTTP adapter responds with.
func (c Category) HTTPStatus() int {
	switch c {
	case CategoryInvalidInput:
		return http.StatusBadRequest
	case CategoryAssetUnavailable, CategoryPromptRejected:
		return http.StatusUnprocessableEntity
	case CategoryUpstreamAuth, CategoryGenerationFailed, CategoryUpstreamUnavailable:
		return http.StatusBadGateway
	case CategoryGenerationTimeout:
		return http.StatusGatewayTimeout
	case CategoryCanceled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Classify maps a component error to a categorized *Error. Raw upstream text
// never ends up in Message.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}

	switch {
	case isInputError(err):
		return &Error{Category: CategoryInvalidInput, Message: "Invalid input: " + inputReason(err), Err: err}
	case errors.Is(err, asset.ErrResolution):
		return &Error{Category: CategoryAssetUnavailable, Message: "Image could not be processed", Err: err}
	}

	var fe *video.FailureError
	if errors.As(err, &fe) {
		return &Error{
			Category: CategoryGenerationFailed,
			Message:  "Video generation failed",
			Details:  map[string]string{"generation_id": fe.GenerationID, "reason": fe.Reason},
			Err:      err,
		}
	}

	var te *video.TimeoutError
	if errors.As(err, &te) {
		return &Error{
			Category: CategoryGenerationTimeout,
			Message:  "Video generation is taking too long",
			Details:  map[string]string{"generation_id": te.GenerationID},
			Err:      err,
		}
	}

	var se *video.StatusError
	if errors.As(err, &se) {
		switch se.StatusCode {
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return &Error{Category: CategoryPromptRejected, Message: "Prompt too complex", Err: err}
		case http.StatusUnauthorized, http.StatusForbidden:
			return &Error{Category: CategoryUpstreamAuth, Message: "Authentication issue", Err: err}
		}
		return &Error{Category: CategoryUpstreamUnavailable, Message: "Processing error", Err: err}
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Category: CategoryGenerationTimeout, Message: "Video generation is taking too long", Err: err}
	case errors.Is(err, context.Canceled):
		return &Error{Category: CategoryCanceled, Message: "Request canceled", Err: err}
	case errors.Is(err, video.ErrTransport):
		return &Error{Category: CategoryUpstreamUnavailable, Message: "Processing error", Err: err}
	}
	return &Error{Category: CategoryInternal, Message: "Processing error", Err: err}
}

var inputErrors = []error{
	models.ErrEmptyPrompt,
	models.ErrMissingInput,
	models.ErrMissingImage,
	models.ErrInvalidURL,
	models.ErrDisallowedType,
}

func isInputError(err error) bool {
	for _, target := range inputErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// inputReason returns the message of the first input sentinel err wraps.
func inputReason(err error) string {
	for _, target := range inputErrors {
		if errors.Is(err, target) {
			return target.Error()
		}
	}
	return err.Error()
}
