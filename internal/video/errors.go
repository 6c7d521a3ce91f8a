package video

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport covers network failures and non-2xx responses. Never retried.
	ErrTransport = errors.New("video service transport error")
	// ErrJobFailed means the service reported the generation as failed.
	ErrJobFailed = errors.New("video generation failed")
	// ErrJobTimedOut means the poll budget ran out before a terminal state.
	// The generation may still complete remotely.
	ErrJobTimedOut = errors.New("video generation timed out")
)

// StatusError is returned for a non-2xx response from the video service.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: video service returned status %d", e.Op, e.StatusCode)
}

func (e *StatusError) Unwrap() error { return ErrTransport }

// FailureError carries the service-provided failure reason verbatim.
type FailureError struct {
	GenerationID string
	Reason       string
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("video generation %s failed: %s", e.GenerationID, e.Reason)
}

func (e *FailureError) Unwrap() error { return ErrJobFailed }

// TimeoutError records how long the poller waited before giving up.
type TimeoutError struct {
	GenerationID string
	Attempts     int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("video generation %s not finished after %d polls", e.GenerationID, e.Attempts)
}

func (e *TimeoutError) Unwrap() error { return ErrJobTimedOut }
