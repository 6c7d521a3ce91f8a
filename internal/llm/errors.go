package llm

import "errors"

var (
	ErrProviderUnavailable = errors.New("llm provider unavailable")
	ErrTimeout             = errors.New("llm request timeout")
	ErrInvalidResponse     = errors.New("llm provider returned invalid response")
)
