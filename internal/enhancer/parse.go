package enhancer

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/kiranshivaraju/vidforge/pkg/models"
)

var (
	ErrMalformed    = errors.New("model output is not a JSON object")
	ErrMissingField = errors.New("model output is missing a field")
)

var leadingNumber = regexp.MustCompile(`^\s*(\d+)`)

type rawSpec struct {
	Prompt      *string          `json:"prompt"`
	AspectRatio *string          `json:"aspect_ratio"`
	Duration    *json.RawMessage `json:"duration"`
}

// Parse decodes a model reply into an EnhancedPrompt. Code fences around the
// JSON are tolerated. The prompt is truncated to MaxPromptWords and the duration
// is coerced to a positive integer, defaulting to DefaultDuration.
func Parse(reply string) (models.EnhancedPrompt, error) {
	body := StripFences(reply)

	var raw rawSpec
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return models.EnhancedPrompt{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	if raw.Prompt == nil || strings.TrimSpace(*raw.Prompt) == "" {
		return models.EnhancedPrompt{}, fmt.Errorf("%w: prompt", ErrMissingField)
	}
	if raw.AspectRatio == nil || strings.TrimSpace(*raw.AspectRatio) == "" {
		return models.EnhancedPrompt{}, fmt.Errorf("%w: aspect_ratio", ErrMissingField)
	}
	if raw.Duration == nil {
		return models.EnhancedPrompt{}, fmt.Errorf("%w: duration", ErrMissingField)
	}

	return models.EnhancedPrompt{
		Prompt:      TruncateWords(*raw.Prompt, MaxPromptWords),
		AspectRatio: strings.TrimSpace(*raw.AspectRatio),
		Duration:    coerceDuration(*raw.Duration),
	}, nil
}

// StripFences removes a leading ``` or ```json line and a trailing ``` marker.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.Contains(s[:nl], "{") {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "json")
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// TruncateWords keeps at most n whitespace-separated words.
func TruncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

// coerceDuration accepts a JSON number or a string such as "8 seconds".
func coerceDuration(raw json.RawMessage) int {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if n >= 1 && n <= math.MaxInt32 {
			return int(n)
		}
		return DefaultDuration
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return DefaultDuration
	}
	m := leadingNumber.FindStringSubmatch(s)
	if m == nil {
		return DefaultDuration
	}
	d, err := strconv.Atoi(m[1])
	if err != nil || d < 1 {
		return DefaultDuration
	}
	return d
}
