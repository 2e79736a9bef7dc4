package generator

import (
	"fmt"
	"strconv"
	"time"
)

const defaultRetryAfter = 60 * time.Second

// RateLimitError reports that a generation provider answered HTTP 429.
// FallbackGenerator uses RetryAfter to keep the provider out of rotation.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited, retry after %s: %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// NewRateLimitError wraps a provider 429. A zero or negative retryAfterSecs
// falls back to a conservative default.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	retryAfter := time.Duration(retryAfterSecs) * time.Second
	if retryAfter <= 0 {
		retryAfter = defaultRetryAfter
	}
	return &RateLimitError{Provider: provider, RetryAfter: retryAfter, Err: err}
}

// ParseRetryAfterHeader reads a Retry-After header as whole seconds. HTTP
// dates and garbage both come back as 0, which means "use the default".
func ParseRetryAfterHeader(val string) int {
	secs, err := strconv.Atoi(val)
	if err != nil || secs < 0 {
		return 0
	}
	return secs
}
