package generator

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"pagecrafter/internal/domain"
)

// DefaultRetryAfter is used when a provider rate limits without a Retry-After hint.
const DefaultRetryAfter = 60 * time.Second

// RateLimitError indicates a provider returned HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// Is reports a match for domain.ErrRateLimited.
func (e *RateLimitError) Is(target error) bool {
	return target == domain.ErrRateLimited
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, DefaultRetryAfter is used.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	retryAfter := time.Duration(retryAfterSecs) * time.Second
	if retryAfterSecs <= 0 {
		retryAfter = DefaultRetryAfter
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: retryAfter,
		Provider:   provider,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Both delta-seconds and HTTP-date forms are accepted; anything else yields 0.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	if secs, err := strconv.Atoi(val); err == nil {
		return secs
	}
	if at, err := http.ParseTime(val); err == nil {
		if d := time.Until(at); d > 0 {
			return int(d.Round(time.Second) / time.Second)
		}
	}
	return 0
}
