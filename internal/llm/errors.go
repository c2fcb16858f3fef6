package llm

import (
	"fmt"
	"strconv"
	"time"
)

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

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

// ProviderError is a non-2xx response from a provider API.
type ProviderError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, truncate(e.Body, 500))
}

// Retryable reports whether the status is worth retrying on the same provider.
func (e *ProviderError) Retryable() bool {
	return e.StatusCode >= 500
}

// ValidationError is a structured response that could not be parsed or
// did not match its schema. The gateway retry loop feeds it back to the model.
type ValidationError struct {
	Schema  string
	Attempt int
	Output  string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s output invalid (attempt %d): %v", e.Schema, e.Attempt, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
