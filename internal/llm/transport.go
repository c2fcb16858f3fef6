package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
)

// HTTPCall describes one JSON POST to a provider API.
type HTTPCall struct {
	Provider string
	Endpoint string
	Headers  map[string]string
	Body     any
	// MaxRetries is the number of extra attempts on 5xx and network errors.
	MaxRetries int
}

// PostJSON sends call.Body as JSON and returns the raw 200 response body.
// 5xx and network failures are retried with backoff; 429 is returned
// immediately as a *RateLimitError so a FallbackBackend can move on.
func PostJSON(ctx context.Context, client *http.Client, call HTTPCall) ([]byte, error) {
	bodyBytes, err := json.Marshal(call.Body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	// retry-go treats Attempts(0) as unlimited, so negative retries clamp to none.
	attempts := uint(max(call.MaxRetries, 0)) + 1
	return retry.DoWithData(
		func() ([]byte, error) {
			return postOnce(ctx, client, call, bodyBytes)
		},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(4*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransientError),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("llm.PostJSON: %s attempt %d failed, retrying: %v", call.Provider, n+1, err)
		}),
	)
}

func postOnce(ctx context.Context, client *http.Client, call HTTPCall, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, call.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range call.Headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling %s API: %w", call.Provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := &ProviderError{Provider: call.Provider, StatusCode: resp.StatusCode, Body: string(respBody)}
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, NewRateLimitError(call.Provider, baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return respBody, nil
}

func isTransientError(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return false
	}
	var pErr *ProviderError
	if errors.As(err, &pErr) {
		return pErr.Retryable()
	}
	return true
}

// Timeout converts a provider timeout in seconds, defaulting to two minutes.
func Timeout(secs int) time.Duration {
	if secs <= 0 {
		return 120 * time.Second
	}
	return time.Duration(secs) * time.Second
}
