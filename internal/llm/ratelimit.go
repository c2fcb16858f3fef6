package llm

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"reliefdocs/internal/port"
)

// RateLimitedBackend paces calls to a backend with a token bucket so photo
// fan-out does not trip provider quotas. It implements port.LLMBackend.
type RateLimitedBackend struct {
	backend port.LLMBackend
	limiter *rate.Limiter
	name    string
}

// NewRateLimitedBackend allows requestsPerMinute calls per minute with a
// burst of one sixth of that, at least one.
func NewRateLimitedBackend(backend port.LLMBackend, name string, requestsPerMinute int) *RateLimitedBackend {
	burst := requestsPerMinute / 6
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedBackend{
		backend: backend,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), burst),
		name:    name,
	}
}

func (r *RateLimitedBackend) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionResponse, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%s: waiting for rate limiter: %w", r.name, err)
	}
	return r.backend.Complete(ctx, req)
}
