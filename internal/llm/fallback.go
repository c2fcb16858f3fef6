package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"reliefdocs/internal/port"
)

// FallbackBackend tries backends in order. A backend that answers with a
// rate limit cools down for its Retry-After and is skipped until then.
// It implements port.LLMBackend.
type FallbackBackend struct {
	backends []port.LLMBackend
	names    []string
	now      func() time.Time

	mu        sync.Mutex
	coolUntil []time.Time
}

// NewFallbackBackend creates a FallbackBackend from an ordered list of backends and their names.
func NewFallbackBackend(backends []port.LLMBackend, names []string) *FallbackBackend {
	return &FallbackBackend{
		backends:  backends,
		names:     names,
		now:       time.Now,
		coolUntil: make([]time.Time, len(backends)),
	}
}

func (f *FallbackBackend) coolingUntil(i int, now time.Time) (time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	until := f.coolUntil[i]
	return until, now.Before(until)
}

func (f *FallbackBackend) coolDown(i int, until time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.coolUntil[i] = until
}

// Complete returns the first successful answer. When every backend is
// rate limited or cooling down the error is a *RateLimitError whose
// RetryAfter is the soonest cooldown end, at least one second.
func (f *FallbackBackend) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionResponse, error) {
	now := f.now()
	var lastErr error
	var soonest time.Time
	hardFailure := false

	noteCooldown := func(until time.Time) {
		if soonest.IsZero() || until.Before(soonest) {
			soonest = until
		}
	}

	for i, b := range f.backends {
		if until, cooling := f.coolingUntil(i, now); cooling {
			log.Printf("llm.FallbackBackend: skipping %s until %s", f.names[i], until.Format(time.RFC3339))
			noteCooldown(until)
			continue
		}

		out, err := b.Complete(ctx, req)
		if err == nil {
			return out, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("llm.FallbackBackend: %s failed: %v", f.names[i], err)
		lastErr = err

		var rlErr *RateLimitError
		if !errors.As(err, &rlErr) {
			hardFailure = true
			continue
		}
		until := now.Add(rlErr.RetryAfter)
		f.coolDown(i, until)
		noteCooldown(until)
	}

	if hardFailure {
		return nil, fmt.Errorf("all backends failed: %w", lastErr)
	}
	wait := max(soonest.Sub(now), time.Second)
	return nil, NewRateLimitError("all", errors.New("every backend is rate limited"), int(wait.Seconds()))
}
