package llm_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reliefdocs/internal/llm"
	"reliefdocs/internal/port"
	"reliefdocs/mocks"
)

func completion(model string) *port.CompletionResponse {
	return &port.CompletionResponse{Text: `{"ok":true}`, ModelUsed: model}
}

var fallbackReq = port.CompletionRequest{Prompt: "classify these files", Temperature: 0.1}

func TestFallbackBackend_FirstSucceeds(t *testing.T) {
	b1 := new(mocks.MockLLMBackend)
	b2 := new(mocks.MockLLMBackend)
	b1.On("Complete", mock.Anything, fallbackReq).Return(completion("gemini"), nil)

	fb := llm.NewFallbackBackend([]port.LLMBackend{b1, b2}, []string{"gemini", "openai"})

	resp, err := fb.Complete(context.Background(), fallbackReq)

	require.NoError(t, err)
	assert.Equal(t, "gemini", resp.ModelUsed)
	b2.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestFallbackBackend_FirstFails_SecondSucceeds(t *testing.T) {
	b1 := new(mocks.MockLLMBackend)
	b2 := new(mocks.MockLLMBackend)
	b1.On("Complete", mock.Anything, fallbackReq).Return(nil, errors.New("generic error"))
	b2.On("Complete", mock.Anything, fallbackReq).Return(completion("openai"), nil)

	fb := llm.NewFallbackBackend([]port.LLMBackend{b1, b2}, []string{"gemini", "openai"})

	resp, err := fb.Complete(context.Background(), fallbackReq)

	require.NoError(t, err)
	assert.Equal(t, "openai", resp.ModelUsed)
}

func TestFallbackBackend_TwoRateLimited_ThirdSucceeds(t *testing.T) {
	b1 := new(mocks.MockLLMBackend)
	b2 := new(mocks.MockLLMBackend)
	b3 := new(mocks.MockLLMBackend)
	b1.On("Complete", mock.Anything, fallbackReq).Return(nil, llm.NewRateLimitError("gemini", errors.New("429"), 60))
	b2.On("Complete", mock.Anything, fallbackReq).Return(nil, llm.NewRateLimitError("openai", errors.New("429"), 30))
	b3.On("Complete", mock.Anything, fallbackReq).Return(completion("claude"), nil)

	fb := llm.NewFallbackBackend([]port.LLMBackend{b1, b2, b3}, []string{"gemini", "openai", "claude"})

	resp, err := fb.Complete(context.Background(), fallbackReq)

	require.NoError(t, err)
	assert.Equal(t, "claude", resp.ModelUsed)
}

func TestFallbackBackend_AllRateLimited(t *testing.T) {
	b1 := new(mocks.MockLLMBackend)
	b2 := new(mocks.MockLLMBackend)
	b1.On("Complete", mock.Anything, fallbackReq).Return(nil, llm.NewRateLimitError("gemini", errors.New("429"), 60))
	b2.On("Complete", mock.Anything, fallbackReq).Return(nil, llm.NewRateLimitError("openai", errors.New("429"), 30))

	fb := llm.NewFallbackBackend([]port.LLMBackend{b1, b2}, []string{"gemini", "openai"})

	resp, err := fb.Complete(context.Background(), fallbackReq)

	assert.Nil(t, resp)
	var rlErr *llm.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "all", rlErr.Provider)
	assert.LessOrEqual(t, rlErr.RetryAfter, 30*time.Second)
}

func TestFallbackBackend_AllFail_NonRateLimit(t *testing.T) {
	b1 := new(mocks.MockLLMBackend)
	b2 := new(mocks.MockLLMBackend)
	b1.On("Complete", mock.Anything, fallbackReq).Return(nil, errors.New("error 1"))
	b2.On("Complete", mock.Anything, fallbackReq).Return(nil, errors.New("error 2"))

	fb := llm.NewFallbackBackend([]port.LLMBackend{b1, b2}, []string{"gemini", "openai"})

	resp, err := fb.Complete(context.Background(), fallbackReq)

	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all backends failed")
	assert.Contains(t, err.Error(), "error 2")

	var rlErr *llm.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
}

func TestFallbackBackend_CancelledContextStops(t *testing.T) {
	b1 := new(mocks.MockLLMBackend)
	b2 := new(mocks.MockLLMBackend)

	ctx, cancel := context.WithCancel(context.Background())
	b1.On("Complete", mock.Anything, fallbackReq).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, context.Canceled)

	fb := llm.NewFallbackBackend([]port.LLMBackend{b1, b2}, []string{"gemini", "openai"})

	_, err := fb.Complete(ctx, fallbackReq)

	assert.ErrorIs(t, err, context.Canceled)
	b2.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestFallbackBackend_SkipsOpenCircuit(t *testing.T) {
	b1 := new(mocks.MockLLMBackend)
	b2 := new(mocks.MockLLMBackend)
	b1.On("Complete", mock.Anything, fallbackReq).Return(nil, llm.NewRateLimitError("gemini", errors.New("429"), 60)).Once()
	b2.On("Complete", mock.Anything, fallbackReq).Return(completion("openai"), nil)

	fb := llm.NewFallbackBackend([]port.LLMBackend{b1, b2}, []string{"gemini", "openai"})

	_, err := fb.Complete(context.Background(), fallbackReq)
	require.NoError(t, err)

	resp, err := fb.Complete(context.Background(), fallbackReq)
	require.NoError(t, err)
	assert.Equal(t, "openai", resp.ModelUsed)

	b1.AssertNumberOfCalls(t, "Complete", 1)
}

func TestFallbackBackend_CircuitAutoCloses(t *testing.T) {
	b1 := new(mocks.MockLLMBackend)
	b2 := new(mocks.MockLLMBackend)
	b1.On("Complete", mock.Anything, fallbackReq).Return(nil, llm.NewRateLimitError("gemini", errors.New("429"), 1)).Once()
	b2.On("Complete", mock.Anything, fallbackReq).Return(completion("openai"), nil).Once()

	fb := llm.NewFallbackBackend([]port.LLMBackend{b1, b2}, []string{"gemini", "openai"})

	resp, err := fb.Complete(context.Background(), fallbackReq)
	require.NoError(t, err)
	assert.Equal(t, "openai", resp.ModelUsed)

	// Wait for circuit to auto-close
	time.Sleep(1100 * time.Millisecond)

	b1.On("Complete", mock.Anything, fallbackReq).Return(completion("gemini"), nil).Once()

	resp, err = fb.Complete(context.Background(), fallbackReq)
	require.NoError(t, err)
	assert.Equal(t, "gemini", resp.ModelUsed)
}

func TestFallbackBackend_ConcurrentSafety(t *testing.T) {
	b1 := new(mocks.MockLLMBackend)
	b2 := new(mocks.MockLLMBackend)
	b1.On("Complete", mock.Anything, fallbackReq).Return(nil, llm.NewRateLimitError("gemini", errors.New("429"), 5)).Maybe()
	b2.On("Complete", mock.Anything, fallbackReq).Return(completion("openai"), nil).Maybe()

	fb := llm.NewFallbackBackend([]port.LLMBackend{b1, b2}, []string{"gemini", "openai"})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := fb.Complete(context.Background(), fallbackReq)
			assert.NoError(t, err)
			assert.NotNil(t, resp)
		}()
	}
	wg.Wait()
}

func TestFallbackBackend_RateLimitedThenHardFailure(t *testing.T) {
	b1 := new(mocks.MockLLMBackend)
	b2 := new(mocks.MockLLMBackend)
	b1.On("Complete", mock.Anything, fallbackReq).Return(nil, llm.NewRateLimitError("gemini", errors.New("429"), 60))
	b2.On("Complete", mock.Anything, fallbackReq).Return(nil, errors.New("bad gateway"))

	fb := llm.NewFallbackBackend([]port.LLMBackend{b1, b2}, []string{"gemini", "openai"})

	_, err := fb.Complete(context.Background(), fallbackReq)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad gateway")
	var rlErr *llm.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
}

func TestFallbackBackend_AllCoolingDownSkipsCalls(t *testing.T) {
	b1 := new(mocks.MockLLMBackend)
	b1.On("Complete", mock.Anything, fallbackReq).Return(nil, llm.NewRateLimitError("gemini", errors.New("429"), 45)).Once()

	fb := llm.NewFallbackBackend([]port.LLMBackend{b1}, []string{"gemini"})

	_, err := fb.Complete(context.Background(), fallbackReq)
	require.Error(t, err)
	_, err = fb.Complete(context.Background(), fallbackReq)

	var rlErr *llm.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "all", rlErr.Provider)
	assert.Greater(t, rlErr.RetryAfter, 30*time.Second)
	assert.LessOrEqual(t, rlErr.RetryAfter, 45*time.Second)
	b1.AssertNumberOfCalls(t, "Complete", 1)
}
