package app_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reliefdocs/internal/app"
	"reliefdocs/internal/config"
	"reliefdocs/internal/domain"
	"reliefdocs/internal/llm"
	"reliefdocs/internal/port"
)

func testConfig(provider string) *config.Config {
	return &config.Config{
		LLM: config.LLMConfig{Provider: provider, DefaultModel: "test-model", TimeoutSecs: 5},
		OCR: config.OCRConfig{
			TesseractPath:  "/nonexistent/tesseract",
			RasterizerPath: "/nonexistent/pdftoppm",
		},
		Evidence: config.EvidenceConfig{MaxRetries: 1, PhotoConcurrency: 2, MaxFiles: 10, MaxFileSizeMB: 20},
	}
}

func TestNewPipeline(t *testing.T) {
	p, err := app.NewPipeline(testConfig("gemini"), nil)

	require.NoError(t, err)
	assert.False(t, p.OCR.Available().Tesseract)
	assert.Equal(t, 8, p.Catalog.Len())

	result, err := p.Service.Extract(context.Background(), nil, domain.EvidenceContext{})
	require.NoError(t, err)
	assert.Len(t, result.MissingEvidence, p.Catalog.Len())
}

func TestNewPipeline_UnknownProvider(t *testing.T) {
	p, err := app.NewPipeline(testConfig("carrier-pigeon"), nil)

	assert.Nil(t, p)
	assert.ErrorContains(t, err, "failed to initialize llm backends")
}

// recordingTransport answers every request with a canned chat completion.
type recordingTransport struct {
	requests []*http.Request
	bodies   []map[string]interface{}
}

func (rt *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body map[string]interface{}
	if req.Body != nil {
		_ = json.NewDecoder(req.Body).Decode(&body)
	}
	rt.requests = append(rt.requests, req)
	rt.bodies = append(rt.bodies, body)
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(`{"choices":[{"message":{"content":"ok"},"finish_reason":"stop"}]}`)),
		Request:    req,
	}, nil
}

func TestRegisterProviders_LegacyCommonstackUsesRelayDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("RELIEF_LLM_PROVIDER", "commonstack")
	t.Setenv("RELIEF_LLM_API_KEY", "cs-key")

	rt := &recordingTransport{}
	orig := http.DefaultTransport
	http.DefaultTransport = rt
	t.Cleanup(func() { http.DefaultTransport = orig })

	cfg, err := config.Load()
	require.NoError(t, err)
	primary := cfg.LLM.PrimaryConfig()
	require.Equal(t, "commonstack", primary.Provider)

	app.RegisterProviders()
	backend, err := llm.NewBackend(primary)
	require.NoError(t, err)
	resp, err := backend.Complete(context.Background(), port.CompletionRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text)

	require.Len(t, rt.requests, 1)
	assert.Equal(t, "https://api.commonstack.ai/v1/chat/completions", rt.requests[0].URL.String())
	assert.Equal(t, "Bearer cs-key", rt.requests[0].Header.Get("Authorization"))
	assert.Equal(t, "google/gemini-2.5-flash", rt.bodies[0]["model"])
}

func TestRegisterProviders_LegacyGeminiDefaultModel(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("RELIEF_LLM_PROVIDER", "")
	t.Setenv("RELIEF_LLM_API_KEY", "g-key")

	rt := &recordingTransport{}
	orig := http.DefaultTransport
	http.DefaultTransport = rt
	t.Cleanup(func() { http.DefaultTransport = orig })

	cfg, err := config.Load()
	require.NoError(t, err)

	app.RegisterProviders()
	backend, err := llm.NewBackend(cfg.LLM.PrimaryConfig())
	require.NoError(t, err)
	_, _ = backend.Complete(context.Background(), port.CompletionRequest{Prompt: "hi"})

	require.Len(t, rt.requests, 1)
	assert.True(t, strings.HasSuffix(rt.requests[0].URL.Path, "/gemini-2.0-flash:generateContent"), rt.requests[0].URL.Path)
}
