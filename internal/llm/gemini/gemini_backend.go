package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/disintegration/imaging"

	"reliefdocs/internal/config"
	"reliefdocs/internal/domain"
	"reliefdocs/internal/llm"
	"reliefdocs/internal/port"
)

const (
	apiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
)

// Backend implements port.LLMBackend using Google's Gemini generateContent API.
type Backend struct {
	apiKey     string
	model      string
	endpoint   string
	maxRetries int
	client     *http.Client
}

// NewBackend creates a Gemini backend.
func NewBackend(cfg *config.LLMProviderConfig) *Backend {
	return newBackend(cfg, "")
}

// NewBackendWithEndpoint creates a backend pointing at a custom API endpoint (for testing).
func NewBackendWithEndpoint(cfg *config.LLMProviderConfig, endpoint string) *Backend {
	return newBackend(cfg, endpoint)
}

func newBackend(cfg *config.LLMProviderConfig, endpoint string) *Backend {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if endpoint == "" {
		base := strings.TrimRight(cfg.BaseURL, "/")
		if base == "" {
			base = apiBaseURL
		}
		endpoint = fmt.Sprintf("%s/%s:generateContent", base, model)
	}
	return &Backend{
		apiKey:     cfg.APIKey,
		model:      model,
		endpoint:   endpoint,
		maxRetries: cfg.MaxTransportRetries,
		client:     &http.Client{Timeout: llm.Timeout(cfg.TimeoutSecs)},
	}
}

func (b *Backend) Complete(ctx context.Context, req port.CompletionRequest) (*port.CompletionResponse, error) {
	parts := []map[string]interface{}{
		{"text": req.Prompt},
	}
	for _, a := range req.Attachments {
		mimeType, data := inlineData(a)
		parts = append(parts, map[string]interface{}{
			"inline_data": map[string]interface{}{
				"mime_type": mimeType,
				"data":      base64.StdEncoding.EncodeToString(data),
			},
		})
	}

	genConfig := map[string]interface{}{
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		genConfig["maxOutputTokens"] = req.MaxTokens
	}
	if len(req.JSONSchema) > 0 {
		genConfig["responseMimeType"] = "application/json"
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role":  "user",
				"parts": parts,
			},
		},
		"generationConfig": genConfig,
	}

	respBody, err := llm.PostJSON(ctx, b.client, llm.HTTPCall{
		Provider:   "gemini",
		Endpoint:   b.endpoint,
		Headers:    map[string]string{"x-goog-api-key": b.apiKey},
		Body:       reqBody,
		MaxRetries: b.maxRetries,
	})
	if err != nil {
		return nil, err
	}

	return parseResponse(respBody, b.model)
}

// inlineData re-encodes GIFs as PNG because Gemini rejects image/gif inline
// data; an undecodable GIF is sent unchanged.
func inlineData(a port.Attachment) (string, []byte) {
	if a.MimeType != domain.MIMEGIF {
		return a.MimeType, a.Data
	}
	img, err := imaging.Decode(bytes.NewReader(a.Data))
	if err != nil {
		log.Printf("gemini.Backend: decoding gif %s: %v; sending as is", a.Filename, err)
		return a.MimeType, a.Data
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		log.Printf("gemini.Backend: re-encoding gif %s: %v; sending as is", a.Filename, err)
		return a.MimeType, a.Data
	}
	return domain.MIMEPNG, buf.Bytes()
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func parseResponse(body []byte, model string) (*port.CompletionResponse, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from API: no candidates")
	}

	cand := resp.Candidates[0]
	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		sb.WriteString(p.Text)
	}

	return &port.CompletionResponse{
		Text:         sb.String(),
		ModelUsed:    model,
		FinishReason: cand.FinishReason,
	}, nil
}
